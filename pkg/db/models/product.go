package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        string          `gorm:"column:id;primaryKey;size:64"`
	Name      string          `gorm:"column:name;not null;index"`
	Category  string          `gorm:"column:category;not null"`
	Cost      decimal.Decimal `gorm:"column:cost;type:decimal(12,2);not null"`
	Rating    float64         `gorm:"column:rating;not null;default:0"`
	Image     string          `gorm:"column:image"`
	// Position is the catalog display order; ties fall back to name.
	Position  int             `gorm:"column:position;not null;default:0;index"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
