package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User is a registered shopper with a wallet balance.
type User struct {
	ID           string          `gorm:"column:id;primaryKey;size:36"`
	Username     string          `gorm:"column:username;not null;uniqueIndex;size:32"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Balance      decimal.Decimal `gorm:"column:balance;type:decimal(12,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
