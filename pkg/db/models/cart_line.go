package models

import "time"

// CartLine is one product line in a shopper's cart. Lines keep the order in
// which they were first added.
type CartLine struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:36"`
	ProductID string    `gorm:"column:product_id;primaryKey;size:64"`
	Qty       int       `gorm:"column:qty;not null"`
	AddedAt   time.Time `gorm:"column:added_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
