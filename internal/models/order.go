package models

import "time"

// Order belongs to both a Customer and the User that owns that Customer.
type Order struct {
	ID         uint     `gorm:"primaryKey"`
	Name       string   `gorm:"column:order_name;size:100;not null"`
	Price      float64  `gorm:"not null"`
	CustomerID uint     `gorm:"index;not null"`
	Customer   Customer `gorm:"constraint:OnDelete:CASCADE"`
	UserID     uint     `gorm:"index;not null"`
	CreatedAt  time.Time
}
