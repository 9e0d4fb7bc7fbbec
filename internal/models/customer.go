package models

import "time"

type Customer struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:100;not null"`
	Phone     string  `gorm:"size:20;not null"` // stored as entered
	UserID    uint    `gorm:"index;not null"`
	CreatedAt time.Time
	Orders    []Order `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}
