package models

import "time"

// User is an account created on first login through the identity provider.
type User struct {
	ID        uint       `gorm:"primaryKey"`
	Subject   string     `gorm:"size:100;uniqueIndex;not null"` // identity provider subject id
	Email     string     `gorm:"size:100;uniqueIndex;not null"`
	Name      string     `gorm:"size:100;not null"`
	CreatedAt time.Time
	Customers []Customer `gorm:"foreignKey:UserID"`
	Orders    []Order    `gorm:"foreignKey:UserID"`
}
