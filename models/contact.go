package models

import "time"

// Contact is a contact-form submission.
type Contact struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:255;not null"`
	Email     string `gorm:"size:255;not null"`
	Phone     string `gorm:"size:64"`
	Message   string `gorm:"type:text"`
}
