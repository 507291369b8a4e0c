package models

import "time"

// Task is a user-owned to-do item.
type Task struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"index;size:36;not null"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"size:1024"`
	Completed   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
