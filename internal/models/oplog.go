package models

import "time"

// OpLog records one executed gateway operation (for audit; admin-secret
// requests are recorded without a user id).
type OpLog struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    *string `gorm:"index;size:36"`
	Operation string  `gorm:"size:64;not null"`
	IP        string  `gorm:"size:64"`
	UserAgent string  `gorm:"size:255"`
	CreatedAt time.Time
}
