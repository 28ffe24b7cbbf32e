package model

import "time"

// ResetToken is a single-use password reset credential. Minting a new one
// marks every previous live token for the user as used, so at most one can
// be redeemed at any time.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	Used      bool      `gorm:"default:false"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
