// Package model defines database models
package model

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `gorm:"not null" json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	PhoneNumber  string    `json:"phone_number"`

	// Blob key of the profile photo, empty if the user never uploaded one
	ProfilePhotoKey string    `json:"-"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`

	Files       []File       `gorm:"foreignKey:OwnerID" json:"-"`
	ResetTokens []ResetToken `gorm:"foreignKey:UserID" json:"-"`
}
