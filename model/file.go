package model

import "time"

type File struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID string `gorm:"index;not null" json:"-"`

	// Opaque blob-store key. Users can upload files with the same name so the
	// stored object lives under a generated key instead of the display name
	StorageKey  string    `gorm:"not null" json:"-"`
	DisplayName string    `gorm:"not null" json:"name"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
