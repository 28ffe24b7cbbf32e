package model

import "time"

// DirectShare grants one other account read access to a file. The pair is
// unique so re-sharing with the same recipient never creates a second row.
type DirectShare struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID      uint      `gorm:"not null;index;uniqueIndex:idx_file_recipient" json:"file_id"`
	RecipientID string    `gorm:"not null;index;uniqueIndex:idx_file_recipient" json:"recipient_id"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// PublicShare is the anonymous, bearer-token gated link for a file. A file
// has at most one of these: renewals update the row and keep the token.
type PublicShare struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID         uint      `gorm:"not null;uniqueIndex" json:"file_id"`
	Token          string    `gorm:"not null;uniqueIndex" json:"token"`
	RecipientEmail string    `json:"recipient_email"`
	Message        string    `json:"message"`
	DurationHours  int       `json:"duration_hours"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	ExpiresAt      time.Time `gorm:"not null;index" json:"expires_at"`
}

// AccessRecord is one audit row per successful fetch through a public link.
// Append-only, removed only when its file or share is deleted.
type AccessRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID     uint      `gorm:"not null;index" json:"file_id"`
	Token      string    `gorm:"not null;index" json:"-"`
	AccessedAt time.Time `gorm:"not null" json:"accessed_at"`
}
