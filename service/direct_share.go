package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sharedrop/fileshare-api/model"

	"gorm.io/gorm"
)

// DirectShares is the account-to-account share index. Rows are created by
// the owner, never mutated, and only go away when their file does.
type DirectShares struct {
	db *gorm.DB
}

func NewDirectShares(db *gorm.DB) *DirectShares {
	return &DirectShares{db: db}
}

// Share grants recipientID read access to a file. Idempotent: sharing the
// same file with the same recipient twice leaves one row and reports
// created=false, so the caller can tell the user "already shared" instead
// of "shared".
func (s *DirectShares) Share(ctx context.Context, fileID uint, recipientID string, now time.Time) (created bool, err error) {
	var existing model.DirectShare

	err = s.db.WithContext(ctx).
		Where("file_id = ? AND recipient_id = ?", fileID, recipientID).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	share := model.DirectShare{
		FileID:      fileID,
		RecipientID: recipientID,
		CreatedAt:   now.UTC(),
	}

	err = s.db.WithContext(ctx).Create(&share).Error
	if err != nil {
		// Lost a race against a concurrent identical share, same outcome
		// as finding the row up front
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// IsSharedWith reports whether userID holds a direct grant on the file.
func (s *DirectShares) IsSharedWith(ctx context.Context, fileID uint, userID string) (bool, error) {
	var n int64

	err := s.db.WithContext(ctx).
		Model(&model.DirectShare{}).
		Where("file_id = ? AND recipient_id = ?", fileID, userID).
		Count(&n).Error

	return n > 0, err
}

// ListRecipients returns the IDs of every account the file was shared with.
func (s *DirectShares) ListRecipients(ctx context.Context, fileID uint) ([]string, error) {
	var ids []string

	err := s.db.WithContext(ctx).
		Model(&model.DirectShare{}).
		Where("file_id = ?", fileID).
		Pluck("recipient_id", &ids).Error

	return ids, err
}

// SharedFile is one entry of a user's "shared with me" view.
type SharedFile struct {
	File       model.File `json:"file"`
	OwnerName  string     `json:"owner_name"`
	OwnerEmail string     `json:"owner_email"`
	SharedAt   time.Time  `json:"shared_at"`
}

// ListSharedWith returns every file other accounts shared with userID.
func (s *DirectShares) ListSharedWith(ctx context.Context, userID string) ([]SharedFile, error) {
	type row struct {
		model.File
		FirstName string
		LastName  string
		Email     string
		SharedAt  time.Time
	}

	var rows []row

	err := s.db.WithContext(ctx).
		Model(&model.DirectShare{}).
		Select("files.*, users.first_name, users.last_name, users.email, direct_shares.created_at AS shared_at").
		Joins("JOIN files ON files.id = direct_shares.file_id").
		Joins("JOIN users ON users.id = files.owner_id").
		Where("direct_shares.recipient_id = ?", userID).
		Order("direct_shares.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]SharedFile, 0, len(rows))
	for _, v := range rows {
		out = append(out, SharedFile{
			File:       v.File,
			OwnerName:  v.FirstName + " " + v.LastName,
			OwnerEmail: v.Email,
			SharedAt:   v.SharedAt,
		})
	}

	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// Neither driver wraps its constraint error consistently, sqlite says
	// "UNIQUE constraint failed", postgres "duplicate key value"
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
