package service

import (
	"context"
	"errors"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/util"

	"gorm.io/gorm"
)

// ShareRegistry owns the lifecycle of public share links. The registry is
// keyed by file: a file has at most one link, and re-sharing renews that
// link in place instead of minting a second one.
type ShareRegistry struct {
	db       *gorm.DB
	clock    *Clock
	tokenLen int
}

func NewShareRegistry(db *gorm.DB, clock *Clock, tokenLen int) *ShareRegistry {
	return &ShareRegistry{db: db, clock: clock, tokenLen: tokenLen}
}

// CreateOrRenew publishes a public link for a file, or renews the existing
// one. On renewal the recipient, message and expiry are replaced but the
// token is kept, so the previously mailed link keeps working. The returned
// bool is true when a new link was minted.
//
// The read-modify-write runs in one transaction and the file_id column
// carries a unique index, so two concurrent calls can't both insert.
func (r *ShareRegistry) CreateOrRenew(ctx context.Context, fileID uint, recipientEmail, message string, durationHours int, now time.Time) (*model.PublicShare, bool, error) {
	now = now.UTC()
	expiresAt := r.clock.ExpiryFor(durationHours, now)

	for attempt := 0; ; attempt++ {
		var share model.PublicShare
		created := false

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			err := tx.Where("file_id = ?", fileID).First(&share).Error
			if err == nil {
				share.RecipientEmail = recipientEmail
				share.Message = message
				share.DurationHours = durationHours
				share.ExpiresAt = expiresAt

				return tx.Model(&model.PublicShare{}).
					Where("id = ?", share.ID).
					Updates(map[string]any{
						"recipient_email": recipientEmail,
						"message":         message,
						"duration_hours":  durationHours,
						"expires_at":      expiresAt,
					}).Error
			}

			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			token, err := util.GenerateToken(r.tokenLen)
			if err != nil {
				return err
			}

			share = model.PublicShare{
				FileID:         fileID,
				Token:          token,
				RecipientEmail: recipientEmail,
				Message:        message,
				DurationHours:  durationHours,
				CreatedAt:      now,
				ExpiresAt:      expiresAt,
			}
			created = true

			return tx.Create(&share).Error
		})
		if err != nil {
			// Lost the insert against a concurrent share of the same file.
			// The row exists now, so one more pass takes the renewal path.
			if isUniqueViolation(err) && attempt == 0 {
				continue
			}
			return nil, false, err
		}

		return &share, created, nil
	}
}

// GetValid resolves a bearer token to its file. ErrNotFound when no link
// carries the token, ErrExpired when the link exists but now is at or past
// its expiry.
func (r *ShareRegistry) GetValid(ctx context.Context, token string, now time.Time) (*model.File, *model.PublicShare, error) {
	var share model.PublicShare

	err := r.db.WithContext(ctx).Where("token = ?", token).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if Expired(share.ExpiresAt, now) {
		return nil, nil, ErrExpired
	}

	var file model.File
	if err := r.db.WithContext(ctx).First(&file, share.FileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A share without its file means a cascade was skipped somewhere
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	return &file, &share, nil
}

// FindByFile returns the file's public share regardless of expiry,
// nil when the file was never published.
func (r *ShareRegistry) FindByFile(ctx context.Context, fileID uint) (*model.PublicShare, error) {
	var share model.PublicShare

	err := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &share, nil
}

// Revoke removes a file's public link and its whole access trail. Only the
// file's owner may do this.
func (r *ShareRegistry) Revoke(ctx context.Context, fileID uint, requesterID string) error {
	var file model.File

	err := r.db.WithContext(ctx).First(&file, fileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if file.OwnerID != requesterID {
		return ErrUnauthorized
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("file_id = ?", fileID).Delete(&model.PublicShare{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Where("file_id = ?", fileID).Delete(&model.AccessRecord{}).Error
	})
}

// OwnedShare is one row of the owner's share-list view.
type OwnedShare struct {
	Share         model.PublicShare `json:"share"`
	FileName      string            `json:"file_name"`
	FileSize      int64             `json:"file_size"`
	Expired       bool              `json:"expired"`
	Accessed      bool              `json:"accessed"`
	FirstAccessAt *time.Time        `json:"first_access_at,omitempty"`
}

// ListByOwner returns every public link on the owner's files together with
// its derived accessed/unaccessed status.
func (r *ShareRegistry) ListByOwner(ctx context.Context, ledger *AccessLedger, ownerID string, now time.Time) ([]OwnedShare, error) {
	type row struct {
		model.PublicShare
		DisplayName string
		Size        int64
	}

	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.PublicShare{}).
		Select("public_shares.*, files.display_name, files.size").
		Joins("JOIN files ON files.id = public_shares.file_id").
		Where("files.owner_id = ?", ownerID).
		Order("public_shares.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]OwnedShare, 0, len(rows))
	for _, v := range rows {
		entry := OwnedShare{
			Share:    v.PublicShare,
			FileName: v.DisplayName,
			FileSize: v.Size,
			Expired:  Expired(v.ExpiresAt, now),
		}

		first, err := ledger.FirstAccess(ctx, v.FileID, v.Token)
		if err != nil {
			return nil, err
		}
		if first != nil {
			entry.Accessed = true
			t := first.AccessedAt
			entry.FirstAccessAt = &t
		}

		out = append(out, entry)
	}

	return out, nil
}
