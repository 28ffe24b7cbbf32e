package service

import (
	"context"
	"errors"
	"time"

	"sharedrop/fileshare-api/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccessLedger is the append-only audit trail of public link fetches.
// One row per successful fetch, metadata and download requests alike.
type AccessLedger struct {
	db *gorm.DB
}

func NewAccessLedger(db *gorm.DB) *AccessLedger {
	return &AccessLedger{db: db}
}

// Record appends one access row. Logging is best-effort: a failed append
// must never fail the fetch that triggered it, so errors only get logged.
func (l *AccessLedger) Record(ctx context.Context, fileID uint, token string, now time.Time) {
	rec := model.AccessRecord{
		FileID:     fileID,
		Token:      token,
		AccessedAt: now.UTC(),
	}

	if err := l.db.WithContext(ctx).Create(&rec).Error; err != nil {
		zap.L().Warn("Failed to record share access",
			zap.Uint("fileID", fileID),
			zap.Error(err))
	}
}

// FirstAccess returns the earliest access of a link, nil if it was never
// fetched. Ties on the timestamp break by insertion order.
func (l *AccessLedger) FirstAccess(ctx context.Context, fileID uint, token string) (*model.AccessRecord, error) {
	var rec model.AccessRecord

	err := l.db.WithContext(ctx).
		Where("file_id = ? AND token = ?", fileID, token).
		Order("accessed_at ASC, id ASC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &rec, nil
}

// CountAccesses returns how many times a link was fetched.
func (l *AccessLedger) CountAccesses(ctx context.Context, fileID uint, token string) (int64, error) {
	var n int64

	err := l.db.WithContext(ctx).
		Model(&model.AccessRecord{}).
		Where("file_id = ? AND token = ?", fileID, token).
		Count(&n).Error

	return n, err
}
