package service

import (
	"context"
	"errors"
	"io"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Files owns file records and the one operation with real cascade
// semantics, deletion.
type Files struct {
	db    *gorm.DB
	store storage.Storage
}

func NewFiles(db *gorm.DB, store storage.Storage) *Files {
	return &Files{db: db, store: store}
}

// Register stores the uploaded bytes and creates the file record. The blob
// goes in first so a failed insert can still unlink it.
func (f *Files) Register(ctx context.Context, ownerID string, r io.Reader, displayName string, size int64, now time.Time) (*model.File, error) {
	key, err := f.store.Put(ctx, r, size)
	if err != nil {
		return nil, &DependencyError{Op: "blob put", Err: err}
	}

	file := model.File{
		OwnerID:     ownerID,
		StorageKey:  key,
		DisplayName: displayName,
		Size:        size,
		CreatedAt:   now.UTC(),
	}

	if err := f.db.WithContext(ctx).Create(&file).Error; err != nil {
		if derr := f.store.Delete(ctx, key); derr != nil {
			zap.L().Warn("Failed to unlink blob after insert failure",
				zap.String("key", key),
				zap.Error(derr))
		}
		return nil, err
	}

	return &file, nil
}

// Get returns a file record by ID without any authorization check. Callers
// authorize through the visibility engine first.
func (f *Files) Get(ctx context.Context, fileID uint) (*model.File, error) {
	var file model.File

	err := f.db.WithContext(ctx).First(&file, fileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &file, nil
}

// Open streams the file's bytes from the blob store.
func (f *Files) Open(ctx context.Context, file *model.File) (io.ReadCloser, error) {
	r, err := f.store.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, &DependencyError{Op: "blob get", Err: err}
	}

	return r, nil
}

// Delete removes a file for its owner. The record and everything hanging
// off it (direct shares, the public share, access records) go in a single
// transaction, a half-cascaded delete would leave orphaned shares pointing
// at nothing. Non-owners get the same ErrNotFound a missing file produces.
//
// The blob is unlinked only after the commit. If that fails the delete
// still succeeded: the metadata is authoritative and stray blobs are a
// garbage collection problem, not a rollback trigger.
func (f *Files) Delete(ctx context.Context, fileID uint, requesterID string) error {
	var file model.File

	err := f.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", fileID, requesterID).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	err = f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&model.AccessRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", fileID).Delete(&model.PublicShare{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id = ?", fileID).Delete(&model.DirectShare{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.File{}, fileID).Error
	})
	if err != nil {
		return err
	}

	if err := f.store.Delete(ctx, file.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		zap.L().Warn("Failed to delete blob, leaving it for cleanup",
			zap.String("key", file.StorageKey),
			zap.Error(err))
	}

	return nil
}
