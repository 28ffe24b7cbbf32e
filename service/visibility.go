package service

import (
	"context"
	"errors"
	"time"

	"sharedrop/fileshare-api/model"

	"gorm.io/gorm"
)

// Grant is the authorization outcome for a file request.
type Grant int

const (
	// GrantOwner carries full rights: read, delete, share, revoke.
	GrantOwner Grant = iota + 1
	// GrantDirect is read/download only, held by direct-share recipients.
	GrantDirect
	// GrantPublic is read/download only, held by whoever bears a valid
	// public link token. Fetches under it are recorded in the ledger.
	GrantPublic
)

func (g Grant) String() string {
	switch g {
	case GrantOwner:
		return "owner"
	case GrantDirect:
		return "direct"
	case GrantPublic:
		return "public"
	default:
		return "none"
	}
}

// Visibility is the single authorization decision point. Every read,
// delete and share-create request resolves its grant here.
type Visibility struct {
	db       *gorm.DB
	direct   *DirectShares
	registry *ShareRegistry
}

func NewVisibility(db *gorm.DB, direct *DirectShares, registry *ShareRegistry) *Visibility {
	return &Visibility{db: db, direct: direct, registry: registry}
}

// Authorize resolves what a caller may do with a file. requesterID is the
// authenticated identity ("" for anonymous callers), token a public link
// token ("" when none was presented); the two are distinct credential kinds
// and arrive through distinct entry points.
//
// Rules run in order: owner, then direct recipient, then valid public
// token resolving to this exact file. Everything else is a denial, and a
// denial is deliberately indistinguishable from a file that does not
// exist: both come back ErrNotFound. The only richer signal allowed out
// is ErrExpired for a token that did match this file but ran out.
func (v *Visibility) Authorize(ctx context.Context, requesterID string, token string, fileID uint, now time.Time) (Grant, *model.File, error) {
	var file model.File

	err := v.db.WithContext(ctx).First(&file, fileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, ErrNotFound
		}
		return 0, nil, err
	}

	if requesterID != "" {
		if file.OwnerID == requesterID {
			return GrantOwner, &file, nil
		}

		shared, err := v.direct.IsSharedWith(ctx, fileID, requesterID)
		if err != nil {
			return 0, nil, err
		}
		if shared {
			return GrantDirect, &file, nil
		}
	}

	if token != "" {
		linked, _, err := v.registry.GetValid(ctx, token, now)
		if err == nil && linked.ID == fileID {
			return GrantPublic, &file, nil
		}

		if errors.Is(err, ErrExpired) {
			// The token holder already knows the file exists, telling them
			// the link lapsed leaks nothing new. But only for their file.
			if share, ferr := v.registry.FindByFile(ctx, fileID); ferr == nil && share != nil && share.Token == token {
				return 0, nil, ErrExpired
			}
		}

		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrExpired) {
			return 0, nil, err
		}
	}

	return 0, nil, ErrNotFound
}

// ListOwned returns exactly the files the user owns. Direct and public
// grants never surface in this view.
func (v *Visibility) ListOwned(ctx context.Context, ownerID string) ([]model.File, error) {
	var files []model.File

	err := v.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&files).Error

	return files, err
}
