package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"sharedrop/fileshare-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateOrRenewKeepsOneRowAndToken(t *testing.T) {
	db := newTestDB(t)
	reg := NewShareRegistry(db, utcClock(), 32)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	file := makeFile(t, db, owner.ID)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	first, created, err := reg.CreateOrRenew(ctx, file.ID, "alice@example.com", "here you go", 24, now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.Token)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), first.Token)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC), first.ExpiresAt)

	// Renewing for someone else keeps the token and the single row
	second, created, err := reg.CreateOrRenew(ctx, file.ID, "bob@example.com", "", 168, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, "bob@example.com", second.RecipientEmail)
	assert.Equal(t, time.Date(2024, 1, 8, 23, 59, 59, 0, time.UTC), second.ExpiresAt)

	var count int64
	require.NoError(t, db.Model(&model.PublicShare{}).Where("file_id = ?", file.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateOrRenewSurvivesLostInsertRace(t *testing.T) {
	db := newTestDB(t)
	reg := NewShareRegistry(db, utcClock(), 32)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	file := makeFile(t, db, owner.ID)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// Sneak a conflicting row in right before the registry's insert, inside
	// the same transaction, so the Create loses on the unique file_id index
	// exactly like it would against a concurrent caller
	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("conflict_once", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "public_shares" {
			return
		}
		injected = true

		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO public_shares (file_id, token, recipient_email, message, duration_hours, created_at, expires_at) VALUES (?, ?, '', '', 24, ?, ?)",
			file.ID, "rival-token", now, now.AddDate(0, 0, 2))
		require.NoError(t, err)
	})
	require.NoError(t, err)

	share, _, err := reg.CreateOrRenew(ctx, file.ID, "alice@example.com", "", 24, now)
	require.NoError(t, err, "a lost insert race must not surface as an error")
	assert.True(t, injected)
	assert.NotEmpty(t, share.Token)

	var count int64
	require.NoError(t, db.Model(&model.PublicShare{}).Where("file_id = ?", file.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetValidBoundary(t *testing.T) {
	db := newTestDB(t)
	reg := NewShareRegistry(db, utcClock(), 32)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	file := makeFile(t, db, owner.ID)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	share, _, err := reg.CreateOrRenew(ctx, file.ID, "", "", 1, now)
	require.NoError(t, err)

	got, _, err := reg.GetValid(ctx, share.Token, share.ExpiresAt.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.ID)

	_, _, err = reg.GetValid(ctx, share.Token, share.ExpiresAt)
	assert.ErrorIs(t, err, ErrExpired)

	_, _, err = reg.GetValid(ctx, "no-such-token", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	reg := NewShareRegistry(db, utcClock(), 32)
	ledger := NewAccessLedger(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	makeUser(t, db, "intruder")
	file := makeFile(t, db, owner.ID)
	now := time.Now().UTC()

	share, _, err := reg.CreateOrRenew(ctx, file.ID, "", "", 24, now)
	require.NoError(t, err)

	ledger.Record(ctx, file.ID, share.Token, now)
	ledger.Record(ctx, file.ID, share.Token, now.Add(time.Minute))

	assert.ErrorIs(t, reg.Revoke(ctx, file.ID, "intruder"), ErrUnauthorized)
	assert.ErrorIs(t, reg.Revoke(ctx, 9999, owner.ID), ErrNotFound)

	require.NoError(t, reg.Revoke(ctx, file.ID, owner.ID))

	var shares, accesses int64
	require.NoError(t, db.Model(&model.PublicShare{}).Count(&shares).Error)
	require.NoError(t, db.Model(&model.AccessRecord{}).Count(&accesses).Error)
	assert.Zero(t, shares)
	assert.Zero(t, accesses, "revoking a link drops its access trail")

	// Nothing left to revoke
	assert.ErrorIs(t, reg.Revoke(ctx, file.ID, owner.ID), ErrNotFound)
}

func TestListByOwnerDerivesAccessStatus(t *testing.T) {
	db := newTestDB(t)
	reg := NewShareRegistry(db, utcClock(), 32)
	ledger := NewAccessLedger(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	opened := makeFile(t, db, owner.ID)
	untouched := makeFile(t, db, owner.ID)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	openedShare, _, err := reg.CreateOrRenew(ctx, opened.ID, "alice@example.com", "", 24, now)
	require.NoError(t, err)
	_, _, err = reg.CreateOrRenew(ctx, untouched.ID, "", "", 24, now)
	require.NoError(t, err)

	firstOpen := now.Add(time.Hour)
	ledger.Record(ctx, opened.ID, openedShare.Token, firstOpen.Add(time.Minute))
	ledger.Record(ctx, opened.ID, openedShare.Token, firstOpen)

	rows, err := reg.ListByOwner(ctx, ledger, owner.ID, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byFile := map[uint]OwnedShare{}
	for _, r := range rows {
		byFile[r.Share.FileID] = r
	}

	require.Contains(t, byFile, opened.ID)
	assert.True(t, byFile[opened.ID].Accessed)
	require.NotNil(t, byFile[opened.ID].FirstAccessAt)
	assert.Equal(t, firstOpen, byFile[opened.ID].FirstAccessAt.UTC())

	assert.False(t, byFile[untouched.ID].Accessed)
	assert.Nil(t, byFile[untouched.ID].FirstAccessAt)
	assert.False(t, byFile[untouched.ID].Expired)
}
