package service

import (
	"context"
	"testing"
	"time"

	"sharedrop/fileshare-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	shares := NewDirectShares(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	recipient := makeUser(t, db, "friend")
	file := makeFile(t, db, owner.ID)
	now := time.Now().UTC()

	created, err := shares.Share(ctx, file.ID, recipient.ID, now)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = shares.Share(ctx, file.ID, recipient.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, created, "second share with the same pair reports already-shared")

	var count int64
	require.NoError(t, db.Model(&model.DirectShare{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListRecipients(t *testing.T) {
	db := newTestDB(t)
	shares := NewDirectShares(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	a := makeUser(t, db, "alice")
	b := makeUser(t, db, "bob")
	file := makeFile(t, db, owner.ID)
	now := time.Now().UTC()

	_, err := shares.Share(ctx, file.ID, a.ID, now)
	require.NoError(t, err)
	_, err = shares.Share(ctx, file.ID, b.ID, now)
	require.NoError(t, err)

	ids, err := shares.ListRecipients(ctx, file.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)
}

func TestListSharedWith(t *testing.T) {
	db := newTestDB(t)
	shares := NewDirectShares(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	recipient := makeUser(t, db, "friend")
	shared := makeFile(t, db, owner.ID)
	makeFile(t, db, owner.ID) // not shared, must not show up
	now := time.Now().UTC()

	_, err := shares.Share(ctx, shared.ID, recipient.ID, now)
	require.NoError(t, err)

	got, err := shares.ListSharedWith(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, shared.ID, got[0].File.ID)
	assert.Equal(t, "Test User", got[0].OwnerName)
	assert.Equal(t, owner.Email, got[0].OwnerEmail)

	none, err := shares.ListSharedWith(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
