package service

import (
	"context"
	"testing"
	"time"

	"sharedrop/fileshare-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstAccessReturnsEarliest(t *testing.T) {
	db := newTestDB(t)
	ledger := NewAccessLedger(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	file := makeFile(t, db, owner.ID)

	earliest := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose
	ledger.Record(ctx, file.ID, "tok", earliest.Add(2*time.Hour))
	ledger.Record(ctx, file.ID, "tok", earliest)
	ledger.Record(ctx, file.ID, "tok", earliest.Add(time.Hour))

	first, err := ledger.FirstAccess(ctx, file.ID, "tok")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, earliest, first.AccessedAt.UTC())

	var count int64
	require.NoError(t, db.Model(&model.AccessRecord{}).Count(&count).Error)
	assert.EqualValues(t, 3, count, "the ledger is append-only, one row per fetch")
}

func TestFirstAccessNilWhenNeverFetched(t *testing.T) {
	db := newTestDB(t)
	ledger := NewAccessLedger(db)

	first, err := ledger.FirstAccess(context.Background(), 42, "tok")
	require.NoError(t, err)
	assert.Nil(t, first)
}

func TestCountAccessesScopedToToken(t *testing.T) {
	db := newTestDB(t)
	ledger := NewAccessLedger(db)
	ctx := context.Background()

	owner := makeUser(t, db, "owner1")
	file := makeFile(t, db, owner.ID)
	now := time.Now().UTC()

	ledger.Record(ctx, file.ID, "tok-a", now)
	ledger.Record(ctx, file.ID, "tok-a", now)
	ledger.Record(ctx, file.ID, "tok-b", now)

	n, err := ledger.CountAccesses(ctx, file.ID, "tok-a")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
