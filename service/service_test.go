package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		model.User{},
		model.File{},
		model.DirectShare{},
		model.PublicShare{},
		model.AccessRecord{},
		model.ResetToken{},
	))

	return db
}

func utcClock() *Clock {
	return &Clock{Zone: time.UTC}
}

func makeUser(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()

	user := model.User{
		ID:           id,
		FirstName:    "Test",
		LastName:     "User",
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func makeFile(t *testing.T, db *gorm.DB, ownerID string) *model.File {
	t.Helper()

	file := model.File{
		OwnerID:     ownerID,
		StorageKey:  fmt.Sprintf("blob-%s-%d", ownerID, time.Now().UnixNano()),
		DisplayName: "report.pdf",
		Size:        1234,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&file).Error)

	return &file
}

// memStore is an in-memory blob store for tests.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	nextKey    int
	failDelete bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

var _ storage.Storage = (*memStore)(nil)

func (m *memStore) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextKey++
	key := fmt.Sprintf("obj-%d", m.nextKey)
	m.objects[key] = b

	return key, nil
}

func (m *memStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDelete {
		return fmt.Errorf("simulated outage")
	}

	if _, ok := m.objects[key]; !ok {
		return storage.ErrNotFound
	}

	delete(m.objects, key)
	return nil
}
