package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sharedrop/fileshare-api/middleware"
	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/security"
	"sharedrop/fileshare-api/service"
	"sharedrop/fileshare-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	store, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	clock := &service.Clock{Zone: time.UTC}

	a := &API{
		DB:       db,
		Argon:    security.New(),
		Store:    store,
		Clock:    clock,
		Registry: service.NewShareRegistry(db, clock, 32),
		Ledger:   service.NewAccessLedger(db),
		Direct:   service.NewDirectShares(db),
		Notifier: service.NewNotifier(),
	}
	a.Visibility = service.NewVisibility(db, a.Direct, a.Registry)
	a.Files = service.NewFiles(db, store)

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())
	router.POST("/api/users/password/forgot", a.PasswordForgot)
	router.GET("/api/public/:token", a.PublicFetch)
	a.Router = router

	return a
}

func postJSON(a *API, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	a.Router.ServeHTTP(w, req)

	return w
}

func TestPasswordForgotUniformReply(t *testing.T) {
	a := newTestAPI(t)

	user := model.User{
		ID:           "user1",
		FirstName:    "Test",
		LastName:     "User",
		Email:        "known@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, a.DB.Create(&user).Error)

	known := postJSON(a, "/api/users/password/forgot", `{"email":"known@example.com"}`)
	unknown := postJSON(a, "/api/users/password/forgot", `{"email":"nobody@example.com"}`)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String(),
		"the reply must not reveal whether the email is registered")

	var count int64
	require.NoError(t, a.DB.Model(model.ResetToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "only the registered address gets a token")
}

func TestPasswordForgotKeepsOneLiveToken(t *testing.T) {
	a := newTestAPI(t)

	user := model.User{
		ID:           "user1",
		FirstName:    "Test",
		LastName:     "User",
		Email:        "known@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, a.DB.Create(&user).Error)

	for range 3 {
		w := postJSON(a, "/api/users/password/forgot", `{"email":"known@example.com"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var total, live int64
	require.NoError(t, a.DB.Model(model.ResetToken{}).Count(&total).Error)
	require.NoError(t, a.DB.Model(model.ResetToken{}).
		Where("used = ? AND expires_at > ?", false, time.Now().UTC()).
		Count(&live).Error)

	assert.EqualValues(t, 3, total)
	assert.EqualValues(t, 1, live, "minting a token retires every older live one")
}
