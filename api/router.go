// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"sharedrop/fileshare-api/db"
	"sharedrop/fileshare-api/middleware"
	"sharedrop/fileshare-api/security"
	"sharedrop/fileshare-api/service"
	"sharedrop/fileshare-api/storage"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	Store  storage.Storage

	Clock      *service.Clock
	Registry   *service.ShareRegistry
	Ledger     *service.AccessLedger
	Direct     *service.DirectShares
	Visibility *service.Visibility
	Files      *service.Files
	Notifier   *service.Notifier
}

func NewRouter() (*API, error) {
	a := &API{}

	d, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = d

	makeLogger()

	store, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage, %w", err)
	}
	a.Store = store

	clock, err := service.NewClock()
	if err != nil {
		return nil, fmt.Errorf("failed to load local zone, %w", err)
	}

	a.Clock = clock
	a.Registry = service.NewShareRegistry(d, clock, viper.GetInt("security.token_byte_length"))
	a.Ledger = service.NewAccessLedger(d)
	a.Direct = service.NewDirectShares(d)
	a.Visibility = service.NewVisibility(d, a.Direct, a.Registry)
	a.Files = service.NewFiles(d, store)
	a.Notifier = service.NewNotifier()
	a.Argon = security.New()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	jwt := middleware.NewJWTMiddleware(d)

	rateLimit := viper.GetInt("security.rate_limit")
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	main := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// GET /api/validate		-> Validates a JWT token
		main.GET("/validate", jwt, a.Validate)
	}

	users := main.Group("/users")
	{
		// POST /api/users 		-> Registers a new user
		users.POST("", a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and returns a JWT cookie
		users.POST("/login", a.UserLogin)

		// GET /api/users		-> Returns the caller's profile
		users.GET("", jwt, a.UserFetch)

		// PATCH /api/users		-> Updates the caller's profile
		users.PATCH("", jwt, a.UserEdit)

		// GET /api/users/photo		-> Serves the caller's profile photo
		users.GET("/photo", jwt, a.UserPhoto)

		// POST /api/users/password	-> Changes the caller's password
		users.POST("/password", jwt, a.PasswordChange)

		// POST /api/users/password/forgot -> Requests a reset mail
		users.POST("/password/forgot", a.PasswordForgot)

		// POST /api/users/password/reset  -> Redeems a reset token
		users.POST("/password/reset", a.PasswordReset)
	}

	files := main.Group("/files", jwt)
	{
		// POST /api/files         	-> Uploads a new file
		files.POST("", a.FileUpload)

		// GET /api/files		-> Lists the caller's own files
		files.GET("", a.FileList)

		// GET /api/files/:id		-> Downloads a file the caller may read
		files.GET("/:id", a.FileDownload)

		// DELETE /api/files/:id	-> Deletes a file owned by the caller
		files.DELETE("/:id", a.FileDelete)
	}

	shares := main.Group("/shares", jwt)
	{
		// POST /api/shares/direct	-> Shares a file with another account
		shares.POST("/direct", a.ShareDirect)

		// GET /api/shares/received	-> Files other accounts shared with the caller
		shares.GET("/received", a.SharesReceived)

		// POST /api/shares/public	-> Creates or renews a file's public link
		shares.POST("/public", a.SharePublic)

		// GET /api/shares/public	-> The caller's public links with access status
		shares.GET("/public", a.SharePublicList)

		// DELETE /api/shares/public/:fileID -> Revokes a file's public link
		shares.DELETE("/public/:fileID", a.SharePublicRevoke)
	}

	// The only anonymous entry point. ?meta=1 returns metadata as JSON,
	// anything else streams the bytes. Both count as an access.
	main.GET("/public/:token", a.PublicFetch)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
