// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"s3", "local"}
	validDBDrivers    = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.root", "storage_root")
	v.BindEnv("storage.local_zone", "storage_local_zone")

	v.BindEnv("security.token_byte_length", "security_token_byte_length")
	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.bucket", "aws_bucket")
	v.BindEnv("aws.access_key", "aws_access_key")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")

	v.BindEnv("mail.enabled", "mail_enabled")
	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender_address", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "fileshare.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.root", "uploads")
	v.SetDefault("storage.local_zone", "UTC")

	// 32 bytes = 256 bits of entropy per public link token
	v.SetDefault("security.token_byte_length", 32)
	v.SetDefault("security.rate_limit", 20)

	// In MiB
	v.SetDefault("upload.max_size", 100)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("db.driver must be one of sqlite, postgres")
	}

	// Public link tokens are bearer credentials, 128 bits is the floor
	if v.GetInt("security.token_byte_length") < 16 {
		return errors.New("security.token_byte_length must be at least 16")
	}

	if _, err := time.LoadLocation(v.GetString("storage.local_zone")); err != nil {
		return fmt.Errorf("storage.local_zone is not a valid IANA zone name, %w", err)
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("aws.region") == "" {
			return errors.New("aws.region can't be empty")
		}
		if v.GetString("aws.bucket") == "" {
			return errors.New("aws.bucket can't be empty")
		}
		if v.GetString("aws.access_key") == "" {
			return errors.New("aws.access_key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("aws.secret_access_key can't be empty")
		}
	case "local":
		if v.GetString("storage.root") == "" {
			return errors.New("storage.root can't be empty")
		}
	default:
		return fmt.Errorf("storage.type must be one of %v", validStorageTypes)
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("mail.host can't be empty")
		}
		if v.GetString("mail.sender_address") == "" {
			return errors.New("mail.sender_address can't be empty")
		}
	}

	return nil
}
