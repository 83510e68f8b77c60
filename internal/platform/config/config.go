// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

Environment variables are mapped onto a typed [Config] with 'caarlos0/env'.
In development a local .env file is read first through 'joho/godotenv';
variables already present in the process environment always win.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, OAuth) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/postgres"
	redisstore "github.com/genra-app/genra/internal/platform/redis"
)

// # Configuration Schema

// Config holds all runtime configuration for the GenrA API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PublicBaseURL is the externally reachable origin, used to build avatar and OAuth URLs.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// Relational Database (PostgreSQL)
	Database

	// Key-Value Cache (Redis)
	RedisURL      string `env:"REDIS_URL,required"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// Cryptographic keys for identity signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Avatar file storage
	AvatarDir string `env:"AVATAR_DIR" envDefault:"./data/avatars"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX" envDefault:"genra.app"`

	// Google-compatible OAuth2 provider
	GoogleClientID     string `env:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
	GoogleAuthURL      string `env:"OAUTH_GOOGLE_AUTH_URL"     envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	GoogleTokenURL     string `env:"OAUTH_GOOGLE_TOKEN_URL"    envDefault:"https://oauth2.googleapis.com/token"`
	GoogleUserInfoURL  string `env:"OAUTH_GOOGLE_USERINFO_URL" envDefault:"https://openidconnect.googleapis.com/v1/userinfo"`

	// AppScheme is the custom URL scheme of the mobile app, accepted as an OAuth redirect_to target.
	AppScheme string `env:"APP_SCHEME" envDefault:"genra"`

	// OAuthRedirectURL is the provider callback; defaults to PublicBaseURL + /api/v1/auth/oauth/google/callback.
	OAuthRedirectURL string `env:"OAUTH_REDIRECT_URL"`
}

// Database is the subset of [Config] needed by the migrate and seed commands.
type Database struct {
	DatabaseURL string `env:"DATABASE_URL,required"`

	DatabaseMaxConns int32 `env:"DATABASE_MAX_CONNS" envDefault:"25"`
	DatabaseMinConns int32 `env:"DATABASE_MIN_CONNS" envDefault:"5"`

	// ConnectAttempts bounds startup retries for PostgreSQL and Redis.
	ConnectAttempts uint `env:"CONNECT_ATTEMPTS" envDefault:"5"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is [Load] with explicit dotenv files. Missing files are ignored.
func LoadFiles(files ...string) (*Config, error) {
	if err := loadDotEnv(files); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = strings.TrimRight(cfg.PublicBaseURL, "/") + "/api/v1/auth/oauth/google/callback"
	}

	return cfg, nil
}

// LoadDatabase parses only the database settings, after reading the dotenv files.
func LoadDatabase(files ...string) (*Database, error) {
	if err := loadDotEnv(files); err != nil {
		return nil, err
	}

	cfg := &Database{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(files []string) error {

	// godotenv.Load never overrides variables already set in the environment.
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: failed to read %s: %w", file, err)
		}
	}
	return nil
}

// PoolOptions returns the PostgreSQL pool settings.
func (d *Database) PoolOptions() postgres.Options {
	return postgres.Options{
		MaxConns:         d.DatabaseMaxConns,
		MinConns:         d.DatabaseMinConns,
		StatementTimeout: constants.GlobalRequestTimeout,
		Attempts:         d.ConnectAttempts,
	}
}

// RedisOptions returns the Redis client settings.
func (c *Config) RedisOptions() redisstore.Options {
	return redisstore.Options{PoolSize: c.RedisPoolSize, Attempts: c.ConnectAttempts}
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GoogleOAuthEnabled reports whether OAuth client credentials are configured.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// OriginSuffix returns the allowed CORS origin suffix for production.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
