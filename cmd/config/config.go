package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Media    MediaConfig
}

type ServerConfig struct {
	Addr            string
	SecureCookie    bool
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver string // sqlite3, postgres or mongo
	DSN    string
	Name   string // mongo database name
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type MediaConfig struct {
	Driver        string // s3 or minio
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PublicBaseURL string
	PresignTTL    time.Duration
}

// Load reads config.yaml from the given directories (if present), a .env
// file (if present) and VIDEO_* environment variables, in increasing
// order of precedence.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("VIDEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            v.GetString("server.addr"),
			SecureCookie:    v.GetBool("server.secure_cookie"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
			Name:   v.GetString("database.name"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Media: MediaConfig{
			Driver:        v.GetString("media.driver"),
			Bucket:        v.GetString("media.bucket"),
			Region:        v.GetString("media.region"),
			Endpoint:      v.GetString("media.endpoint"),
			AccessKey:     v.GetString("media.access_key"),
			SecretKey:     v.GetString("media.secret_key"),
			UseSSL:        v.GetBool("media.use_ssl"),
			PublicBaseURL: v.GetString("media.public_base_url"),
			PresignTTL:    v.GetDuration("media.presign_ttl"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.secure_cookie", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "videos.db")
	v.SetDefault("database.name", "videos")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("media.driver", "s3")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.use_ssl", true)
	v.SetDefault("media.presign_ttl", 15*time.Minute)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	switch c.Media.Driver {
	case "s3", "minio":
	default:
		return fmt.Errorf("unsupported media.driver %q", c.Media.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Media.Bucket == "" {
		return errors.New("media.bucket is required")
	}
	if c.Media.Driver == "minio" && c.Media.Endpoint == "" {
		return errors.New("media.endpoint is required for minio")
	}
	return nil
}
