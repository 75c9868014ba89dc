package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Storage StorageConfig
	JWT     JWTConfig
	CORS    CORSConfig
	Log     LogConfig
	Client  ClientConfig
	Auth    AuthConfig
}

// StorageConfig locates the on-disk store hierarchy.
type StorageConfig struct {
	DataDir      string
	BusyTimeout  time.Duration
	MaxOpenConns int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ClientConfig tunes the desktop-client bundle downloader.
type ClientConfig struct {
	ServerURL string
	Timeout   time.Duration
}

// AuthConfig gates token enforcement on administrative routes.
type AuthConfig struct {
	Required bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Storage = StorageConfig{
		DataDir:      v.GetString("DATA_DIR"),
		BusyTimeout:  parseDuration(v.GetString("SQLITE_BUSY_TIMEOUT"), 5*time.Second),
		MaxOpenConns: v.GetInt("SQLITE_MAX_OPEN_CONNS"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Client = ClientConfig{
		ServerURL: v.GetString("CLIENT_SERVER_URL"),
		Timeout:   parseDuration(v.GetString("CLIENT_TIMEOUT"), 30*time.Second),
	}

	cfg.Auth = AuthConfig{Required: v.GetBool("AUTH_REQUIRED")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SQLITE_BUSY_TIMEOUT", "5s")
	v.SetDefault("SQLITE_MAX_OPEN_CONNS", 1)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "diary-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CLIENT_SERVER_URL", "http://127.0.0.1:5000")
	v.SetDefault("CLIENT_TIMEOUT", "30s")

	v.SetDefault("AUTH_REQUIRED", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
