package config

import (
	"fmt"
	"os"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type StorageConfig struct {
	ImagesBucket    string
	DocumentsBucket string
	PublicBaseURL   string
}

type AuthConfig struct {
	JWTSecret        string
	TokenExpiryHours int
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type Config struct {
	Repositories RepositoriesConfig
	Storage      StorageConfig
	Auth         AuthConfig
	ServerPort   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "bio_rider_map"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Storage: StorageConfig{
			ImagesBucket:    getEnvOrDefault("STORAGE_IMAGES_BUCKET", "location-images"),
			DocumentsBucket: getEnvOrDefault("STORAGE_DOCUMENTS_BUCKET", "location-documents"),
			PublicBaseURL:   getEnvOrDefault("STORAGE_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnvOrDefault("JWT_SECRET_KEY", ""),
			TokenExpiryHours: 24,
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
