package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backend selectors.
const (
	StorageMemory = "memory"
	StoragePgsql  = "pgsql"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	StorageBackend string // "memory" or "pgsql"
	DatabaseURL    string
	EnableDBCheck  bool
	RateLimit      string // ulule/limiter format, e.g. "100-M"
	AllowedOrigins []string
	MinorUnits     int32 // currency minor-unit scale for balance comparison
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORAGE_BACKEND", StorageMemory)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("CURRENCY_MINOR_UNITS", 2)

	viper.AutomaticEnv()

	cfg := &Config{
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		StorageBackend: viper.GetString("STORAGE_BACKEND"),
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		EnableDBCheck:  viper.GetBool("ENABLE_DB_CHECK"),
		RateLimit:      viper.GetString("RATE_LIMIT"),
		AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		MinorUnits:     viper.GetInt32("CURRENCY_MINOR_UNITS"),
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StoragePgsql:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORAGE_BACKEND is %q", StoragePgsql)
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.MinorUnits < 0 {
		log.Printf("Warning: negative CURRENCY_MINOR_UNITS (%d). Defaulting to 2.\n", cfg.MinorUnits)
		cfg.MinorUnits = 2
	}

	return cfg, nil
}
