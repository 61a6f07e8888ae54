package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	ServerPort  int

	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int

	// Postgres mirror for bulk census archival. Optional; archival is
	// skipped when the host is empty.
	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	ComplianceAPIURL     string
	StripePublishableKey string

	ArtifactRoot string
}

func InitConfig() (Config, error) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DATABASE_DB_PATH", "data/server.db")
	viper.SetDefault("DATABASE_CACHE_ADDRESS", "localhost")
	viper.SetDefault("DATABASE_CACHE_PORT", 6379)
	viper.SetDefault("DATABASE_PORT", 5432)
	viper.SetDefault("COMPLIANCE_API_URL", "http://localhost:8000")
	viper.SetDefault("ARTIFACT_ROOT", "data/artifacts")

	config := Config{
		Environment:          viper.GetString("ENVIRONMENT"),
		ServerPort:           viper.GetInt("SERVER_PORT"),
		DatabaseDbPath:       viper.GetString("DATABASE_DB_PATH"),
		DatabaseCacheAddress: viper.GetString("DATABASE_CACHE_ADDRESS"),
		DatabaseCachePort:    viper.GetInt("DATABASE_CACHE_PORT"),
		DatabaseHost:         viper.GetString("DATABASE_HOST"),
		DatabasePort:         viper.GetInt("DATABASE_PORT"),
		DatabaseUser:         viper.GetString("DATABASE_USER"),
		DatabasePassword:     viper.GetString("DATABASE_PASSWORD"),
		DatabaseName:         viper.GetString("DATABASE_NAME"),
		ComplianceAPIURL:     viper.GetString("COMPLIANCE_API_URL"),
		StripePublishableKey: viper.GetString("STRIPE_PUBLISHABLE_KEY"),
		ArtifactRoot:         viper.GetString("ARTIFACT_ROOT"),
	}

	return config, nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c Config) CensusArchiveEnabled() bool {
	return c.DatabaseHost != ""
}
