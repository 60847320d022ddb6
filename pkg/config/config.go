package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tokenforge/asset-gateway/pkg/portal"
)

// Config represents the gateway configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Portal     portal.Config    `mapstructure:"portal"`
	Policy     PolicyConfig     `mapstructure:"policy"`
	JWKS       JWKSConfig       `mapstructure:"jwks"`
	Confirm    ConfirmConfig    `mapstructure:"confirm"`
	System     SystemConfig     `mapstructure:"system"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains connection settings for the indexed read model
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// PolicyConfig locates the mutation authorization policy file
type PolicyConfig struct {
	File string `mapstructure:"file"`
}

// JWKSConfig contains JWKS configuration for session token validation
type JWKSConfig struct {
	URL    string `mapstructure:"url"`
	Issuer string `mapstructure:"issuer"`
}

// ConfirmConfig contains the confirmation loop settings
type ConfirmConfig struct {
	MiningInterval time.Duration `mapstructure:"mining_interval"`
	MiningTimeout  time.Duration `mapstructure:"mining_timeout"`
	IndexAttempts  int           `mapstructure:"index_attempts"`
	IndexDelay     time.Duration `mapstructure:"index_delay"`
}

// SystemConfig describes the ledger system the gateway fronts
type SystemConfig struct {
	ID      string `mapstructure:"id"`
	ChainID uint64 `mapstructure:"chain_id"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "4m")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "asset_index")

	// Policy defaults
	viper.SetDefault("policy.file", "policy.yaml")

	// Confirmation defaults
	viper.SetDefault("confirm.mining_interval", "500ms")
	viper.SetDefault("confirm.mining_timeout", "3m")
	viper.SetDefault("confirm.index_attempts", 30)
	viper.SetDefault("confirm.index_delay", "2s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if err := config.Portal.Validate(); err != nil {
		return err
	}
	if config.Policy.File == "" {
		return fmt.Errorf("policy.file is required")
	}
	if config.System.ID == "" {
		return fmt.Errorf("system.id is required")
	}
	return nil
}
