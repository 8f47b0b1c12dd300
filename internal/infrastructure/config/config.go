package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"netstate-agent/internal/domain/constants"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/pkg/utils"
)

// Config is a struct that holds application configuration
type Config struct {
	Database DatabaseConfig
	Agent    AgentConfig
	Apply    ApplyConfig
	Health   HealthConfig
}

// DatabaseConfig is a struct that holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AgentConfig is a struct that holds agent configuration
type AgentConfig struct {
	NodeName     string
	PollInterval time.Duration
	Backoff      BackoffConfig
}

// BackoffConfig holds exponential backoff settings for the polling loop
type BackoffConfig struct {
	Enabled     bool
	MaxInterval time.Duration
	Multiplier  float64
}

// ApplyConfig holds settings for applying desired states to the host
type ApplyConfig struct {
	CommandTimeout      time.Duration
	VerifyEnabled       bool
	VerifyRetryCount    int
	VerifyRetryInterval time.Duration
	RollbackEnabled     bool
	OvsEnabled          bool
	SnapshotDirectory   string
	SnapshotKeep        int
}

// HealthConfig is a struct that holds health check configuration
type HealthConfig struct {
	Port string
}

// ConfigLoader is an interface for loading configuration
type ConfigLoader interface {
	Load() (*Config, error)
}

// EnvironmentConfigLoader is an implementation that loads configuration from environment variables
type EnvironmentConfigLoader struct{}

// NewEnvironmentConfigLoader creates a new EnvironmentConfigLoader
func NewEnvironmentConfigLoader() ConfigLoader {
	return &EnvironmentConfigLoader{}
}

// Load loads configuration from environment variables
func (l *EnvironmentConfigLoader) Load() (*Config, error) {
	pollInterval := getEnvDurationOrDefault("POLL_INTERVAL", constants.DefaultPollInterval)

	config := &Config{
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", constants.DefaultDBHost),
			Port:         getEnvOrDefault("DB_PORT", constants.DefaultDBPort),
			User:         getEnvOrDefault("DB_USER", "root"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			Database:     getEnvOrDefault("DB_NAME", constants.DefaultDBName),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDurationOrDefault("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Agent: AgentConfig{
			NodeName:     getEnvOrDefault("NODE_NAME", defaultNodeName()),
			PollInterval: pollInterval,
			Backoff: BackoffConfig{
				Enabled:     getEnvBoolOrDefault("BACKOFF_ENABLED", true),
				MaxInterval: getEnvDurationOrDefault("BACKOFF_MAX_INTERVAL", 10*pollInterval),
				Multiplier:  getEnvFloatOrDefault("BACKOFF_MULTIPLIER", 2.0),
			},
		},
		Apply: ApplyConfig{
			CommandTimeout:      getEnvDurationOrDefault("COMMAND_TIMEOUT", constants.DefaultCommandTimeout),
			VerifyEnabled:       getEnvBoolOrDefault("VERIFY_ENABLED", true),
			VerifyRetryCount:    getEnvIntOrDefault("VERIFY_RETRY_COUNT", constants.DefaultVerifyRetryCount),
			VerifyRetryInterval: getEnvDurationOrDefault("VERIFY_RETRY_INTERVAL", constants.DefaultVerifyRetryInterval),
			RollbackEnabled:     getEnvBoolOrDefault("ROLLBACK_ENABLED", true),
			OvsEnabled:          getEnvBoolOrDefault("OVS_ENABLED", false),
			SnapshotDirectory:   getEnvOrDefault("SNAPSHOT_DIR", constants.DefaultSnapshotDir),
			SnapshotKeep:        getEnvIntOrDefault("SNAPSHOT_KEEP", constants.DefaultSnapshotKeep),
		},
		Health: HealthConfig{
			Port: getEnvOrDefault("HEALTH_PORT", constants.DefaultHealthPort),
		},
	}

	// Validate configuration
	if err := l.validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validate validates the configuration
func (l *EnvironmentConfigLoader) validate(config *Config) error {
	// Validate database configuration
	if err := utils.ValidateDatabaseConfig(config.Database.Host, config.Database.Port, config.Database.User, config.Database.Password, config.Database.Database); err != nil {
		return errors.NewValidationError("invalid database configuration", err)
	}

	// Validate agent configuration
	if err := utils.ValidateHostname(config.Agent.NodeName); err != nil {
		return errors.NewValidationError("invalid node name", err)
	}
	if config.Agent.PollInterval <= 0 {
		return errors.NewValidationError("invalid polling interval", nil)
	}
	if config.Agent.Backoff.Enabled && config.Agent.Backoff.MaxInterval < config.Agent.PollInterval {
		return errors.NewValidationError("backoff max interval is shorter than polling interval", nil)
	}

	// Validate apply configuration
	if config.Apply.CommandTimeout <= 0 {
		return errors.NewValidationError("invalid command timeout", nil)
	}
	if config.Apply.VerifyEnabled && config.Apply.VerifyRetryCount < 1 {
		return errors.NewValidationError("invalid verify retry count", nil)
	}
	if config.Apply.SnapshotDirectory == "" {
		return errors.NewValidationError("snapshot directory not configured", nil)
	}
	if config.Apply.SnapshotKeep < 1 {
		return errors.NewValidationError("invalid snapshot keep count", nil)
	}

	// Validate health check configuration
	if config.Health.Port == "" {
		return errors.NewValidationError("health check port not configured", nil)
	}

	return nil
}

// defaultNodeName returns the hostname without its domain suffix (e.g. .novalocal)
func defaultNodeName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	if idx := strings.Index(hostname, "."); idx != -1 {
		hostname = hostname[:idx]
	}
	return hostname
}

// Environment variable helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
