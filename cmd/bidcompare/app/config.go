package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/bidcompare/pkg/constants"
	"github.com/agentstation/bidcompare/pkg/errors"
	"github.com/agentstation/bidcompare/pkg/sources"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Endpoint URL overrides keyed by endpoint ID
	Endpoints map[sources.ID]string

	// HTTP
	Timeout    time.Duration
	AuthScheme string
	AuthToken  string
	AuthHeader string
	AuthParam  string

	// Logging configuration. LogLevel is only set by --log-level; the
	// LOG_LEVEL environment variable is read by NewLogger.
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (BIDCOMPARE_*)
// 3. .env files
// 4. Config file (configFile, or ~/.bidcompare.yaml / ./.bidcompare.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("auth.scheme", "none")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "reading config file", err)
			}
		}
	}

	config := &Config{
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),
		Endpoints:  make(map[sources.ID]string),
		Timeout:    v.GetDuration("timeout"),
		AuthScheme: v.GetString("auth.scheme"),
		AuthToken:  v.GetString("auth.token"),
		AuthHeader: v.GetString("auth.header"),
		AuthParam:  v.GetString("auth.param"),
		LogFormat:  getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:  getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	for _, id := range sources.IDs() {
		if url := v.GetString("endpoints." + string(id)); url != "" {
			config.Endpoints[id] = url
		}
	}
	for key := range v.GetStringMap("endpoints") {
		if !sources.ID(key).IsValid() {
			return nil, errors.NewConfigError("endpoints", "unknown endpoint "+key, nil)
		}
	}

	if config.Timeout < 0 {
		return nil, errors.NewConfigError("timeout", "must not be negative", nil)
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	c.LogLevel = logLevel
}

// AuthParamName returns the header or query parameter the auth scheme uses.
func (c *Config) AuthParamName() string {
	if strings.EqualFold(c.AuthScheme, "header") {
		return c.AuthHeader
	}
	return c.AuthParam
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
