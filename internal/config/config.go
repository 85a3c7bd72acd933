// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

type Config struct {
	// HTTP server
	Port         string        `envconfig:"PORT" default:"8081"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	RateLimit    int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	// Record store
	DataBackend   string `envconfig:"DATA_BACKEND" default:"memory"`
	SQLiteDBPath  string `envconfig:"SQLITE_DB_PATH" default:"./data/agenda.db"`
	DataDirectory string `envconfig:"DATA_DIRECTORY" default:"data"`

	// AMQP; an empty URL disables change notifications
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"agenda"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"ledger_export"`

	// Google Sheets ledger export (worker only)
	GoogleSpreadsheetID   string `envconfig:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName       string `envconfig:"GOOGLE_SHEET_NAME" default:"Ledger"`
	GoogleCredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE"`
	GoogleCredentialsJSON string `envconfig:"GOOGLE_CREDENTIALS_JSON"`

	// Intent resolver; an empty URL disables smart search
	IntentURL       string        `envconfig:"INTENT_URL"`
	IntentAPIKey    string        `envconfig:"INTENT_API_KEY"`
	IntentTimeout   time.Duration `envconfig:"INTENT_TIMEOUT" default:"3s"`
	IntentCache     string        `envconfig:"INTENT_CACHE" default:"memory"`
	IntentCacheTTL  time.Duration `envconfig:"INTENT_CACHE_TTL" default:"10m"`
	IntentCacheSize int           `envconfig:"INTENT_CACHE_SIZE" default:"256"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	// Presentation
	Currency string `envconfig:"CURRENCY" default:"EUR"`
	Locale   string `envconfig:"LOCALE" default:"en"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// AllowStatusRevert permits moving a completed obligation or entry back to pending.
	AllowStatusRevert bool `envconfig:"ALLOW_STATUS_REVERT" default:"false"`
}

var (
	validBackends   = []string{"memory", "sqlite"}
	validCaches     = []string{"memory", "redis", "none"}
	validLogFormats = []string{"text", "json"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
)

// Load reads the configuration from the environment. It does not validate.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %d: must not be negative (0 disables)", c.RateLimit))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.IntentURL != "" {
		if u, err := url.Parse(c.IntentURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("invalid intent URL '%s': must be an http(s) URL", c.IntentURL))
		}
	}
	if c.IntentTimeout <= 0 || c.IntentTimeout > time.Minute {
		errs = append(errs, fmt.Sprintf("invalid intent timeout %v: must be between 0 and 1 minute", c.IntentTimeout))
	}
	if !slices.Contains(validCaches, c.IntentCache) {
		errs = append(errs, fmt.Sprintf("invalid intent cache '%s': must be one of %v", c.IntentCache, validCaches))
	}
	if c.IntentCache == "redis" && c.RedisAddr == "" {
		errs = append(errs, "Redis address cannot be empty when using redis intent cache")
	}
	if c.IntentCache == "memory" && c.IntentCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid intent cache size %d: must be at least 1", c.IntentCacheSize))
	}

	if _, err := currency.ParseISO(c.Currency); err != nil {
		errs = append(errs, fmt.Sprintf("invalid currency '%s': must be an ISO 4217 code", c.Currency))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	if !slices.Contains(validLogFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateExport checks the settings the ledger export worker needs on top
// of Validate.
func (c *Config) ValidateExport() error {
	var errs []string
	if c.AMQPURL == "" {
		errs = append(errs, "AMQP_URL is required for the export worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errs = append(errs, "GOOGLE_SPREADSHEET_ID is required for the export worker")
	}
	if c.GoogleSheetName == "" {
		errs = append(errs, "GOOGLE_SHEET_NAME is required for the export worker")
	}
	if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" {
		errs = append(errs, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided")
	}
	if len(errs) > 0 {
		return fmt.Errorf("export configuration invalid:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// IntentEnabled reports whether smart search is configured.
func (c *Config) IntentEnabled() bool {
	return c.IntentURL != ""
}
