package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"

	"spendwise/internal/log"
)

type Config struct {
	// HTTP Server
	Port      string
	RateLimit string
	LogLevel  string

	// Persistence
	DataBackend  string
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	MirrorExpensesSheet      string
	MirrorCategoriesSheet    string
	MirrorResyncInterval     time.Duration

	// Insights
	InsightsProvider  string
	InsightsAPIKey    string
	InsightsModel     string
	InsightsBaseURL   string
	InsightsTimeout   time.Duration
	InsightsCacheSize int
}

var defaults = map[string]any{
	"PORT":                        "8081",
	"RATE_LIMIT":                  "60-M",
	"LOG_LEVEL":                   "info",
	"DATA_BACKEND":                "sqlite",
	"SQLITE_DB_PATH":              "./data/spendwise.db",
	"AMQP_URL":                    "",
	"AMQP_EXCHANGE":               "spendwise",
	"AMQP_QUEUE":                  "ledger_snapshots",
	"GOOGLE_SPREADSHEET_ID":       "",
	"GOOGLE_SERVICE_ACCOUNT_JSON": "",
	"GOOGLE_SERVICE_ACCOUNT_FILE": "",
	"MIRROR_EXPENSES_SHEET":       "Expenses",
	"MIRROR_CATEGORIES_SHEET":     "Categories",
	"MIRROR_RESYNC_INTERVAL":      "10m",
	"INSIGHTS_PROVIDER":           "static",
	"INSIGHTS_API_KEY":            "",
	"INSIGHTS_MODEL":              "",
	"INSIGHTS_BASE_URL":           "",
	"INSIGHTS_TIMEOUT":            "60s",
	"INSIGHTS_CACHE_SIZE":         32,
}

// Load reads the configuration from the environment. Call godotenv first
// when a .env file should be honored.
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Port:      v.GetString("PORT"),
		RateLimit: v.GetString("RATE_LIMIT"),
		LogLevel:  v.GetString("LOG_LEVEL"),

		DataBackend:  strings.ToLower(v.GetString("DATA_BACKEND")),
		SQLiteDBPath: v.GetString("SQLITE_DB_PATH"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
		MirrorExpensesSheet:      v.GetString("MIRROR_EXPENSES_SHEET"),
		MirrorCategoriesSheet:    v.GetString("MIRROR_CATEGORIES_SHEET"),
		MirrorResyncInterval:     v.GetDuration("MIRROR_RESYNC_INTERVAL"),

		InsightsProvider:  strings.ToLower(v.GetString("INSIGHTS_PROVIDER")),
		InsightsAPIKey:    v.GetString("INSIGHTS_API_KEY"),
		InsightsModel:     v.GetString("INSIGHTS_MODEL"),
		InsightsBaseURL:   v.GetString("INSIGHTS_BASE_URL"),
		InsightsTimeout:   v.GetDuration("INSIGHTS_TIMEOUT"),
		InsightsCacheSize: v.GetInt("INSIGHTS_CACHE_SIZE"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}

	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		errors = append(errors, fmt.Sprintf("invalid rate limit '%s': use the form <limit>-<S|M|H|D>", c.RateLimit))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	errors = append(errors, c.validateAMQP()...)

	switch c.InsightsProvider {
	case "static":
	case "openai", "anthropic":
		if c.InsightsAPIKey == "" {
			errors = append(errors, fmt.Sprintf("INSIGHTS_API_KEY is required for provider '%s'", c.InsightsProvider))
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid insights provider '%s': must be one of [static openai anthropic]", c.InsightsProvider))
	}
	if c.InsightsTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insights timeout %v: must be at least 1 second", c.InsightsTimeout))
	}
	if c.InsightsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid insights cache size %d: must be at least 1", c.InsightsCacheSize))
	}

	return joinErrors(errors)
}

// ValidateWorker checks the settings the mirror worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the mirror worker")
	}
	if c.DataBackend != "sqlite" {
		errors = append(errors, "the mirror worker reads the sqlite backend; DATA_BACKEND must be 'sqlite'")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided with GOOGLE_SPREADSHEET_ID")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	if c.MirrorResyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid resync interval %v: must be at least 1 second", c.MirrorResyncInterval))
	} else if c.MirrorResyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid resync interval %v: must be at most 24 hours", c.MirrorResyncInterval))
	}

	return joinErrors(errors)
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}

	var errors []string
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
