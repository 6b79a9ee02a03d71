// Package config loads the service configuration.
//
// Values are layered, later layers win:
// 1. defaults
// 2. config.json5 (and config.local.json5)
// 3. environment variables, including ones from a .env file
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cryptorewards-backend/internal/components/configutil"
	"cryptorewards-backend/internal/components/telemetry"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"
	// Off disables the daily refresh or the run history.
	Off = "off"
	// DailyRefreshOff disables the daily refresh.
	DailyRefreshOff = Off
)

type Config struct {
	DataDir             string  `json:"data_dir"`
	LogsDir             string  `json:"logs_dir"`
	UpdateIntervalHours float64 `json:"update_interval_hours"`
	DailyRefreshAt      string  `json:"daily_refresh_at"`
	PollIntervalSeconds int     `json:"poll_interval_seconds"`
	// Environment is "production" or anything else, only production starts
	// fetches with tls verification enabled.
	Environment         string  `json:"environment"`
	Port                string  `json:"port"`
	APIKey              string  `json:"api_key"`
	FetchTimeoutSeconds int     `json:"fetch_timeout_seconds"`
	FetchMaxAttempts    int     `json:"fetch_max_attempts"`
	RequestsPerSecond   float64 `json:"requests_per_second"`
	CollectConcurrency  int     `json:"collect_concurrency"`
	// DumpDir, when set, receives every fetched http exchange as a text file.
	DumpDir string `json:"dump_dir"`
	// HistoryFile is the sqlite run history, empty means <data_dir>/history.db
	// and "off" disables it.
	HistoryFile string `json:"history_file"`
	// HistoryURL points at a libsql server and replaces HistoryFile.
	HistoryURL       string `json:"history_url"`
	HistoryAuthToken string `json:"history_auth_token"`
	// Otlp exports traces and metrics, nothing is exported when unset.
	Otlp telemetry.OtlpConfig `json:"otlp"`
}

func Defaults() Config {
	return Config{
		DataDir:             "data",
		LogsDir:             "logs",
		UpdateIntervalHours: 6,
		DailyRefreshAt:      "00:00",
		PollIntervalSeconds: 60,
		Environment:         "development",
		Port:                "5001",
		FetchTimeoutSeconds: 30,
		FetchMaxAttempts:    3,
		RequestsPerSecond:   2,
		CollectConcurrency:  4,
	}
}

// Load reads the config file at configPath (optional, may be empty) and the
// given dotenv files (".env" if none are given, missing files are ignored),
// then applies environment overrides.
func Load(configPath string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if configPath != "" {
		var err error
		cfg, err = configutil.ReadOptional[Config](configPath)
		if err != nil {
			return Config{}, err
		}
	}

	err := mergo.Merge(&cfg, Defaults())
	if err != nil {
		return Config{}, err
	}
	err = cfg.applyEnv()
	if err != nil {
		return Config{}, err
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string, target *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = n
	return nil
}

func envFloat(key string, target *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = n
	return nil
}

func (c *Config) applyEnv() error {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.LogsDir = getEnv("LOGS_DIR", c.LogsDir)
	c.DailyRefreshAt = getEnv("DAILY_REFRESH_AT", c.DailyRefreshAt)
	c.Environment = getEnv("CRYPTO_ENV", c.Environment)
	c.Port = getEnv("PORT", c.Port)
	c.APIKey = getEnv("API_KEY", c.APIKey)
	c.DumpDir = getEnv("DUMP_DIR", c.DumpDir)
	c.HistoryFile = getEnv("HISTORY_FILE", c.HistoryFile)
	c.HistoryURL = getEnv("HISTORY_URL", c.HistoryURL)
	c.HistoryAuthToken = getEnv("HISTORY_AUTH_TOKEN", c.HistoryAuthToken)

	return errors.Join(
		envFloat("UPDATE_INTERVAL_HOURS", &c.UpdateIntervalHours),
		envInt("POLL_INTERVAL_SECONDS", &c.PollIntervalSeconds),
		envInt("FETCH_TIMEOUT_SECONDS", &c.FetchTimeoutSeconds),
		envInt("FETCH_MAX_ATTEMPTS", &c.FetchMaxAttempts),
		envFloat("REQUESTS_PER_SECOND", &c.RequestsPerSecond),
		envInt("COLLECT_CONCURRENCY", &c.CollectConcurrency),
	)
}

func (c Config) Validate() error {
	var errs []error
	if c.UpdateIntervalHours <= 0 {
		errs = append(errs, fmt.Errorf("update interval must be positive, got %v hours", c.UpdateIntervalHours))
	}
	if c.PollIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %d seconds", c.PollIntervalSeconds))
	}
	if c.FetchTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %d seconds", c.FetchTimeoutSeconds))
	}
	if c.FetchMaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("fetch max attempts must be positive, got %d", c.FetchMaxAttempts))
	}
	if c.CollectConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("collect concurrency must be positive, got %d", c.CollectConcurrency))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid port '%s'", c.Port))
	}
	return errors.Join(errs...)
}

// VerifyTLS reports whether fetches start with certificate verification.
func (c Config) VerifyTLS() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

func (c Config) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalHours * float64(time.Hour))
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// DailyRefresh returns the daily refresh time, or "" when disabled.
func (c Config) DailyRefresh() string {
	if strings.EqualFold(c.DailyRefreshAt, DailyRefreshOff) {
		return ""
	}
	return c.DailyRefreshAt
}

// HistoryPath returns the run history database, or "" when disabled.
func (c Config) HistoryPath() string {
	switch {
	case strings.EqualFold(c.HistoryFile, Off):
		return ""
	case c.HistoryFile == "":
		return filepath.Join(c.DataDir, "history.db")
	default:
		return c.HistoryFile
	}
}

func (c Config) Addr() string {
	return ":" + c.Port
}
