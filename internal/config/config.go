/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/teamcast/teamcast/internal/guide"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string
	DBBackend   DatabaseBackend
	DBDSN       string
	MetricsBind string

	// Event source
	ESPNBaseURL  string
	FetchTimeout time.Duration
	FetchRetries int

	// Guide generation
	HorizonHours         int
	Timezone             string
	DefaultDurationHours float64
	SportDurations       map[string]float64
	MaxProgramHours      float64
	MidnightCrossover    string
	Workers              int
	RefreshInterval      time.Duration

	// Cache configuration
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("TEAMCAST_ENV", "development"),
		HTTPBind:    getEnv("TEAMCAST_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("TEAMCAST_HTTP_PORT", 8080),
		BaseURL:     getEnv("TEAMCAST_BASE_URL", ""),
		DBBackend:   DatabaseBackend(getEnv("TEAMCAST_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:       getEnv("TEAMCAST_DB_DSN", "teamcast.db"),
		MetricsBind: getEnv("TEAMCAST_METRICS_BIND", "127.0.0.1:9000"),

		ESPNBaseURL:  getEnv("TEAMCAST_ESPN_BASE_URL", "https://site.api.espn.com"),
		FetchTimeout: time.Duration(getEnvInt("TEAMCAST_FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		FetchRetries: getEnvInt("TEAMCAST_FETCH_RETRIES", 2),

		HorizonHours:         getEnvInt("TEAMCAST_HORIZON_HOURS", 72),
		Timezone:             getEnv("TEAMCAST_TIMEZONE", "UTC"),
		DefaultDurationHours: getEnvFloat("TEAMCAST_DEFAULT_DURATION_HOURS", 3),
		SportDurations:       parseSportDurations(getEnv("TEAMCAST_SPORT_DURATIONS", "")),
		MaxProgramHours:      getEnvFloat("TEAMCAST_MAX_PROGRAM_HOURS", 0),
		MidnightCrossover:    getEnv("TEAMCAST_MIDNIGHT_CROSSOVER", guide.MidnightSplit),
		Workers:              getEnvInt("TEAMCAST_WORKERS", 4),
		RefreshInterval:      time.Duration(getEnvInt("TEAMCAST_REFRESH_INTERVAL_MINUTES", 60)) * time.Minute,

		RedisEnabled:  getEnvBool("TEAMCAST_REDIS_ENABLED", false),
		RedisAddr:     getEnv("TEAMCAST_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("TEAMCAST_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("TEAMCAST_REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("TEAMCAST_CACHE_TTL_MINUTES", 5)) * time.Minute,

		TracingEnabled:    getEnvBool("TEAMCAST_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("TEAMCAST_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("TEAMCAST_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("TEAMCAST_DB_DSN must be provided")
	}
	if cfg.MidnightCrossover != guide.MidnightSplit && cfg.MidnightCrossover != guide.MidnightKeep {
		return nil, fmt.Errorf("unsupported midnight crossover policy %q", cfg.MidnightCrossover)
	}
	if cfg.HorizonHours <= 0 {
		return nil, fmt.Errorf("TEAMCAST_HORIZON_HOURS must be positive")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TEAMCAST_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// GuideSettings snapshots the generation parameters for one run.
func (c *Config) GuideSettings() guide.Settings {
	return guide.Settings{
		HorizonHours:         c.HorizonHours,
		Timezone:             c.Timezone,
		DefaultDurationHours: c.DefaultDurationHours,
		SportDurations:       c.SportDurations,
		MaxProgramHours:      c.MaxProgramHours,
		MidnightCrossover:    c.MidnightCrossover,
		FetchTimeout:         c.FetchTimeout,
		FetchRetries:         c.FetchRetries,
		Workers:              c.Workers,
		RefreshInterval:      c.RefreshInterval,
	}
}

// parseSportDurations reads "football=3.5,baseball=3" style pairs.
// Malformed pairs are dropped.
func parseSportDurations(raw string) map[string]float64 {
	durations := make(map[string]float64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			continue
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || hours <= 0 {
			continue
		}
		durations[key] = hours
	}
	return durations
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}
