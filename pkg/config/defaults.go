// Package config provides centralized default values for CircuitDesk
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Remote store (Turso/libsql)
	RemoteDatabaseURL string
	RemoteAuthToken   string

	// Local durable snapshot store (SQLite key/value mirror)
	SnapshotDBPath string

	// Collection load ceilings: the initial warm load never asks the remote
	// store for more than this many records per collection.
	LeadLoadLimit int
	CaseLoadLimit int
	UserLoadLimit int

	// Search behavior
	SearchResultLimit int

	// Warm load is deferred so the server accepts requests immediately;
	// RefreshInterval re-runs the bounded load to reconcile with the remote
	// store after degraded writes (0 disables the worker).
	WarmLoadDelay   time.Duration
	RefreshInterval time.Duration

	// Authentication
	JWTSecret              string
	BootstrapAdminUser     string
	BootstrapAdminPassword string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Observability
	SlowQueryThreshold time.Duration

	// Email notification channel (disabled when the API key is empty)
	ResendAPIKey  string
	CaseEmailTo   string
	CaseEmailFrom string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Remote store
	RemoteDatabaseURL = getEnvString("REMOTE_DATABASE_URL", "")
	RemoteAuthToken = getEnvString("REMOTE_AUTH_TOKEN", "")

	// Snapshot store
	SnapshotDBPath = getEnvString("SNAPSHOT_DB_PATH", "data/snapshots.db")

	// Load ceilings
	LeadLoadLimit = getEnvInt("LEAD_LOAD_LIMIT", 500)
	CaseLoadLimit = getEnvInt("CASE_LOAD_LIMIT", 500)
	UserLoadLimit = getEnvInt("USER_LOAD_LIMIT", 500)

	// Search
	SearchResultLimit = getEnvInt("SEARCH_RESULT_LIMIT", 50)

	// Warm load / reconciliation
	WarmLoadDelay = getEnvDuration("WARM_LOAD_DELAY", 2*time.Second)
	RefreshInterval = time.Duration(getEnvInt("REFRESH_INTERVAL_MINUTES", 0)) * time.Minute

	// Authentication
	JWTSecret = getEnvString("JWT_SECRET", "")
	BootstrapAdminUser = getEnvString("BOOTSTRAP_ADMIN_USER", "admin")
	BootstrapAdminPassword = getEnvString("BOOTSTRAP_ADMIN_PASSWORD", "")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Observability
	SlowQueryThreshold = time.Duration(getEnvInt("SLOW_QUERY_THRESHOLD_MS", 250)) * time.Millisecond

	// Email
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	CaseEmailTo = getEnvString("CASE_EMAIL_TO", "")
	CaseEmailFrom = getEnvString("CASE_EMAIL_FROM", "noreply@circuitdesk.io")
}
