package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevSessionSecret is the fallback signing key for local development.
// Binaries log a warning whenever it is in use.
const DevSessionSecret = "finbook-dev-session-secret"

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Administrative bootstrap
	AdminUsername string
	AdminPassword string

	// Reporting
	OrgPrefix string
}

// Load reads configuration from the environment with defaults for
// everything except the seed-admin password, which only finbook-init
// requires.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finbook.db"),

		SessionSecret: getEnv("SESSION_SECRET", DevSessionSecret),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		OrgPrefix: getEnv("ORG_PREFIX", "finbook"),
	}
}

// UsingDevSecret reports whether the insecure development signing key is
// in effect.
func (c *Config) UsingDevSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

// Validate checks the configuration and returns one error naming every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	}

	if c.SessionSecret == "" {
		problems = append(problems, "session secret cannot be empty")
	}

	if c.SessionTTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 30*24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid session TTL %v: must be at most 720 hours", c.SessionTTL))
	}

	if strings.TrimSpace(c.AdminUsername) == "" {
		problems = append(problems, "admin username cannot be empty")
	}

	if strings.TrimSpace(c.OrgPrefix) == "" {
		problems = append(problems, "org prefix cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
