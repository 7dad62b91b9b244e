package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionTTL    time.Duration
	PublicBaseURL string
}

// Load parses configuration values from the current process environment.
//
// Every value has a sensible default; set values are validated and invalid
// entries are reported together in a localized error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:plantogether.db",
		SessionTTL:    24 * time.Hour,
		PublicBaseURL: "https://plantogether.app",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("PLANTOGETHER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "PLANTOGETHER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("PLANTOGETHER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PLANTOGETHER_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PLANTOGETHER_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if baseURL := strings.TrimSpace(os.Getenv("PLANTOGETHER_PUBLIC_BASE_URL")); baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			invalid = append(invalid, "PLANTOGETHER_PUBLIC_BASE_URL")
		} else {
			cfg.PublicBaseURL = strings.TrimRight(baseURL, "/")
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("nieprawidłowe wartości zmiennych środowiskowych: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
