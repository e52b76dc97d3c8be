package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string         `validate:"required_without=RestrictionsFile"`
	Region            string
	RestrictionsFile  string
	ZoneOffsetMinutes int            `validate:"gte=-1080,lte=1080"`
	RefreshInterval   time.Duration  `validate:"gte=0"`
	NATSEnabled       bool
	NATSURL           string         `validate:"required_if=NATSEnabled true"`
	NATSSubject       string         `validate:"required_if=NATSEnabled true"`
	MetricsAddr       string
	LogLevel          string         `validate:"oneof=debug info warn warning error"`
	TraceEvaluations  bool
	Location          *time.Location `validate:"required"`
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	// Restrictions come from a YAML file when RESTRICTIONS_FILE is set, else from Postgres.
	cfg.RestrictionsFile = os.Getenv("RESTRICTIONS_FILE")
	cfg.Region = firstNonEmpty(os.Getenv("REGION"), os.Getenv("CITY"))

	dsn := firstNonEmpty(os.Getenv("DATABASE_URL"), os.Getenv("PG_DSN"))
	if dsn == "" && cfg.RestrictionsFile == "" {
		host := getenvDefault("PGHOST", "127.0.0.1")
		port := getenvDefault("PGPORT", "5432")
		user := getenvDefault("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		db := os.Getenv("PGDATABASE")
		// With a region the import database is resolved from the cluster's 'postgres' database.
		if db == "" && cfg.Region != "" {
			db = "postgres"
		}
		if db != "" {
			sslmode := getenvDefault("PGSSLMODE", "disable")
			if pass != "" {
				dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
			} else {
				dsn = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
			}
		}
	}
	cfg.DatabaseURL = dsn

	tzName := getenvDefault("TZ", "")
	if tzName == "" {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	}

	// Zone offset for time domains; defaults to the current offset of TZ.
	if v := os.Getenv("ZONE_OFFSET_MINUTES"); v != "" {
		off, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid ZONE_OFFSET_MINUTES: %q", v)
		}
		cfg.ZoneOffsetMinutes = off
	} else {
		_, off := time.Now().In(cfg.Location).Zone()
		cfg.ZoneOffsetMinutes = off / 60
	}

	if v := os.Getenv("REFRESH_INTERVAL_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec < 0 {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL_SEC: %q", v)
		}
		cfg.RefreshInterval = time.Duration(sec) * time.Second
	} else {
		cfg.RefreshInterval = 30 * time.Minute
	}

	cfg.NATSEnabled = parseBool(getenvDefault("NATS_ENABLED", "true"))
	cfg.NATSURL = getenvDefault("NATS_URL", "nats://127.0.0.1:4222")
	cfg.NATSSubject = getenvDefault("NATS_SUBJECT", "turns.check")

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.TraceEvaluations = parseBool(os.Getenv("TRACE_EVALUATIONS"))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
