package db

import (
	"errors"
	"net/url"
	"strings"
)

// WithDBName returns dsn pointing at database instead of its current one.
// A DSN without a scheme is treated as postgres://.
func WithDBName(dsn, database string) (string, error) {
	if dsn == "" {
		return "", errors.New("empty DSN")
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", errors.New("unsupported DSN scheme " + u.Scheme)
	}
	u.Path = "/" + strings.TrimPrefix(database, "/")
	return u.String(), nil
}
