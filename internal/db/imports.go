package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoImport is returned when no finished OSM import with turn restrictions
// exists for a region.
var ErrNoImport = errors.New("no OSM import with turn restrictions")

// Import is a finished OSM extract load recorded in public.osm_imports.
type Import struct {
	DBName       string
	Region       string
	ImportedAt   time.Time
	Restrictions int64
}

// Imports that loaded no restrictions are skipped.
const latestImportQuery = `
SELECT db_name, region, imported_at, restriction_count
FROM public.osm_imports
WHERE status = 'succeeded'
  AND region ILIKE '%' || $1 || '%'
  AND restriction_count > 0
ORDER BY imported_at DESC
LIMIT 1`

// LatestImport returns the most recent successful import for region that
// carries at least one turn restriction.
func LatestImport(ctx context.Context, meta *sql.DB, region string) (Import, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return Import{}, fmt.Errorf("region is required")
	}
	var (
		imp    Import
		dbName sql.NullString
	)
	err := meta.QueryRowContext(ctx, latestImportQuery, region).
		Scan(&dbName, &imp.Region, &imp.ImportedAt, &imp.Restrictions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Import{}, fmt.Errorf("%w for region like %q", ErrNoImport, region)
		}
		return Import{}, fmt.Errorf("query osm_imports: %w", err)
	}
	if !dbName.Valid || strings.TrimSpace(dbName.String) == "" {
		return Import{}, fmt.Errorf("empty db_name for region like %q", region)
	}
	imp.DBName = strings.TrimSpace(dbName.String)
	return imp, nil
}
