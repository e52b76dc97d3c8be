// Package db reads turn restrictions from a PostgreSQL OSM import.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"turn-restrictions/internal/osm"
)

func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// Time domains are stored as text[]; they are joined with a separator that
// cannot occur in an expression.
const domainSep = "\n"

const restrictionsQuery = `
SELECT relation_id,
       restriction,
       from_edge,
       to_edge,
       COALESCE(modes, ''),
       COALESCE(except_modes, ''),
       COALESCE(array_to_string(time_domains, E'\n'), ''),
       zone_offset_minutes
FROM turn_restrictions
ORDER BY relation_id, from_edge, to_edge`

// FetchRestrictionRecords returns every row of turn_restrictions.
func FetchRestrictionRecords(ctx context.Context, db *sql.DB) ([]osm.RestrictionRecord, error) {
	rows, err := db.QueryContext(ctx, restrictionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query turn_restrictions: %w", err)
	}
	defer rows.Close()

	var recs []osm.RestrictionRecord
	for rows.Next() {
		var (
			rec     osm.RestrictionRecord
			domains string
			offset  sql.NullInt32
		)
		if err := rows.Scan(&rec.RelationID, &rec.Restriction, &rec.FromEdge, &rec.ToEdge,
			&rec.Modes, &rec.Except, &domains, &offset); err != nil {
			return nil, err
		}
		rec.TimeDomains = splitDomains(domains)
		if offset.Valid {
			v := int(offset.Int32)
			rec.ZoneOffsetMinutes = &v
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func splitDomains(s string) []string {
	var out []string
	for _, d := range strings.Split(s, domainSep) {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// Source loads restriction records from an open database.
type Source struct {
	DB *sql.DB
}

func (s Source) Load(ctx context.Context) ([]osm.RestrictionRecord, error) {
	return FetchRestrictionRecords(ctx, s.DB)
}
