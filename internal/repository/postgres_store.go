package repository

import (
	"context"
	"fmt"
	"time"

	"views-api/pkg/database"
)

// postgresStore is the strongly-consistent strategy. The primary key on
// (page, ip_hash, day) makes RecordIfAbsent exact under arbitrary concurrency:
// the storage engine serializes conflicting inserts, so N racing calls for one
// triple produce exactly one row. Counts are computed by aggregation, never
// kept as separate state, so they cannot drift.
//
// Rows are retained indefinitely. They are the authoritative source for the
// all-time aggregate; sweeping old days would shrink it.
type postgresStore struct {
	db *database.PostgresDB
}

// NewPostgresStore creates a Postgres-backed visit store
func NewPostgresStore(db *database.PostgresDB) VisitStore {
	return &postgresStore{db: db}
}

// Schema for the uniques table. Applied by cmd/migrate.
const Schema = `
CREATE TABLE IF NOT EXISTS uniques (
	page       TEXT NOT NULL,
	ip_hash    TEXT NOT NULL,
	day        TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (page, ip_hash, day)
);
CREATE INDEX IF NOT EXISTS uniques_page_day_idx ON uniques (page, day);
`

// RecordIfAbsent inserts the dedup record, treating a conflict on the primary
// key as "already existed" rather than an error.
func (s *postgresStore) RecordIfAbsent(ctx context.Context, page, day, fingerprint string) (bool, error) {
	query := `
		INSERT INTO uniques (page, ip_hash, day, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (page, ip_hash, day) DO NOTHING
	`

	tag, err := s.db.Pool.Exec(ctx, query, page, fingerprint, day, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert dedup record: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// GetCounts aggregates distinct fingerprints for the page, per day and overall
func (s *postgresStore) GetCounts(ctx context.Context, page, day string) (int64, int64, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE day = $2),
			COUNT(*)
		FROM uniques
		WHERE page = $1
	`

	var today, allTime int64
	if err := s.db.Pool.QueryRow(ctx, query, page, day).Scan(&today, &allTime); err != nil {
		return 0, 0, fmt.Errorf("failed to query counts: %w", err)
	}

	return today, allTime, nil
}

// Health checks the database connection
func (s *postgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
