package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"views-api/pkg/database"
)

// setupPostgresStore connects to the database named by DATABASE_URL and
// applies the schema. Skipped when no database is available.
func setupPostgresStore(t *testing.T) VisitStore {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping Postgres store tests")
	}

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, url)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, Schema)
	require.NoError(t, err)

	return NewPostgresStore(db)
}

func TestPostgresStore_Contract(t *testing.T) {
	testVisitStoreContract(t, setupPostgresStore(t))
}

func TestPostgresStore_CountsMatchDistinctFingerprints(t *testing.T) {
	store := setupPostgresStore(t)
	ctx := context.Background()

	page := uniquePage(t)
	fingerprints := []string{"fp-a", "fp-b", "fp-c"}

	// Record each fingerprint twice; duplicates must not inflate the count
	for _, fp := range fingerprints {
		for i := 0; i < 2; i++ {
			_, err := store.RecordIfAbsent(ctx, page, "2024-01-01", fp)
			require.NoError(t, err)
		}
	}

	today, allTime, err := store.GetCounts(ctx, page, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, int64(len(fingerprints)), today,
		"today must equal the number of distinct fingerprints for the day")
	assert.Equal(t, int64(len(fingerprints)), allTime)
}
