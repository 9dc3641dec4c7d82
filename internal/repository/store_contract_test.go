package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniquePage returns a page key no other test run has touched, so the
// contract suite can share a persistent backend without cross-talk.
func uniquePage(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("/contract/%d", time.Now().UnixNano())
}

// testVisitStoreContract runs the invariants every VisitStore implementation
// must hold: first-seen-wins deduplication, per-day scoping, page isolation,
// and exactly-once counting under concurrency.
func testVisitStoreContract(t *testing.T, store VisitStore) {
	ctx := context.Background()

	t.Run("FirstRecordWins", func(t *testing.T) {
		page := uniquePage(t)

		created, err := store.RecordIfAbsent(ctx, page, "2024-01-01", "fp-1")
		require.NoError(t, err)
		assert.True(t, created, "first record should win")

		today, allTime, err := store.GetCounts(ctx, page, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(1), today)
		assert.Equal(t, int64(1), allTime)

		// Same triple again: no new record, counters untouched
		created, err = store.RecordIfAbsent(ctx, page, "2024-01-01", "fp-1")
		require.NoError(t, err)
		assert.False(t, created)

		today, allTime, err = store.GetCounts(ctx, page, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(1), today)
		assert.Equal(t, int64(1), allTime)
	})

	t.Run("SecondVisitorSameDay", func(t *testing.T) {
		page := uniquePage(t)

		created, err := store.RecordIfAbsent(ctx, page, "2024-01-01", "fp-1")
		require.NoError(t, err)
		require.True(t, created)

		created, err = store.RecordIfAbsent(ctx, page, "2024-01-01", "fp-2")
		require.NoError(t, err)
		assert.True(t, created)

		today, allTime, err := store.GetCounts(ctx, page, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(2), today)
		assert.Equal(t, int64(2), allTime)
	})

	t.Run("DayRollover", func(t *testing.T) {
		page := uniquePage(t)

		_, err := store.RecordIfAbsent(ctx, page, "2024-01-01", "fp-1")
		require.NoError(t, err)

		// Same visitor next day counts again for the new bucket
		created, err := store.RecordIfAbsent(ctx, page, "2024-01-02", "fp-1")
		require.NoError(t, err)
		assert.True(t, created)

		today, allTime, err := store.GetCounts(ctx, page, "2024-01-02")
		require.NoError(t, err)
		assert.Equal(t, int64(1), today, "today is scoped to the new bucket")
		assert.Equal(t, int64(2), allTime, "all-time accumulates across days")
	})

	t.Run("PagesAreIndependent", func(t *testing.T) {
		recorded := uniquePage(t)
		other := recorded + "/other"

		_, err := store.RecordIfAbsent(ctx, recorded, "2024-01-01", "fp-1")
		require.NoError(t, err)

		today, allTime, err := store.GetCounts(ctx, other, "2024-01-01")
		require.NoError(t, err)
		assert.Zero(t, today)
		assert.Zero(t, allTime)
	})

	t.Run("ConcurrentDistinctVisitors", func(t *testing.T) {
		page := uniquePage(t)

		const visitors = 50

		var wg sync.WaitGroup
		errs := make(chan error, visitors)
		for i := 0; i < visitors; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				if _, err := store.RecordIfAbsent(ctx, page, "2024-01-01", "fp-"+strconv.Itoa(n)); err != nil {
					errs <- err
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		today, allTime, err := store.GetCounts(ctx, page, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(visitors), today, "no visitor may be lost under contention")
		assert.Equal(t, int64(visitors), allTime)
	})

	t.Run("ConcurrentSameVisitor", func(t *testing.T) {
		page := uniquePage(t)

		const attempts = 50

		var wg sync.WaitGroup
		wins := make(chan bool, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := store.RecordIfAbsent(ctx, page, "2024-01-01", "same-fp")
				if err == nil && created {
					wins <- true
				}
			}()
		}
		wg.Wait()
		close(wins)

		var winners int
		for range wins {
			winners++
		}
		assert.Equal(t, 1, winners, "racing claims elect exactly one winner")

		today, allTime, err := store.GetCounts(ctx, page, "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, int64(1), today)
		assert.Equal(t, int64(1), allTime)
	})
}
