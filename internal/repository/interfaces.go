package repository

import "context"

// VisitStore is the contract both storage strategies implement. The backend is
// picked once at startup from configuration; call sites stay polymorphic.
type VisitStore interface {
	// RecordIfAbsent creates the dedup record for (page, day, fingerprint) if
	// it does not exist yet and bumps both counters. Returns true only when
	// this call created the record. Calling it again for the same triple is a
	// no-op returning false.
	RecordIfAbsent(ctx context.Context, page, day, fingerprint string) (bool, error)

	// GetCounts returns the per-day and all-time unique counts for a page.
	// Read-only; reflects committed state at call time.
	GetCounts(ctx context.Context, page, day string) (today, allTime int64, err error)

	// Health checks backend connectivity
	Health(ctx context.Context) error
}
