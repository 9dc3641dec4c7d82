package redis

import (
	"fmt"
	"time"
)

// Key patterns for unique-visitor tracking
const (
	KeySeen     = "views:seen:%s:%s:%s"   // views:seen:{day}:{page}:{fingerprint}
	KeyCountAll = "views:count:all:%s"    // views:count:all:{page}
	KeyCountDay = "views:count:day:%s:%s" // views:count:day:{day}:{page}
)

// TTL constants. The dedup marker lives for the retention window; the per-day
// counter outlives it by a day so a reader near midnight still sees yesterday's
// bucket intact.
const (
	TTLSeen     = 7 * 24 * time.Hour
	TTLCountDay = 8 * 24 * time.Hour
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeySeen returns the dedup marker key for a (day, page, fingerprint) triple
func (kb *KeyBuilder) KeySeen(day, page, fingerprint string) string {
	return kb.BuildKey(fmt.Sprintf(KeySeen, day, page, fingerprint))
}

// KeyCountAll returns the all-time unique counter key for a page
func (kb *KeyBuilder) KeyCountAll(page string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCountAll, page))
}

// KeyCountDay returns the per-day unique counter key for a page
func (kb *KeyBuilder) KeyCountDay(day, page string) string {
	return kb.BuildKey(fmt.Sprintf(KeyCountDay, day, page))
}
