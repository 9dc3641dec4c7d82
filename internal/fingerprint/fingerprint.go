package fingerprint

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxPageLength bounds normalized page paths
const MaxPageLength = 200

// ErrMissingSalt is returned when fingerprinting is attempted without a
// configured salt. An empty salt would make fingerprints guessable, so the
// error must surface to the caller rather than fall back silently.
var ErrMissingSalt = errors.New("missing IP salt")

// botTokens are matched case-insensitively as substrings of the user agent.
// Best-effort filter; false negatives are acceptable.
var botTokens = []string{"bot", "spider", "crawl", "slurp", "bingpreview", "headless", "lighthouse"}

// IsBot reports whether the user agent looks like automated traffic
func IsBot(userAgent string) bool {
	s := strings.ToLower(userAgent)
	for _, token := range botTokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}

// NormalizePage coerces raw page input into a safe page key. Empty input maps
// to "/", a missing leading slash is prepended, and the result is truncated to
// MaxPageLength. Malformed input is never rejected.
func NormalizePage(raw string) string {
	page := strings.TrimSpace(raw)
	if page == "" {
		return "/"
	}
	if !strings.HasPrefix(page, "/") {
		page = "/" + page
	}
	if len(page) > MaxPageLength {
		// Cut on a rune boundary; a byte slice alone can leave a dangling
		// multi-byte sequence, which Postgres rejects as invalid UTF-8.
		page = page[:MaxPageLength]
		for len(page) > 0 && !utf8.ValidString(page) {
			page = page[:len(page)-1]
		}
	}
	return page
}

// DayBucket returns the UTC calendar day for t in YYYY-MM-DD form
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Fingerprinter derives privacy-preserving visitor fingerprints. The salt is
// loaded once at startup and shared read-only across requests.
type Fingerprinter struct {
	salt string
}

// New creates a fingerprinter with the given secret salt
func New(salt string) *Fingerprinter {
	return &Fingerprinter{salt: salt}
}

// Fingerprint returns the sha256 hex digest of ip+salt. The same IP always
// maps to the same fingerprint regardless of day; the day bucket is a separate
// key component. The raw IP is never stored.
func (f *Fingerprinter) Fingerprint(ip string) (string, error) {
	if f.salt == "" {
		return "", ErrMissingSalt
	}
	sum := sha256.Sum256([]byte(ip + f.salt))
	return fmt.Sprintf("%x", sum), nil
}
