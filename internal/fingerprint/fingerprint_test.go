package fingerprint

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBot(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  bool
	}{
		{
			name:      "Googlebot is classified as bot",
			userAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			expected:  true,
		},
		{
			name:      "Uppercase BOT matches case-insensitively",
			userAgent: "SomeBOT/1.0",
			expected:  true,
		},
		{
			name:      "Spider token matches",
			userAgent: "Baiduspider/2.0",
			expected:  true,
		},
		{
			name:      "Headless Chrome matches",
			userAgent: "Mozilla/5.0 HeadlessChrome/120.0",
			expected:  true,
		},
		{
			name:      "Lighthouse matches",
			userAgent: "Chrome-Lighthouse",
			expected:  true,
		},
		{
			name:      "Regular browser is not a bot",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
			expected:  false,
		},
		{
			name:      "Empty user agent is not a bot",
			userAgent: "",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBot(tt.userAgent))
		})
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "Empty input maps to root",
			raw:      "",
			expected: "/",
		},
		{
			name:     "Whitespace-only input maps to root",
			raw:      "   ",
			expected: "/",
		},
		{
			name:     "Leading slash preserved",
			raw:      "/blog/post-1",
			expected: "/blog/post-1",
		},
		{
			name:     "Missing leading slash is prepended",
			raw:      "no-leading-slash",
			expected: "/no-leading-slash",
		},
		{
			name:     "Surrounding whitespace trimmed",
			raw:      "  /about  ",
			expected: "/about",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePage(tt.raw))
		})
	}
}

func TestNormalizePage_Truncation(t *testing.T) {
	long := "/" + strings.Repeat("a", 300)
	got := NormalizePage(long)
	assert.Len(t, got, MaxPageLength)
	assert.True(t, strings.HasPrefix(got, "/"))
}

func TestNormalizePage_TruncationKeepsValidUTF8(t *testing.T) {
	// 301 bytes; a plain byte cut at 200 would split the final é in half
	long := "/" + strings.Repeat("é", 150)
	got := NormalizePage(long)

	assert.True(t, utf8.ValidString(got), "truncation must not leave a dangling multi-byte sequence")
	assert.LessOrEqual(t, len(got), MaxPageLength)
	assert.True(t, strings.HasPrefix(got, "/"))
}

func TestDayBucket(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{
			name:     "UTC time formats as calendar day",
			input:    time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC),
			expected: "2024-01-01",
		},
		{
			name:     "Local time east of UTC converts to the UTC day",
			input:    time.Date(2024, 1, 2, 1, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)),
			expected: "2024-01-01",
		},
		{
			name:     "Just before UTC midnight stays on the old day",
			input:    time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
			expected: "2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DayBucket(tt.input))
		})
	}
}

func TestFingerprint(t *testing.T) {
	fp := New("s3cr3t")

	first, err := fp.Fingerprint("1.2.3.4")
	require.NoError(t, err)
	second, err := fp.Fingerprint("1.2.3.4")
	require.NoError(t, err)

	// Deterministic for the same (IP, salt)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	// Different IP produces a different fingerprint
	other, err := fp.Fingerprint("5.6.7.8")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	// Different salt produces a different fingerprint for the same IP
	otherSalt, err := New("different").Fingerprint("1.2.3.4")
	require.NoError(t, err)
	assert.NotEqual(t, first, otherSalt)

	// Fingerprint never contains the raw IP
	assert.NotContains(t, first, "1.2.3.4")
}

func TestFingerprint_MissingSalt(t *testing.T) {
	fp := New("")

	_, err := fp.Fingerprint("1.2.3.4")
	assert.ErrorIs(t, err, ErrMissingSalt)
}
