package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	f := New(330, "IST")
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in, want string
	}{
		{"2025-06-01T11:55:00Z", "2025-06-01 17:25:00 IST (5m ago)"},
		{"2025-06-01T10:00:00Z", "2025-06-01 15:30:00 IST (2h ago)"},
		{"2025-06-01T08:45:30.123Z", "2025-06-01 14:15:30 IST (3h 14m ago)"},
		{"2025-06-01T09:30:00", "2025-06-01 15:00:00 IST (2h 30m ago)"},
		{"2025-06-01T13:30:00+05:30", "2025-06-01 13:30:00 IST (4h ago)"},
		{"2025-06-01T12:10:00Z", "2025-06-01 17:40:00 IST (0m ago)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, f.Format(tc.in, now))
		})
	}
}

func TestFormat_PastHasAbsoluteAndAgo(t *testing.T) {
	f := New(330, "IST")
	now := time.Now()
	for _, d := range []time.Duration{time.Second, 59 * time.Minute, 25 * time.Hour} {
		out := f.Format(now.Add(-d).UTC().Format(time.RFC3339), now)
		require.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} IST \(.* ago\)$`, out)
	}
}

func TestFormat_MalformedUnchanged(t *testing.T) {
	f := New(330, "IST")
	for _, in := range []string{"", "yesterday", "2025-13-45T99:00:00Z", "N/A"} {
		require.Equal(t, in, f.Format(in, time.Now()))
	}
}

func TestAgo(t *testing.T) {
	require.Equal(t, "0m ago", Ago(-time.Hour))
	require.Equal(t, "59m ago", Ago(59*time.Minute+59*time.Second))
	require.Equal(t, "1h ago", Ago(time.Hour))
	require.Equal(t, "26h 1m ago", Ago(26*time.Hour+time.Minute))
}
