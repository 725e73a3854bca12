package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAppend_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_messages_log.txt")
	l := New(path)
	l.now = func() time.Time { return time.Date(2025, 6, 1, 9, 5, 7, 0, time.UTC) }

	require.NoError(t, l.Append("<b>Peer 1</b>"))
	require.NoError(t, l.Append("second"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"2025-06-01 09:05:07 - Message Sent:\n<b>Peer 1</b>\n\n"+
			"2025-06-01 09:05:07 - Message Sent:\nsecond\n\n",
		string(b))
}

func TestAppend_BadPath(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing", "log.txt"))
	require.Error(t, l.Append("x"))
}
