package transport

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cl, err := NewHTTPClient(2*time.Second, "")
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cl.Timeout)

	resp, err := cl.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewHTTPClient_SOCKS5SetsDialer(t *testing.T) {
	cl, err := NewHTTPClient(time.Second, "127.0.0.1:9050")
	require.NoError(t, err)
	tr, ok := cl.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, tr.DialContext)
}

func TestLogSafe_Truncates(t *testing.T) {
	big := bytes.Repeat([]byte("a"), LogBodyLimit+10)
	out := LogSafe(big)
	require.True(t, bytes.HasSuffix(out, []byte("... [truncated]")))
	require.Len(t, out, LogBodyLimit+len("... [truncated]"))
	require.Len(t, big, LogBodyLimit+10)
}
