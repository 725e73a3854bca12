package transport

import (
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/peer-monitor/pkg/secrets"
)

const LogBodyLimit = 2048

func LogSafe(b []byte) []byte {
	if len(b) > LogBodyLimit {
		out := make([]byte, 0, LogBodyLimit+16)
		out = append(out, b[:LogBodyLimit]...)
		return append(out, []byte("... [truncated]")...)
	}
	return b
}

func LogRequest(logger *zap.Logger, tag, method, url string, headers map[string]string, body []byte) time.Time {
	logger.Debug(tag+"_request",
		zap.String("method", method),
		zap.String("url", secrets.RedactString(url)),
		zap.Any("headers", secrets.RedactHeaders(headers)),
		zap.ByteString("body", LogSafe(body)),
	)
	return time.Now()
}

func LogResponse(logger *zap.Logger, tag string, status int, body []byte, started time.Time) {
	logger.Debug(tag+"_response",
		zap.Int("status", status),
		zap.Int64("latency_ms", time.Since(started).Milliseconds()),
		zap.ByteString("body", LogSafe(body)),
	)
}
