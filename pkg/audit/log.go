// Package audit keeps an append-only text copy of every outgoing message.
package audit

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

type Log struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Append writes "<timestamp> - Message Sent:\n<msg>\n\n".
func (l *Log) Append(msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%s - Message Sent:\n%s\n\n", l.now().Format(timeLayout), msg); err != nil {
		f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	return f.Close()
}
