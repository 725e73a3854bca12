// Package logtail captures the visible output of a GNU screen session.
package logtail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const captureTimeout = 10 * time.Second

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs the command and folds its combined output into the error.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

type Screen struct {
	Session string
	Lines   int
	Dir     string
	run     Runner
	logger  *zap.Logger
}

func NewScreen(session string, lines int, run Runner, logger *zap.Logger) *Screen {
	if run == nil {
		run = ExecRunner
	}
	return &Screen{Session: session, Lines: lines, Dir: "/tmp", run: run, logger: logger}
}

// Path is where the session hardcopy is written.
func (s *Screen) Path() string {
	return filepath.Join(s.Dir, s.Session+"_log.txt")
}

// Tail returns the last Lines lines of the session screen. Failures come
// back as a "Log fetch error" placeholder instead of an error.
func (s *Screen) Tail(ctx context.Context) string {
	out, err := s.tail(ctx)
	if err != nil {
		s.logger.Warn("log_tail_error", zap.String("session", s.Session), zap.Error(err))
		return "Log fetch error: " + err.Error()
	}
	return out
}

func (s *Screen) tail(ctx context.Context) (string, error) {
	if s.Session == "" {
		return "", fmt.Errorf("no screen session configured")
	}
	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	path := s.Path()
	if err := s.run(ctx, "screen", "-S", s.Session, "-X", "hardcopy", path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return LastLines(strings.ToValidUTF8(string(b), ""), s.Lines), nil
}

// LastLines returns the final n lines of the trimmed text.
func LastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
