package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatchReturnsWhenResultsDirAppears(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "job.log")
	if err := os.WriteFile(logPath, []byte("starting\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	m := New(dir, logPath, 0, zerolog.Nop())
	m.Interval = 10 * time.Millisecond
	var seen []byte
	m.OnBytes(func(b []byte) { seen = append(seen, b...) })

	go func() {
		time.Sleep(30 * time.Millisecond)
		os.WriteFile(logPath, []byte("starting\nmore output\n"), 0o644)
		os.MkdirAll(filepath.Join(dir, "Results"), 0o755)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := m.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if len(seen) == 0 {
		t.Fatalf("expected log tail to observe appended bytes")
	}
}

func TestWatchRespectsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "job.log")
	os.WriteFile(logPath, []byte(""), 0o644)

	m := New(dir, logPath, 0, zerolog.Nop())
	m.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Watch(ctx); err == nil {
		t.Fatalf("expected context cancellation error")
	}
}

func TestResultsDirSelectsBootstrapVariant(t *testing.T) {
	m := New("/tmp/out", "/tmp/out/job.log", 3, zerolog.Nop())
	if got := m.resultsDir(); got != filepath.Join("/tmp/out", "Results_3") {
		t.Fatalf("expected Results_3, got %s", got)
	}
	m2 := New("/tmp/out", "/tmp/out/job.log", 0, zerolog.Nop())
	if got := m2.resultsDir(); got != filepath.Join("/tmp/out", "Results") {
		t.Fatalf("expected Results, got %s", got)
	}
}
