// Package monitor implements the detached progress observer (spec
// §4.10): it polls a job's output tree for a terminal Results directory
// and tails the job's streaming log file, emitting new bytes as they
// arrive. It is deliberately its own process with its own context
// rather than sharing state with the controller, mirroring the pack's
// preference for threading a context through a standalone watcher
// instead of leaning on global mutable state (see
// wizardbeard-protogonos's PopulationMonitor.Run, whose loop selects on
// ctx.Done() and an external control channel rather than polling a
// package-level variable).
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// PollInterval is the fixed cadence the spec calls out: poll the output
// tree every 2s.
const PollInterval = 2 * time.Second

// Monitor tails one job's log file and watches for its terminal Results
// (or Results_i, under bootstrap) directory to appear.
type Monitor struct {
	OutputDir   string
	LogPath     string
	BootstrapID int // 0 for a plain (non-bootstrap) job
	Interval    time.Duration // defaults to PollInterval when zero
	Log         zerolog.Logger

	onBytes func([]byte)
}

// New builds a Monitor for a job rooted at outputDir, tailing logPath.
// bootstrapID selects which Results_i directory marks completion; 0
// means the plain "Results" directory.
func New(outputDir, logPath string, bootstrapID int, log zerolog.Logger) *Monitor {
	return &Monitor{OutputDir: outputDir, LogPath: logPath, BootstrapID: bootstrapID, Log: log}
}

// OnBytes registers a callback invoked with each newly observed chunk of
// log output. Typically wired to os.Stdout or a websocket writer.
func (m *Monitor) OnBytes(fn func([]byte)) {
	m.onBytes = fn
}

func (m *Monitor) resultsDir() string {
	if m.BootstrapID > 0 {
		return filepath.Join(m.OutputDir, fmt.Sprintf("Results_%d", m.BootstrapID))
	}
	return filepath.Join(m.OutputDir, "Results")
}

// Watch blocks until the job's terminal Results directory appears, ctx
// is canceled, or an unrecoverable I/O error occurs. It tails the log
// file on every tick, emitting newly appended bytes via OnBytes.
func (m *Monitor) Watch(ctx context.Context) error {
	interval := m.Interval
	if interval <= 0 {
		interval = PollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var offset int64

	tail := func() {
		f, err := os.Open(m.LogPath)
		if err != nil {
			return // log not created yet; nothing to tail
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return
		}
		if info.Size() < offset {
			offset = 0 // log was truncated/rotated underneath us
		}
		if info.Size() == offset {
			return
		}
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return
		}
		buf := make([]byte, info.Size()-offset)
		n, _ := io.ReadFull(f, buf)
		offset += int64(n)
		if n > 0 && m.onBytes != nil {
			m.onBytes(buf[:n])
		}
	}

	for {
		tail()

		if info, err := os.Stat(m.resultsDir()); err == nil && info.IsDir() {
			tail() // final drain after completion is observed
			m.Log.Info().Str("results_dir", m.resultsDir()).Msg("job complete, results directory observed")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
