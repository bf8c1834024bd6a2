package executor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/netfit/fitctl/internal/simulator"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Local is a fixed-width worker pool running one simulator invocation per
// task, with per-task walltime enforcement (spec §4.3 "Local mode").
// Grounded on the bounded-parallelism pattern of
// other_examples/.../tomMoulard-KeyBoardGen__pkg-genetic-parallel.go and
// .../signalnine-darwindeck__src-gosim-evolution-parallel.go, built here
// on golang.org/x/sync/errgroup's SetLimit instead of a hand-rolled
// semaphore channel.
type Local struct {
	Workers        int
	SimExecutable  string
	SimExtraArgs   []string
	Walltime       time.Duration
	Log            zerolog.Logger
}

type localHandle struct {
	batch []Task
}

func (h *localHandle) Batch() []Task { return h.batch }

// Dispatch runs every task in batch through the worker pool. It blocks
// until the whole batch has reached a terminal sentinel state -- the
// supervisor described in spec §9 ("a second task polling the pool, not
// a separate process") is folded into each worker goroutine here, since
// local mode has no external scheduler to poll.
func (l *Local) Dispatch(ctx context.Context, batch []Task) (Handle, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	if l.Workers > 0 {
		eg.SetLimit(l.Workers)
	}

	for _, task := range batch {
		task := task
		eg.Go(func() error {
			l.runTask(egCtx, task)
			return nil
		})
	}

	// Local execution is synchronous from the controller's point of view:
	// by the time Dispatch returns, every sentinel is already on disk, so
	// the first Poll call always reports done. Waiting here (rather than
	// backgrounding the errgroup) keeps local and cluster mode uniform at
	// the Executor interface without a local-only fast path in the
	// controller.
	_ = eg.Wait()
	return &localHandle{batch: batch}, nil
}

// Poll reports the terminal status of every task in h's batch. For Local,
// Dispatch already waited for completion, so Poll never reports pending.
func (l *Local) Poll(ctx context.Context, h Handle) (PollResult, error) {
	pending, results := ScanSentinels(h.Batch())
	return PollResult{Pending: pending, Results: results}, nil
}

func (l *Local) runTask(ctx context.Context, task Task) {
	log := l.Log.With().Int("perm", task.PermID).Int("replica", task.Replica).Logger()

	deadline := task.Deadline
	if deadline.IsZero() {
		deadline = time.Now().Add(l.Walltime)
	}

	spec := simulator.Spec{
		Executable: l.SimExecutable,
		ModelFile:  task.ModelFile,
		OutDir:     task.OutDir,
		Args:       l.SimExtraArgs,
	}

	onTimeout := func() {
		log.Warn().Msg("walltime exceeded, terminating task")
		_ = touch(filepath.Join(task.OutDir, FailedSentinel(task.Name)))
	}

	timedOut, err := simulator.RunWithDeadline(ctx, spec, deadline, onTimeout)
	if timedOut {
		return // failed sentinel already written by onTimeout
	}
	if err != nil {
		log.Warn().Err(err).Msg("simulator task failed")
		_ = touch(filepath.Join(task.OutDir, FailedSentinel(task.Name)))
		return
	}
	if err := touch(filepath.Join(task.OutDir, FinishedSentinel(task.Name))); err != nil {
		log.Error().Err(err).Msg("failed to write finished sentinel")
	}
}
