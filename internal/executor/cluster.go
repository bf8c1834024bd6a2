package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/netfit/fitctl/internal/quota"
	"github.com/rs/zerolog"
)

// Scheduler submits one chunk script for out-of-process execution and
// reports whether it is still outstanding. Shell is the only strategy
// implemented (spec §4.3 "cluster mode defaults to a shell scheduler");
// the interface exists so a real batch scheduler (Slurm/LSF/PBS) can be
// dropped in without touching Cluster's chunking or quota logic.
type Scheduler interface {
	Submit(ctx context.Context, scriptPath string) (jobID string, err error)
	Outstanding(ctx context.Context, jobID string) (bool, error)
}

// ShellScheduler runs each chunk script as a detached background
// process and considers it outstanding until every task in the chunk
// has a sentinel on disk -- there is no external queue to ask, so
// Outstanding always reports true and the caller (Cluster.Poll) is the
// one that actually resolves completion via ScanSentinels.
type ShellScheduler struct{}

func (ShellScheduler) Submit(ctx context.Context, scriptPath string) (string, error) {
	cmd := shellCommand(ctx, scriptPath)
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("executor: submit %s: %w", scriptPath, err)
	}
	go cmd.Wait() // reaps the child; chunk completion is observed via sentinels, not exit status
	return scriptPath, nil
}

func (ShellScheduler) Outstanding(ctx context.Context, jobID string) (bool, error) {
	return true, nil
}

// Cluster chunks a generation's tasks into cluster_parallel batches of
// multisim invocations each, renders a shell script per chunk joining
// the simulator invocations with "&&", and submits chunks through a
// Scheduler while a quota.Guard keeps outstanding work under job_limit
// (spec §4.3 "Cluster mode").
type Cluster struct {
	ClusterParallel int
	Multisim        int
	SimExecutable   string
	SimExtraArgs    []string
	ScriptDir       string
	PollInterval    time.Duration
	Scheduler       Scheduler
	Guard           *quota.Guard
	Log             zerolog.Logger
}

type clusterChunk struct {
	tasks    []Task
	script   string
	jobID    string
	complete bool
}

type clusterHandle struct {
	batch  []Task
	chunks []*clusterChunk
}

func (h *clusterHandle) Batch() []Task { return h.batch }

// Dispatch chunks batch into groups of at most Multisim tasks, writes
// and submits one script per chunk, honoring ClusterParallel as the
// number of chunks allowed outstanding at once and Guard as the
// absolute ceiling on queued+running tasks.
func (c *Cluster) Dispatch(ctx context.Context, batch []Task) (Handle, error) {
	if c.Scheduler == nil {
		c.Scheduler = ShellScheduler{}
	}
	chunkSize := c.Multisim
	if chunkSize <= 0 {
		chunkSize = 1
	}
	var chunks []*clusterChunk
	for i := 0; i < len(batch); i += chunkSize {
		end := i + chunkSize
		if end > len(batch) {
			end = len(batch)
		}
		chunks = append(chunks, &clusterChunk{tasks: batch[i:end]})
	}

	h := &clusterHandle{batch: batch, chunks: chunks}

	running, runningTasks := 0, 0
	maxOutstanding := c.ClusterParallel
	if maxOutstanding <= 0 {
		maxOutstanding = len(chunks)
	}

	for idx, chunk := range chunks {
		if running >= maxOutstanding {
			break // remaining chunks are submitted lazily by Poll as earlier ones finish
		}
		if c.Guard != nil {
			if err := c.Guard.Admit(0, runningTasks, len(chunk.tasks)); err != nil {
				return h, err
			}
		}
		if err := c.submitChunk(ctx, idx, chunk); err != nil {
			return h, err
		}
		running++
		runningTasks += len(chunk.tasks)
	}
	return h, nil
}

func (c *Cluster) submitChunk(ctx context.Context, idx int, chunk *clusterChunk) error {
	scriptPath := filepath.Join(c.ScriptDir, fmt.Sprintf("chunk_%03d.sh", idx))
	if err := c.renderScript(scriptPath, chunk.tasks); err != nil {
		return err
	}
	jobID, err := c.Scheduler.Submit(ctx, scriptPath)
	if err != nil {
		return err
	}
	chunk.script = scriptPath
	chunk.jobID = jobID
	c.Log.Debug().Str("script", scriptPath).Int("tasks", len(chunk.tasks)).Msg("submitted cluster chunk")
	return nil
}

// renderScript writes a shell script running every task's simulator
// invocation joined by "&&", with a trap that touches each remaining
// task's failed sentinel if an earlier invocation in the chain aborts
// the script -- "&&" chaining alone would leave downstream tasks with
// no sentinel at all (spec §4.3 "a failed invocation must not leave a
// sibling task's status undetermined").
func (c *Cluster) renderScript(path string, tasks []Task) error {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("set -e\n")

	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = filepath.Join(t.OutDir, t.Name)
	}
	b.WriteString(fmt.Sprintf("on_abort() {\n  for n in %s; do\n", strings.Join(names, " ")))
	b.WriteString(fmt.Sprintf("    [ -f \"$n.finished\" ] || [ -f \"$n.failed\" ] || touch \"$n.failed\"\n"))
	b.WriteString("  done\n}\ntrap on_abort EXIT\n\n")

	var invocations []string
	for _, t := range tasks {
		args := append([]string{"--outdir", t.OutDir}, c.SimExtraArgs...)
		args = append(args, t.ModelFile)
		line := fmt.Sprintf("cd %s && %s %s >%s.BNG_OUT 2>&1 && touch %s.finished",
			t.OutDir, c.SimExecutable, strings.Join(args, " "),
			filepath.Join(t.OutDir, t.Name), filepath.Join(t.OutDir, t.Name))
		invocations = append(invocations, line)
	}
	b.WriteString(strings.Join(invocations, " && \\\n"))
	b.WriteString("\n")

	return os.WriteFile(path, []byte(b.String()), 0o755)
}

// Poll reports terminal status for the dispatched batch, submitting any
// chunks still waiting for a free outstanding slot and retrying
// transient scheduler errors with exponential backoff (spec §4.3 "the
// controller polls at poll_interval and tolerates transient scheduler
// errors").
func (c *Cluster) Poll(ctx context.Context, h Handle) (PollResult, error) {
	ch, ok := h.(*clusterHandle)
	if !ok {
		pending, results := ScanSentinels(h.Batch())
		return PollResult{Pending: pending, Results: results}, nil
	}

	running, runningTasks := 0, 0
	for _, chunk := range ch.chunks {
		if chunk.script != "" && !chunk.complete {
			running++
			runningTasks += len(chunk.tasks)
		}
	}
	for _, chunk := range ch.chunks {
		if chunk.script != "" {
			continue // already submitted
		}
		if running >= c.effectiveParallel(len(ch.chunks)) {
			break
		}
		if c.Guard != nil {
			if err := c.Guard.Admit(0, runningTasks, len(chunk.tasks)); err != nil {
				return PollResult{}, err
			}
		}
		op := func() error {
			return c.submitChunk(ctx, indexOf(ch.chunks, chunk), chunk)
		}
		if err := backoff.Retry(op, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
			return PollResult{}, err
		}
		running++
		runningTasks += len(chunk.tasks)
	}

	pending, results := ScanSentinels(ch.batch)

	for _, chunk := range ch.chunks {
		if chunk.script == "" {
			continue
		}
		done := true
		for _, t := range chunk.tasks {
			if !fileExists(filepath.Join(t.OutDir, FinishedSentinel(t.Name))) &&
				!fileExists(filepath.Join(t.OutDir, FailedSentinel(t.Name))) {
				done = false
				break
			}
		}
		chunk.complete = done
	}

	return PollResult{Pending: pending, Results: results}, nil
}

func (c *Cluster) effectiveParallel(total int) int {
	if c.ClusterParallel <= 0 {
		return total
	}
	return c.ClusterParallel
}

func indexOf(chunks []*clusterChunk, target *clusterChunk) int {
	for i, ch := range chunks {
		if ch == target {
			return i
		}
	}
	return -1
}
