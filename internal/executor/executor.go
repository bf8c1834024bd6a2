// Package executor runs simulations, either a local worker pool or a
// chunked cluster-scheduler submitter (spec §4.3). Both strategies share
// one interface (spec §5, §9): Dispatch(batch) -> Handle, Poll(Handle) ->
// {pending, finished(summary)}.
package executor

import (
	"context"
	"time"
)

// TaskStatus is the explicit per-task state spec §9 calls for in place
// of the original source's fork()/signal model.
type TaskStatus string

const (
	StatusQueued   TaskStatus = "queued"
	StatusRunning  TaskStatus = "running"
	StatusFinished TaskStatus = "finished"
	StatusFailed   TaskStatus = "failed"
	StatusTimedOut TaskStatus = "timed_out"
)

// Task is one (permutation, replicate) simulation run.
type Task struct {
	PermID    int
	Replica   int
	Name      string // unique basename for sentinel files, e.g. "perm3_rep0"
	ModelFile string
	OutDir    string
	Deadline  time.Time
}

// TaskResult is the terminal outcome of one Task.
type TaskResult struct {
	Task   Task
	Status TaskStatus
	Err    error
}

// Handle is an opaque reference to a dispatched batch, returned by
// Dispatch and passed back to Poll.
type Handle interface {
	// Batch returns the tasks this handle was dispatched with.
	Batch() []Task
}

// PollResult reports whether a dispatched batch still has pending tasks,
// and the terminal results gathered so far.
type PollResult struct {
	Pending bool
	Results []TaskResult
}

// Executor runs a batch of Tasks to completion, reporting status via
// sentinel files in each Task's OutDir (spec §5 "Shared resources").
type Executor interface {
	Dispatch(ctx context.Context, batch []Task) (Handle, error)
	Poll(ctx context.Context, h Handle) (PollResult, error)
}

// FinishedSentinel and FailedSentinel name the terminal marker files a
// worker touches after a task ends (spec §4.3, §5).
func FinishedSentinel(name string) string { return name + ".finished" }
func FailedSentinel(name string) string   { return name + ".failed" }
