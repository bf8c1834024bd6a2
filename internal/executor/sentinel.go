package executor

import (
	"os"
	"path/filepath"
)

// ScanSentinels inspects each task's OutDir for its ".finished" or
// ".failed" sentinel file (spec §5 "Sentinel files are the single source
// of truth for per-task status"). It returns pending=true if any task in
// batch has neither sentinel yet.
func ScanSentinels(batch []Task) (pending bool, results []TaskResult) {
	for _, task := range batch {
		finished := filepath.Join(task.OutDir, FinishedSentinel(task.Name))
		failed := filepath.Join(task.OutDir, FailedSentinel(task.Name))

		switch {
		case fileExists(failed):
			results = append(results, TaskResult{Task: task, Status: StatusFailed})
		case fileExists(finished):
			results = append(results, TaskResult{Task: task, Status: StatusFinished})
		default:
			pending = true
		}
	}
	return pending, results
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
