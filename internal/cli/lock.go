package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/netfit/fitctl/internal/config"
)

// lockPath returns the ".lock_<job>" sentinel path (spec §6 "Persistent
// state"), held for the duration of a submit or resume.
func lockPath(cfg *config.FitConfig) string {
	return filepath.Join(cfg.OutputDir, ".lock_"+cfg.JobName)
}

// acquireLock creates cfg's lock file, refusing to proceed if one
// already exists unless force is set -- "its presence prompts the user
// on re-submit" (spec §6).
func acquireLock(cfg *config.FitConfig, force bool) error {
	path := lockPath(cfg)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("lock file %s already exists -- a submit/resume for job %q may still be running; pass --force to override", path, cfg.JobName)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cli: create output dir: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// releaseLock unlinks cfg's lock file on final termination (spec §6).
func releaseLock(cfg *config.FitConfig) {
	_ = os.Remove(lockPath(cfg))
}
