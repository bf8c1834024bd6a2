package cli

import (
	"os"
	"testing"

	"github.com/netfit/fitctl/internal/config"
)

// A held lock file blocks a second acquire unless --force is set (spec §6
// "its presence prompts the user on re-submit").
func TestAcquireLockRefusesExistingLock(t *testing.T) {
	cfg := &config.FitConfig{JobName: "job1", OutputDir: t.TempDir()}

	if err := acquireLock(cfg, false); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := acquireLock(cfg, false); err == nil {
		t.Fatal("expected second acquire without --force to fail")
	}
	if err := acquireLock(cfg, true); err != nil {
		t.Fatalf("acquire with --force: %v", err)
	}
}

func TestReleaseLockRemovesFile(t *testing.T) {
	cfg := &config.FitConfig{JobName: "job1", OutputDir: t.TempDir()}

	if err := acquireLock(cfg, false); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	releaseLock(cfg)
	if _, err := os.Stat(lockPath(cfg)); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed after release")
	}
}
