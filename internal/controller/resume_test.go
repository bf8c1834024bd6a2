package controller

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/netfit/fitctl/internal/config"
)

func writeModelFile(t *testing.T, path string, names []string, values []float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	var body string
	for i, n := range names {
		body += fmt.Sprintf("# %s changed to %v\n", n, values[i])
	}
	body += "# End of permute change log\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func baseResumeConfig(outputDir string) *config.FitConfig {
	return &config.FitConfig{
		JobName:        "resumejob",
		OutputDir:      outputDir,
		Generations:    5,
		PopulationSize: 2,
		Variables: []config.VariableSpec{
			{Name: "k1"},
			{Name: "k2"},
		},
	}
}

// Resume reconstructs gen2's population from its permutations' materialized
// model files, not from a persisted population artifact (spec §4.2/§4.7).
func TestResumeReconstructsPopulationFromModelFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := baseResumeConfig(dir)

	gen1Dir := generationDir(dir, 1)
	if err := config.Snapshot(configSnapshotPath(gen1Dir), cfg); err != nil {
		t.Fatal(err)
	}
	gen2Dir := generationDir(dir, 2)
	if err := config.Snapshot(configSnapshotPath(gen2Dir), cfg); err != nil {
		t.Fatal(err)
	}

	writeModelFile(t, filepath.Join(permDir(gen2Dir, 0), "model.net"), []string{"k1", "k2"}, []float64{1.5, 2.5})
	writeModelFile(t, filepath.Join(permDir(gen2Dir, 1), "model.net"), []string{"k1", "k2"}, []float64{3.5, 4.5})

	// Partial outputs from the interrupted run that resume must clear.
	if err := os.MkdirAll(filepath.Join(permDir(gen2Dir, 0), "rep0"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(permDir(gen2Dir, 0), "avg_ref.gdat"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := Resume(dir, 0)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if state.StartGen != 2 {
		t.Fatalf("expected resume at generation 2, got %d", state.StartGen)
	}
	if len(state.Pop) != 2 {
		t.Fatalf("expected 2 reconstructed individuals, got %d", len(state.Pop))
	}
	want := map[int][]float64{0: {1.5, 2.5}, 1: {3.5, 4.5}}
	for _, ind := range state.Pop {
		wantParams, ok := want[ind.PermID]
		if !ok {
			t.Fatalf("unexpected perm id %d", ind.PermID)
		}
		if len(ind.Params) != len(wantParams) || ind.Params[0] != wantParams[0] || ind.Params[1] != wantParams[1] {
			t.Fatalf("perm %d: got params %v, want %v", ind.PermID, ind.Params, wantParams)
		}
	}

	if _, err := os.Stat(filepath.Join(permDir(gen2Dir, 0), "rep0")); !os.IsNotExist(err) {
		t.Fatalf("expected stale replicate directory to be removed")
	}
	if _, err := os.Stat(filepath.Join(permDir(gen2Dir, 0), "avg_ref.gdat")); !os.IsNotExist(err) {
		t.Fatalf("expected stale averaged output to be removed")
	}
}

// resume <N> raises the generation budget in the resumed config snapshot
// (spec §6 "resume <N> <conf>").
func TestResumeRaisesGenerationBudget(t *testing.T) {
	dir := t.TempDir()
	cfg := baseResumeConfig(dir)
	gen1Dir := generationDir(dir, 1)
	if err := config.Snapshot(configSnapshotPath(gen1Dir), cfg); err != nil {
		t.Fatal(err)
	}
	writeModelFile(t, filepath.Join(permDir(gen1Dir, 0), "model.net"), []string{"k1", "k2"}, []float64{1, 2})

	state, err := Resume(dir, 10)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if state.Cfg.Generations != 10 {
		t.Fatalf("expected generation budget raised to 10, got %d", state.Cfg.Generations)
	}
}

// Resume picks the highest generation with a config snapshot and deletes
// any further directory left behind by a crash mid-materialize, even
// though that directory never got its own config snapshot.
func TestResumeDeletesHigherGenerations(t *testing.T) {
	dir := t.TempDir()
	cfg := baseResumeConfig(dir)
	for _, g := range []int{1, 2} {
		gd := generationDir(dir, g)
		if err := config.Snapshot(configSnapshotPath(gd), cfg); err != nil {
			t.Fatal(err)
		}
		writeModelFile(t, filepath.Join(permDir(gd, 0), "model.net"), []string{"k1", "k2"}, []float64{float64(g), float64(g)})
	}
	// gen3 started materializing before the crash but never got a config
	// snapshot; resume must still remove it.
	if err := os.MkdirAll(generationDir(dir, 3), 0o755); err != nil {
		t.Fatal(err)
	}

	state, err := Resume(dir, 0)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if state.StartGen != 2 {
		t.Fatalf("expected resume at generation 2, got %d", state.StartGen)
	}
	if _, err := os.Stat(generationDir(dir, 3)); !os.IsNotExist(err) {
		t.Fatalf("expected gen3 to be removed")
	}
	if _, err := os.Stat(configSnapshotPath(generationDir(dir, 1))); err != nil {
		t.Fatalf("expected gen1 config snapshot to survive: %v", err)
	}
}

func TestResumeNoGenerationFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Resume(dir, 0); err == nil {
		t.Fatal("expected error when no generation config snapshot exists")
	}
}
