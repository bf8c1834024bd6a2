package controller

import (
	"os"
	"testing"

	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/scorer"
	"github.com/netfit/fitctl/internal/tabular"
)

func writeSummary(t *testing.T, genDir string, gen int, pop model.Population) {
	t.Helper()
	if err := os.MkdirAll(genDir, 0o755); err != nil {
		t.Fatal(err)
	}
	table := scorer.BuildSummaryTable([]string{"k1", "k2"}, pop)
	if err := tabular.Write(summaryPath(genDir, gen), table); err != nil {
		t.Fatal(err)
	}
}

// Consolidate unions every on-disk generation summary, sorted ascending by
// score, without rerunning anything (spec §6 "results <conf>").
func TestConsolidateUnionsGenerations(t *testing.T) {
	dir := t.TempDir()
	writeSummary(t, generationDir(dir, 1), 1, model.Population{
		{PermID: 0, Score: 5, Params: model.ParameterVector{1, 2}},
		{PermID: 1, Score: 2, Params: model.ParameterVector{3, 4}},
	})
	writeSummary(t, generationDir(dir, 2), 2, model.Population{
		{PermID: 0, Score: 1, Params: model.ParameterVector{5, 6}},
	})

	pop, err := Consolidate(dir, []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if len(pop) != 3 {
		t.Fatalf("expected 3 individuals across both generations, got %d", len(pop))
	}
	if pop[0].Score != 1 {
		t.Fatalf("expected best score 1 first, got %v", pop[0].Score)
	}
	if _, err := os.Stat(sortedParamsPath(dir)); err != nil {
		t.Fatalf("expected sorted_params.txt to be written: %v", err)
	}
}

func TestConsolidateNoSummariesFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := Consolidate(dir, []string{"k1"}); err == nil {
		t.Fatal("expected error when no generation summary exists")
	}
}
