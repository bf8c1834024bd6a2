package controller

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/scorer"
	"github.com/netfit/fitctl/internal/tabular"
)

// Consolidate implements the "results <conf>" verb (spec §6): it rereads
// every generation summary already on disk under outputDir, without
// rerunning anything, sorts the union ascending by score, and rewrites
// Results/sorted_params.txt. It returns the consolidated population so a
// caller can report the current best.
func Consolidate(outputDir string, schema []string) (model.Population, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, fmt.Errorf("controller: consolidate: %w", err)
	}

	var all model.Population
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "gen") {
			continue
		}
		gen, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "gen"))
		if err != nil {
			continue
		}
		genDir := generationDir(outputDir, gen)
		t, err := tabular.Read(summaryPath(genDir, gen))
		if err != nil {
			continue // generation never finished scoring; nothing to consolidate from it
		}
		all = append(all, scorer.ParsePopulation(t)...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("controller: consolidate: no generation summaries found under %s", outputDir)
	}

	all.Sort()
	if err := os.MkdirAll(resultsDir(outputDir), 0o755); err != nil {
		return nil, fmt.Errorf("controller: consolidate: %w", err)
	}
	table := scorer.BuildSummaryTable(schema, all)
	if err := tabular.Write(sortedParamsPath(outputDir), table); err != nil {
		return nil, fmt.Errorf("controller: consolidate: write sorted_params.txt: %w", err)
	}
	return all, nil
}
