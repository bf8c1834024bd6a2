package scorer

import (
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/tabular"
)

// BuildSummaryTable renders one generation's scored population as the
// summary artifact spec §4.5 describes: rows sorted ascending by score,
// columns "perm-id, score, v1, ..., v|names|". Callers must have already
// called pop.Sort().
func BuildSummaryTable(schema []string, pop model.Population) *tabular.Table {
	columns := append([]string{"perm-id", "score"}, schema...)
	rows := make([][]float64, len(pop))
	for i, ind := range pop {
		row := make([]float64, len(columns))
		row[0] = float64(ind.PermID)
		row[1] = ind.Score
		for j, v := range ind.Params {
			row[2+j] = v
		}
		rows[i] = row
	}
	return &tabular.Table{Columns: columns, Rows: rows}
}

// ParsePopulation is BuildSummaryTable's inverse: it reconstructs a scored
// Population from a previously written summary or parent-summary table,
// used by the generation controller to rebuild in-memory state on resume
// (spec §4.7 "Resume") without re-running the generation that produced it.
func ParsePopulation(t *tabular.Table) model.Population {
	pop := make(model.Population, len(t.Rows))
	for i, row := range t.Rows {
		params := make(model.ParameterVector, len(row)-2)
		copy(params, row[2:])
		pop[i] = model.Individual{
			PermID: int(row[0]),
			Score:  row[1],
			Params: params,
			Failed: row[1] >= model.SentinelScore,
		}
	}
	return pop
}

// BuildDiffTable renders the perm_model_diff breakdown: one row per
// permutation, one column per reference file, containing that file's
// contribution to the permutation's total score.
func BuildDiffTable(permIDs []int, referencePaths []string, results map[int]Result) *tabular.Table {
	columns := append([]string{"perm-id"}, referencePaths...)
	rows := make([][]float64, len(permIDs))
	for i, id := range permIDs {
		row := make([]float64, len(columns))
		row[0] = float64(id)
		res, ok := results[id]
		if !ok {
			rows[i] = row
			continue
		}
		byPath := make(map[string]float64, len(res.PerFile))
		for _, pf := range res.PerFile {
			byPath[pf.ReferencePath] = pf.Score
		}
		for j, path := range referencePaths {
			row[1+j] = byPath[path]
		}
		rows[i] = row
	}
	return &tabular.Table{Columns: columns, Rows: rows}
}
