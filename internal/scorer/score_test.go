package scorer

import (
	"math"
	"testing"

	"github.com/netfit/fitctl/internal/config"
	"github.com/netfit/fitctl/internal/model"
	"github.com/netfit/fitctl/internal/tabular"
)

func refDataset(path string, cols []string, rows [][]float64) *tabular.ReferenceDataset {
	return &tabular.ReferenceDataset{
		Path:    path,
		Control: "time",
		Table:   &tabular.Table{Columns: cols, Rows: rows},
	}
}

func simOutput(cols []string, rows [][]float64) *tabular.SimulationOutput {
	return &tabular.SimulationOutput{
		Control: "time",
		Table:   &tabular.Table{Columns: cols, Rows: rows},
	}
}

// S2 -- Scorer o=1. Reference (time, A): (0,1), (1,2), (2,3). Simulation
// (time, A): (0,1), (1,4), (2,3). Score = sqrt(0 + 4 + 0) = 2.
func TestScoreAbsoluteS2(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, 1}, {1, 2}, {2, 3}})
	sim := simOutput([]string{"time", "A"}, [][]float64{{0, 1}, {1, 4}, {2, 3}})

	res := Score(1, Options{Objective: config.ObjectiveAbsolute}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if math.Abs(res.Score-2) > 1e-9 {
		t.Fatalf("expected score 2, got %v", res.Score)
	}
}

// S3 -- Scorer o=3 div-by-zero. Reference has A=0 at some row; expected
// result: permutation marked sentinel.
func TestScoreRelativeDivByZeroS3(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, 0}, {1, 2}})
	sim := simOutput([]string{"time", "A"}, [][]float64{{0, 1}, {1, 2}})

	res := Score(1, Options{Objective: config.ObjectiveRelative}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if !res.Failed || res.Score != model.SentinelScore {
		t.Fatalf("expected sentinel score for relative div-by-zero, got %+v", res)
	}
}

// S4 -- Alignment. Simulation timepoints are {0, 0.5, 1, 1.5, 2},
// reference {0, 1, 2}; the scorer picks simulation rows at {0, 1, 2} and
// ignores {0.5, 1.5}.
func TestScoreAlignmentS4(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, 1}, {1, 1}, {2, 1}})
	sim := simOutput([]string{"time", "A"}, [][]float64{
		{0, 1}, {0.5, 999}, {1, 1}, {1.5, 999}, {2, 1},
	})

	res := Score(1, Options{Objective: config.ObjectiveAbsolute}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.Score != 0 {
		t.Fatalf("expected exact match score 0 (interleaved rows ignored), got %v", res.Score)
	}
}

func TestScoreMissingSimulationColumnIsSentinel(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, 1}})
	sim := simOutput([]string{"time", "B"}, [][]float64{{0, 1}})

	res := Score(1, Options{Objective: config.ObjectiveAbsolute}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if !res.Failed {
		t.Fatalf("expected failure for missing simulation column")
	}
}

func TestScoreInsufficientCoverageIsSentinel(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, 1}, {5, 1}})
	sim := simOutput([]string{"time", "A"}, [][]float64{{0, 1}, {1, 1}}) // never reaches t=5

	res := Score(1, Options{Objective: config.ObjectiveAbsolute}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if !res.Failed {
		t.Fatalf("expected failure when simulation doesn't cover reference control range")
	}
}

func TestScoreSDObjectiveWeighting(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A", "A_SD"}, [][]float64{{0, 10, 2}})
	sim := simOutput([]string{"time", "A"}, [][]float64{{0, 12}})

	res := Score(1, Options{Objective: config.ObjectiveSD}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	// ((10-12)/2)^2 = 1, sqrt(1) = 1
	if math.Abs(res.Score-1) > 1e-9 {
		t.Fatalf("expected score 1, got %v", res.Score)
	}
}

func TestScoreWeightMapMultipliesResidual(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, 1}, {1, 2}})
	sim := simOutput([]string{"time", "A"}, [][]float64{{0, 2}, {1, 2}}) // residual 1 at row 0, 0 at row 1

	wm := tabular.NewWeightMap([]string{"A"}, 2)
	wm.Weights["A"][0] = 4

	res := Score(1, Options{Objective: config.ObjectiveAbsolute}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim},
		map[string]*tabular.WeightMap{"ref.exp": wm})

	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	// weighted sum = 1*4 + 0 = 4, sqrt(4) = 2
	if math.Abs(res.Score-2) > 1e-9 {
		t.Fatalf("expected weighted score 2, got %v", res.Score)
	}
}

func TestScoreNaNReferenceRowSkipped(t *testing.T) {
	ref := refDataset("ref.exp", []string{"time", "A"}, [][]float64{{0, math.NaN()}, {1, 5}})
	sim := simOutput([]string{"time", "A"}, [][]float64{{0, 999}, {1, 5}})

	res := Score(1, Options{Objective: config.ObjectiveAbsolute}, []*tabular.ReferenceDataset{ref},
		map[string]*tabular.SimulationOutput{"ref.exp": sim}, nil)

	if res.Failed {
		t.Fatalf("unexpected failure: %+v", res)
	}
	if res.Score != 0 {
		t.Fatalf("expected NaN reference row to be excluded, got score %v", res.Score)
	}
}
