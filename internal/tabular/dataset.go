package tabular

import (
	"fmt"
	"math"

	"github.com/netfit/fitctl/internal/model"
)

// ReferenceDataset is one parsed experimental (.exp) file: a table keyed
// by its control column (spec §3).
type ReferenceDataset struct {
	Path    string
	Control string
	Table   *Table
}

// LoadReferenceDataset reads path and binds it to the given control
// column (defaults to "time" if empty).
func LoadReferenceDataset(path, control string) (*ReferenceDataset, error) {
	if control == "" {
		control = model.ControlColumnDefault
	}
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	if t.ColumnIndex(control) < 0 {
		return nil, fmt.Errorf("tabular: %s: missing control column %q", path, control)
	}
	return &ReferenceDataset{Path: path, Control: control, Table: t}, nil
}

// DataColumns returns the reference columns that are neither the control
// column nor a paired _SD column.
func (r *ReferenceDataset) DataColumns() []string {
	var out []string
	for _, c := range r.Table.Columns {
		if c == r.Control || IsSDColumn(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ControlValue returns the control column value at row i.
func (r *ReferenceDataset) ControlValue(i int) float64 {
	return r.Table.Value(i, r.Control)
}

// SimulationOutput is one parsed simulator (.gdat) output file for a
// single (permutation, replicate) run.
type SimulationOutput struct {
	Path    string
	Control string
	Table   *Table
}

// LoadSimulationOutput reads path and binds it to control.
func LoadSimulationOutput(path, control string) (*SimulationOutput, error) {
	if control == "" {
		control = model.ControlColumnDefault
	}
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	if t.ColumnIndex(control) < 0 {
		return nil, fmt.Errorf("tabular: %s: missing control column %q", path, control)
	}
	return &SimulationOutput{Path: path, Control: control, Table: t}, nil
}

// CoversReference reports whether the simulation's control range covers
// the reference's control range within the given tolerance, per spec §3
// ("must begin and end at a control-column value covering the reference
// rows' control values within numeric tolerance").
func (s *SimulationOutput) CoversReference(ref *ReferenceDataset, eps float64) bool {
	if len(s.Table.Rows) == 0 || len(ref.Table.Rows) == 0 {
		return false
	}
	simFirst := s.Table.Value(0, s.Control)
	simLast := s.Table.Value(len(s.Table.Rows)-1, s.Control)
	refFirst := ref.ControlValue(0)
	refLast := ref.ControlValue(len(ref.Table.Rows) - 1)
	if simFirst > refFirst+eps {
		return false
	}
	if simLast < refLast-eps {
		return false
	}
	return true
}

// AlignRow finds the row in s whose control value matches target within
// eps, searching forward from startAt (never backward, per spec §4.5).
// It returns the row index and the next search start, or -1 if no match
// was found at or after startAt.
func (s *SimulationOutput) AlignRow(target, eps float64, startAt int) (row int, nextStart int) {
	for i := startAt; i < len(s.Table.Rows); i++ {
		v := s.Table.Value(i, s.Control)
		if math.Abs(v-target) <= eps {
			return i, i
		}
		if v > target+eps {
			// Simulation has overshot the reference control value: no
			// match at or before it, since we only ever advance.
			return -1, i
		}
	}
	return -1, len(s.Table.Rows)
}
