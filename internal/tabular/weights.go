package tabular

import "fmt"

// WeightMap is a per-reference-file BootstrapWeightMap (spec §3, §4.9):
// one integer weight per (row, column) for every non-control, non-_SD
// reference column.
type WeightMap struct {
	Columns []string
	Weights map[string][]int // column -> per-row weight, len == row count
}

// NewWeightMap allocates a WeightMap for the given columns and row count,
// all weights initialized to zero.
func NewWeightMap(columns []string, rows int) *WeightMap {
	w := &WeightMap{Columns: append([]string(nil), columns...), Weights: make(map[string][]int, len(columns))}
	for _, c := range columns {
		w.Weights[c] = make([]int, rows)
	}
	return w
}

// WeightAt returns the weight for (row, column), defaulting to 1 (an
// un-resampled, uniformly-weighted point) when the map has no such
// column or the row is out of range. It must not be called on a nil
// *WeightMap; callers check for nil first.
func (w *WeightMap) WeightAt(column string, row int) int {
	col, ok := w.Weights[column]
	if !ok || row < 0 || row >= len(col) {
		return 1
	}
	return col[row]
}

// WriteWeightMap persists w as a whitespace-separated tabular file, one
// row per reference row.
func WriteWeightMap(path string, w *WeightMap) error {
	t := &Table{Columns: append([]string(nil), w.Columns...)}
	if len(w.Columns) == 0 {
		return Write(path, t)
	}
	n := len(w.Weights[w.Columns[0]])
	for r := 0; r < n; r++ {
		row := make([]float64, len(w.Columns))
		for i, c := range w.Columns {
			row[i] = float64(w.Weights[c][r])
		}
		t.Rows = append(t.Rows, row)
	}
	return Write(path, t)
}

// ReadWeightMap loads a weight map previously written by WriteWeightMap.
func ReadWeightMap(path string) (*WeightMap, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	w := &WeightMap{Columns: t.Columns, Weights: make(map[string][]int, len(t.Columns))}
	for i, c := range t.Columns {
		col := make([]int, len(t.Rows))
		for r, row := range t.Rows {
			v := row[i]
			iv := int(v)
			if float64(iv) != v {
				return nil, fmt.Errorf("tabular: %s: non-integer weight %v at row %d column %s", path, v, r, c)
			}
			col[r] = iv
		}
		w.Weights[c] = col
	}
	return w, nil
}
