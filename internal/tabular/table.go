// Package tabular reads and writes the whitespace-separated tabular
// format shared by experimental (.exp) files, simulator (.gdat) output,
// and bootstrap weight files (spec §6).
package tabular

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is an in-memory tabular file: an ordered column schema and a list
// of rows keyed positionally to that schema. NaN means "ignore at this
// point" per the data model.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// ColumnIndex returns the position of name in the schema, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns row[col] for the named column, or NaN if either is out
// of range.
func (t *Table) Value(row int, name string) float64 {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return math.NaN()
	}
	return t.Rows[row][idx]
}

// SDColumn returns the paired _SD standard-deviation column name for a
// data column, e.g. "A" -> "A_SD".
func SDColumn(name string) string {
	return name + "_SD"
}

// IsSDColumn reports whether name is a _SD paired column.
func IsSDColumn(name string) bool {
	return strings.HasSuffix(name, "_SD")
}

// Read parses a whitespace-separated tabular file. The header line must
// begin with '#' followed by column names; subsequent lines are rows of
// floats or the literal NaN.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f, path)
}

// ReadFrom parses a tabular table from r. name is used only in error
// messages.
func ReadFrom(r io.Reader, name string) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var t Table
	haveHeader := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !haveHeader {
			if !strings.HasPrefix(line, "#") {
				return nil, fmt.Errorf("tabular: %s:%d: expected header line starting with '#'", name, lineNo)
			}
			header := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			t.Columns = strings.Fields(header)
			haveHeader = true
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != len(t.Columns) {
			return nil, fmt.Errorf("tabular: %s:%d: expected %d columns, got %d", name, lineNo, len(t.Columns), len(fields))
		}
		row := make([]float64, len(fields))
		for i, tok := range fields {
			v, err := parseValue(tok)
			if err != nil {
				return nil, fmt.Errorf("tabular: %s:%d: column %q: %w", name, lineNo, t.Columns[i], err)
			}
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tabular: %s: %w", name, err)
	}
	if !haveHeader {
		return nil, fmt.Errorf("tabular: %s: empty file, no header", name)
	}
	return &t, nil
}

func parseValue(tok string) (float64, error) {
	if strings.EqualFold(tok, "NaN") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q: %w", tok, err)
	}
	return v, nil
}

// Write emits t to path in the whitespace-separated format.
func Write(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tabular: create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTo(f, t)
}

// WriteTo emits t to w.
func WriteTo(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "#%s\n", strings.Join(t.Columns, " ")); err != nil {
		return err
	}
	for _, row := range t.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = formatValue(v)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
