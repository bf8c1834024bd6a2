package modelfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadChangeLog recovers the ParameterVector written into a materialized
// model file's change-log header (spec §4.2, §9: "the scorer recovers
// the parameter vector by reading these lines until the sentinel"). It
// returns the values in header order.
func ReadChangeLog(path string) (names []string, values []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("modelfile: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == ChangeLogSentinel {
			return names, values, nil
		}
		name, val, ok := parseChangeLine(line)
		if !ok {
			continue
		}
		names = append(names, name)
		values = append(values, val)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("modelfile: read %s: %w", path, err)
	}
	return nil, nil, fmt.Errorf("modelfile: %s: missing %q sentinel", path, ChangeLogSentinel)
}

// parseChangeLine parses "# <name> changed to <value>".
func parseChangeLine(line string) (name string, value float64, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return "", 0, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	const marker = " changed to "
	idx := strings.Index(rest, marker)
	if idx < 0 {
		return "", 0, false
	}
	name = strings.TrimSpace(rest[:idx])
	valStr := strings.TrimSpace(rest[idx+len(marker):])
	v, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return "", 0, false
	}
	return name, v, true
}
