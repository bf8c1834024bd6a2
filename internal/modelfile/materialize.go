// Package modelfile materializes a concrete model file from a template
// and a ParameterVector (spec §4.2): it substitutes parameter values in
// the template's "begin parameters"/"end parameters" block and prepends a
// machine-readable change-log header that the scorer later uses to
// recover the parameter vector from disk (spec §4.2, §9).
package modelfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/netfit/fitctl/internal/model"
)

// ChangeLogSentinel terminates the change-log header block.
const ChangeLogSentinel = "# End of permute change log"

const (
	beginParamsMarker = "begin parameters"
	endParamsMarker   = "end parameters"
)

// Materialize reads the template at templatePath, substitutes the values
// in params (indexed by names) into the parameters block, and writes the
// concrete file to outDir with a name derived from the template and
// permutation index. It returns the written file's path.
func Materialize(templatePath string, names []string, params model.ParameterVector, outDir string, permID int) (string, error) {
	if len(names) != len(params) {
		return "", fmt.Errorf("modelfile: %d names but %d parameter values", len(names), len(params))
	}

	lines, err := readJoiningContinuations(templatePath)
	if err != nil {
		return "", fmt.Errorf("modelfile: %w", err)
	}

	begin, end, err := findParamsBlock(lines)
	if err != nil {
		return "", fmt.Errorf("modelfile: %w", err)
	}

	replaced := make([]bool, len(names))
	changes := make([]string, 0, len(names))
	for i := begin + 1; i < end; i++ {
		name, ok := matchParamLine(lines[i], names, replaced)
		if !ok {
			continue
		}
		idx := indexOf(names, name)
		newLine, err := substituteValue(lines[i], name, params[idx])
		if err != nil {
			return "", fmt.Errorf("modelfile: line %d: %w", i+1, err)
		}
		lines[i] = newLine
		replaced[idx] = true
		changes = append(changes, fmt.Sprintf("# %s changed to %s", name, formatValue(params[idx])))
	}

	for i, ok := range replaced {
		if !ok {
			return "", fmt.Errorf("modelfile: parameter %q not found in parameters block", names[i])
		}
	}

	out := make([]string, 0, len(changes)+1+len(lines))
	out = append(out, changes...)
	out = append(out, ChangeLogSentinel)
	out = append(out, lines...)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("modelfile: %w", err)
	}
	outPath := filepath.Join(outDir, derivedName(templatePath, permID))
	if err := os.WriteFile(outPath, []byte(strings.Join(out, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("modelfile: write %s: %w", outPath, err)
	}
	return outPath, nil
}

func derivedName(templatePath string, permID int) string {
	base := filepath.Base(templatePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_perm%d%s", stem, permID, ext)
}

// readJoiningContinuations reads the template file, joining any line
// ending in a continuation character '\' with the line that follows it
// (spec §4.2 step 1).
func readJoiningContinuations(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lines []string
	var pending string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasSuffix(strings.TrimRight(line, " \t"), "\\") {
			trimmed := strings.TrimRight(line, " \t")
			pending += strings.TrimSuffix(trimmed, "\\")
			continue
		}
		lines = append(lines, pending+line)
		pending = ""
	}
	if pending != "" {
		lines = append(lines, pending)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

func findParamsBlock(lines []string) (begin, end int, err error) {
	begin, end = -1, -1
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if begin < 0 && t == beginParamsMarker {
			begin = i
			continue
		}
		if begin >= 0 && t == endParamsMarker {
			end = i
			break
		}
	}
	if begin < 0 || end < 0 {
		return 0, 0, fmt.Errorf("no %q/%q block found", beginParamsMarker, endParamsMarker)
	}
	return begin, end, nil
}

// matchParamLine returns the first not-yet-replaced name whose token
// appears in line, per spec §4.2 step 3 ("the first parameter-block line
// matching that name").
func matchParamLine(line string, names []string, replaced []bool) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(strings.TrimSpace(line), "#") {
		return "", false
	}
	for i, name := range names {
		if replaced[i] {
			continue
		}
		for _, f := range fields {
			if f == name {
				return name, true
			}
		}
	}
	return "", false
}

// substituteValue replaces the numeric value token following name's
// occurrence in line with newVal.
func substituteValue(line, name string, newVal float64) (string, error) {
	fields := strings.Fields(line)
	nameIdx := -1
	for i, f := range fields {
		if f == name {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 || nameIdx+1 >= len(fields) {
		return "", fmt.Errorf("parameter %q has no value token", name)
	}
	fields[nameIdx+1] = formatValue(newVal)
	return strings.Join(fields, " "), nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
