package modelfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netfit/fitctl/internal/simulator"
)

// GenerateNetwork invokes the simulator once, in generation 1, with a
// "generate network only" action, producing a .net file that every
// per-permutation model file then references via a readFile directive
// (spec §4.2 final paragraph, §6).
func GenerateNetwork(ctx context.Context, sim simulator.Spec, templatePath, outDir string) (string, error) {
	invocation := sim
	invocation.Args = append(append([]string(nil), sim.Args...), "--generate-network-only")
	invocation.ModelFile = templatePath
	invocation.OutDir = outDir
	if err := simulator.Invoke(ctx, invocation); err != nil {
		return "", fmt.Errorf("modelfile: generate network: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	return filepath.Join(outDir, base+".net"), nil
}

// ReadFileDirective renders the readFile({file=>...}) action line that a
// per-permutation model file appends to reference a pre-generated
// network file (spec §6).
func ReadFileDirective(netPath string) string {
	return fmt.Sprintf("readFile({file=>%q})", netPath)
}

// AppendReadFileDirective appends netPath's readFile directive to a
// materialized model file, used in deterministic-ODE mode so every
// per-permutation file references the one network generated for the run
// instead of re-deriving it (spec §4.2, §6).
func AppendReadFileDirective(modelFilePath, netPath string) error {
	f, err := os.OpenFile(modelFilePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("modelfile: append readFile to %s: %w", modelFilePath, err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n" + ReadFileDirective(netPath) + "\n"); err != nil {
		return fmt.Errorf("modelfile: append readFile to %s: %w", modelFilePath, err)
	}
	return nil
}
