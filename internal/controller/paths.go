// Package controller runs the per-generation state machine (spec §4.7):
// materialize -> dispatch -> await -> average -> score -> summarize ->
// decide, and the top-level loop that advances generations or halts on
// stall/threshold/insufficient-survivors conditions. Grounded on the
// generational-loop shape common to the pack's evolutionary-computation
// examples (parameter generator -> evaluate -> select -> breed -> repeat),
// adapted here to the filesystem-sentinel dispatch model spec §5 requires
// instead of an in-memory channel pipeline.
package controller

import (
	"fmt"
	"path/filepath"
	"strings"
)

func generationDir(outputDir string, gen int) string {
	return filepath.Join(outputDir, fmt.Sprintf("gen%d", gen))
}

func permDir(genDir string, permID int) string {
	return filepath.Join(genDir, fmt.Sprintf("perm%d", permID))
}

func replicaDir(pDir string, replica int) string {
	return filepath.Join(pDir, fmt.Sprintf("rep%d", replica))
}

func taskName(permID, replica int) string {
	return fmt.Sprintf("perm%d_rep%d", permID, replica)
}

func simOutputPath(repDir, taskBase, refPath string) string {
	stem := refStem(refPath)
	return filepath.Join(repDir, fmt.Sprintf("%s_%s.gdat", taskBase, stem))
}

func refStem(refPath string) string {
	base := filepath.Base(refPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func avgOutputPath(pDir, refPath string) string {
	return filepath.Join(pDir, fmt.Sprintf("avg_%s.gdat", refStem(refPath)))
}

func configSnapshotPath(genDir string) string {
	return filepath.Join(genDir, "config.yaml")
}

func summaryPath(genDir string, gen int) string {
	return filepath.Join(genDir, fmt.Sprintf("%d_summary_diff.txt", gen))
}

func parentSummaryPath(genDir string) string {
	return filepath.Join(genDir, "parent_summary_diff.txt")
}

func permModelDiffPath(genDir string) string {
	return filepath.Join(genDir, "perm_model_diff.txt")
}

func resultsDir(outputDir string) string {
	return filepath.Join(outputDir, "Results")
}

func sortedParamsPath(outputDir string) string {
	return filepath.Join(resultsDir(outputDir), "sorted_params.txt")
}
