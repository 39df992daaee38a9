package scoring

import (
	"cmp"
	"slices"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// SortByScore returns a new slice of ScoredFile sorted by descending Score
// (primary key) and then alphabetically by Path (secondary key). The input
// slice is never mutated; the sort is stable.
func SortByScore(files []pipeline.ScoredFile) []pipeline.ScoredFile {
	out := make([]pipeline.ScoredFile, len(files))
	copy(out, files)

	slices.SortStableFunc(out, func(a, b pipeline.ScoredFile) int {
		if n := cmp.Compare(b.Score, a.Score); n != 0 {
			return n
		}
		return cmp.Compare(a.Path, b.Path)
	})

	return out
}

// Summarize builds the aggregate ScoringReportSummary for a set of scored
// files: totals and inclusion rate.
func Summarize(files []pipeline.ScoredFile) pipeline.ScoringReportSummary {
	included := 0
	for _, f := range files {
		if f.Included {
			included++
		}
	}
	pct := 0.0
	if len(files) > 0 {
		pct = float64(included) / float64(len(files)) * 100
	}
	return pipeline.ScoringReportSummary{
		Total:        len(files),
		Included:     included,
		InclusionPct: pct,
	}
}

// Report builds the full pipeline.ScoringReport for a run: summary plus
// score-descending file list.
func Report(files []pipeline.ScoredFile) pipeline.ScoringReport {
	sorted := SortByScore(files)
	return pipeline.ScoringReport{
		Summary: Summarize(sorted),
		Files:   sorted,
	}
}
