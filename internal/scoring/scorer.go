package scoring

import (
	"bufio"
	"bytes"
	"log/slog"
	"os"
	"time"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// densitySampleBytes caps how much of a file the density component reads.
// Density is a relevance signal, not a precise metric, so a bounded prefix
// is sufficient and keeps Scoring cheap even on very large files.
const densitySampleBytes = 65536

// FileScorer computes a weighted-component relevance score in [0,1] for
// each discovered file, per the weights config.ScoringConfig describes. One
// FileScorer is built per run and reused across every file so the
// dependency graph is computed once.
type FileScorer struct {
	cfg    config.ScoringConfig
	graph  Graph
	now    time.Time
	logger *slog.Logger
}

// NewFileScorer builds a FileScorer for one run. files is the full
// discovery result, used once to build the import dependency graph; now is
// the reference time for the recency component (normally time.Now(), passed
// explicitly so scoring is deterministic in tests).
func NewFileScorer(cfg config.ScoringConfig, files []pipeline.FileDescriptor, now time.Time) *FileScorer {
	return &FileScorer{
		cfg:    cfg,
		graph:  BuildGraph(files),
		now:    now,
		logger: slog.Default().With("component", "scoring"),
	}
}

// Score computes the weighted-average relevance score for fd and returns
// the per-component breakdown alongside the clamped [0,1] total. Only
// components with a nonzero applicable weight participate in the weighted
// average: a file with every weight zeroed out scores 0, not NaN.
func (s *FileScorer) Score(fd pipeline.FileDescriptor) pipeline.ScoredFile {
	components := make(map[string]float64, 8)
	var weightSum, scoreSum float64

	add := func(name string, weight, value float64) {
		if weight <= 0 {
			return
		}
		components[name] = value
		weightSum += weight
		scoreSum += weight * value
	}

	if MatchesImportantFiles(fd.Path, s.cfg.ImportantFiles) {
		add("root", s.cfg.WeightRoot, 1)
	} else {
		add("root", s.cfg.WeightRoot, 0)
	}

	if MatchesImportantDir(fd.Path, s.cfg.ImportantDirs) {
		add("top_dir", s.cfg.WeightTopDir, 1)
	} else {
		add("top_dir", s.cfg.WeightTopDir, 0)
	}

	if IsEntryPoint(fd.Path) {
		add("entry_point", s.cfg.WeightEntryPoint, 1)
	} else {
		add("entry_point", s.cfg.WeightEntryPoint, 0)
	}

	add("graph", s.cfg.WeightGraph, s.graph.Score(fd.Path))

	if bucket, typeWeight := ClassifyType(fd.Path, s.cfg); bucket != BucketNone {
		add(string(bucket)+"_type", typeWeight, 1)
	}

	add("recency", s.cfg.WeightRecency, s.recencyScore(fd))
	add("size_inv", s.cfg.WeightSizeInv, s.sizeInvScore(fd))
	add("density", s.cfg.WeightDensity, s.densityScore(fd))

	total := 0.0
	if weightSum > 0 {
		total = scoreSum / weightSum
	}
	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}

	return pipeline.ScoredFile{
		Path:       fd.Path,
		Score:      total,
		Components: components,
		Included:   total >= s.cfg.InclusionThreshold,
	}
}

// recencyScore decays linearly from 1.0 (modified now) to 0.0 (modified
// RecentWindowDays or more ago).
func (s *FileScorer) recencyScore(fd pipeline.FileDescriptor) float64 {
	windowDays := s.cfg.RecentWindowDays
	if windowDays <= 0 {
		return 0
	}
	ageDays := s.now.Sub(fd.ModTime).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	score := 1 - ageDays/float64(windowDays)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// sizeInvScore favors smaller files: 1.0 at or below LargeFileThresholdBytes,
// decaying toward 0 as size grows beyond it.
func (s *FileScorer) sizeInvScore(fd pipeline.FileDescriptor) float64 {
	threshold := s.cfg.LargeFileThresholdBytes
	if threshold <= 0 || fd.Size <= 0 {
		return 1
	}
	if fd.Size <= threshold {
		return 1
	}
	return float64(threshold) / float64(fd.Size)
}

// densityScore approximates "signal per line" as the fraction of non-blank
// lines in a bounded content sample. Binary or unreadable files score 0
// rather than being excluded, since an unreadable file is a weak candidate
// for inclusion regardless of its other components.
func (s *FileScorer) densityScore(fd pipeline.FileDescriptor) float64 {
	f, err := os.Open(fd.AbsPath)
	if err != nil {
		s.logger.Debug("density sample unavailable", "path", fd.Path, "error", err)
		return 0
	}
	defer f.Close()

	buf := make([]byte, densitySampleBytes)
	n, err := f.Read(buf)
	if n == 0 {
		return 0
	}
	sample := buf[:n]

	scanner := bufio.NewScanner(bytes.NewReader(sample))
	total, nonBlank := 0, 0
	for scanner.Scan() {
		total++
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			nonBlank++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(nonBlank) / float64(total)
}

// ScoreAll scores every discovered file and returns the results in input
// order. Callers needing score-descending order should sort the result with
// SortByScore.
func (s *FileScorer) ScoreAll(files []pipeline.FileDescriptor) []pipeline.ScoredFile {
	scores := make([]pipeline.ScoredFile, len(files))
	for i, fd := range files {
		scores[i] = s.Score(fd)
	}
	return scores
}
