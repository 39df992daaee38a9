// Package scoring implements the FileScorer: a weighted-component relevance
// score in [0,1] for each discovered file, driven by the weights and pattern
// lists in config.ScoringConfig. Pattern matching delegates to
// internal/discovery.MatchAny/ClassifyType, the same primitive
// internal/config's `profile explain` trace uses.
package scoring

import (
	"path/filepath"
	"strings"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/discovery"
)

// entryPointBasenames are conventional entry-point file names across the
// languages internal/langdetect recognizes.
var entryPointBasenames = map[string]bool{
	"main.go":     true,
	"index.js":    true,
	"index.ts":    true,
	"index.tsx":   true,
	"index.jsx":   true,
	"__main__.py": true,
	"main.py":     true,
	"app.py":      true,
	"manage.py":   true,
	"server.go":   true,
	"server.js":   true,
	"main.rs":     true,
	"Main.java":   true,
}

// entryPointPatterns catches conventional entry-point locations that are
// not a fixed basename, such as Go's one-main-per-subcommand layout.
var entryPointPatterns = []string{
	"cmd/*/main.go",
	"cmd/**/main.go",
	"src/main/**/Main.java",
}

// IsRoot reports whether path sits directly at the repository root (no
// directory component).
func IsRoot(path string) bool {
	return !strings.Contains(strings.TrimPrefix(path, "./"), "/")
}

// MatchesImportantFiles reports whether path matches one of the
// ImportantFiles glob patterns used by the structure.root component.
func MatchesImportantFiles(path string, patterns []string) bool {
	return discovery.MatchAny(patterns, path) || discovery.MatchAny(patterns, filepath.Base(path))
}

// MatchesImportantDir reports whether path's top-level directory segment
// matches one of the ImportantDirs patterns used by the structure.top_dir
// component.
func MatchesImportantDir(path string, patterns []string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(path), "./")
	segments := strings.SplitN(normalized, "/", 2)
	if len(segments) < 2 {
		// A root-level file has no top-level directory to match.
		return false
	}
	return discovery.MatchAny(patterns, segments[0])
}

// IsEntryPoint reports whether path matches a conventional entry-point
// basename or location pattern.
func IsEntryPoint(path string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(path), "./")
	if entryPointBasenames[filepath.Base(normalized)] {
		return true
	}
	return discovery.MatchAny(entryPointPatterns, normalized)
}

// TypeBucket names which of ScoringConfig's four type pattern lists matched
// a path, in first-match-wins priority order: source, config, docs, test.
type TypeBucket string

const (
	BucketSource TypeBucket = "source"
	BucketConfig TypeBucket = "config"
	BucketDocs   TypeBucket = "docs"
	BucketTest   TypeBucket = "test"
	BucketNone   TypeBucket = ""
)

// ClassifyType applies config.ScoringConfig's source/config/docs/test
// pattern lists to path in priority order and returns the bucket and the
// corresponding weight. BucketNone (weight 0) means no list matched, in
// which case the type component does not participate in the weighted
// average at all.
func ClassifyType(path string, cfg config.ScoringConfig) (TypeBucket, float64) {
	normalized := strings.TrimPrefix(filepath.ToSlash(path), "./")
	bucket, _, _ := discovery.ClassifyType(normalized, discovery.TypeBucketPatterns{
		Source: cfg.SourceExtensions,
		Config: cfg.ConfigExtensions,
		Docs:   cfg.DocsExtensions,
		Test:   cfg.TestPatterns,
	})
	switch TypeBucket(bucket) {
	case BucketSource:
		return BucketSource, cfg.WeightTypeSource
	case BucketConfig:
		return BucketConfig, cfg.WeightTypeConfig
	case BucketDocs:
		return BucketDocs, cfg.WeightTypeDocs
	case BucketTest:
		return BucketTest, cfg.WeightTypeTest
	default:
		return BucketNone, 0
	}
}
