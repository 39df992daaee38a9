package discovery

import "github.com/bmatcuk/doublestar/v4"

// MatchAny reports whether path matches any of the given doublestar glob
// patterns. Invalid patterns are skipped rather than treated as a match, the
// same tolerant handling PatternFilter.Matches uses for bad globs.
//
// This is the shared matching primitive behind internal/scoring's type
// classification and internal/config's `profile explain` trace.
// PatternFilter.Matches runs its own doublestar.Match loop.
func MatchAny(patterns []string, path string) bool {
	_, ok := FirstMatch(patterns, path)
	return ok
}

// FirstMatch returns the first pattern in patterns that matches path, and
// true, or ("", false) if none match.
func FirstMatch(patterns []string, path string) (string, bool) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err != nil {
			continue
		}
		if ok {
			return p, true
		}
	}
	return "", false
}

// TypeBucket names which of a profile's four type pattern lists matched a
// path, in first-match-wins priority order: source, config, docs, test.
type TypeBucket string

const (
	BucketSource TypeBucket = "source"
	BucketConfig TypeBucket = "config"
	BucketDocs   TypeBucket = "docs"
	BucketTest   TypeBucket = "test"
	BucketNone   TypeBucket = ""
)

// TypeBucketPatterns holds the four pattern lists a caller classifies a path
// against. It is a plain struct rather than config.ScoringConfig itself so
// this package never needs to import internal/config: internal/scoring
// already imports internal/config for ScoringConfig, and internal/config's
// `profile explain` trace needs this same classification, so the shared
// primitive has to sit below both to avoid an import cycle.
type TypeBucketPatterns struct {
	Source []string
	Config []string
	Docs   []string
	Test   []string
}

// ClassifyType applies p's four pattern lists to path in priority order and
// returns the matching bucket and pattern. BucketNone means no list matched.
func ClassifyType(path string, p TypeBucketPatterns) (bucket TypeBucket, pattern string, matched bool) {
	buckets := []struct {
		name     TypeBucket
		patterns []string
	}{
		{BucketSource, p.Source},
		{BucketConfig, p.Config},
		{BucketDocs, p.Docs},
		{BucketTest, p.Test},
	}
	for _, b := range buckets {
		if pat, ok := FirstMatch(b.patterns, path); ok {
			return b.name, pat, true
		}
	}
	return BucketNone, "", false
}
