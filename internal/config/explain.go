package config

import (
	"fmt"
	"strings"

	"github.com/ctxpack/ctxpack/internal/discovery"
	"github.com/ctxpack/ctxpack/internal/langdetect"
)

// TraceStep records one evaluation step during file rule tracing.
type TraceStep struct {
	// StepNum is the 1-based step number in the evaluation sequence.
	StepNum int

	// Rule describes the rule being evaluated, e.g. "Exclude patterns".
	Rule string

	// Matched indicates whether the rule matched the file path.
	Matched bool

	// Outcome describes the result of this step, e.g. "continue", "EXCLUDED",
	// or "type=source (pattern)".
	Outcome string
}

// ExplainResult holds the full explanation for a single file path showing
// how a profile would score and process the file during context generation.
type ExplainResult struct {
	// FilePath is the file path being explained.
	FilePath string

	// ProfileName is the name of the profile being used for display.
	ProfileName string

	// Extends is the parent profile name, or empty if there is no parent.
	Extends string

	// Included indicates whether the file is included (true) or excluded (false).
	Included bool

	// ExcludedBy names the rule that caused exclusion when Included is false.
	ExcludedBy string

	// TypeBucket is the scoring type classification: "source", "config",
	// "docs", "test", or "" (unclassified).
	TypeBucket string

	// TypeBucketPattern is the glob pattern that matched the classification.
	TypeBucketPattern string

	// IsRoot indicates the file is matched by scoring.important_files.
	IsRoot bool

	// IsTopDir indicates the file's top-level directory is matched by
	// scoring.important_dirs.
	IsTopDir bool

	// Language is the detected source language, or "" when unknown.
	Language string

	// WillSummarize reports whether the Summarizer would attempt to
	// summarize this file, based on the profile's summarization settings.
	WillSummarize bool

	// Trace is the ordered list of evaluation steps.
	Trace []TraceStep
}

// ExplainFile evaluates how profile p would process filePath and returns a
// full ExplainResult describing the evaluation. profileName is used for
// display only; it does not affect the evaluation logic.
//
// The function simulates the discovery and scoring pipeline steps in order:
//  1. Exclude patterns, then the built-in default ignore list
//  2. .gitignore rules (not simulated -- requires disk access)
//  3. Include filter
//  4. Root/top-dir importance
//  5. Type classification (source/config/docs/test)
//  6. Summarization applicability
func ExplainFile(filePath, profileName string, p *Profile) ExplainResult {
	result := ExplainResult{
		FilePath:    filePath,
		ProfileName: profileName,
	}

	if p.Extends != nil && *p.Extends != "" {
		result.Extends = *p.Extends
	}

	stepNum := 0
	nextStep := func() int {
		stepNum++
		return stepNum
	}

	// ── Step 1: Exclude patterns ────────────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Exclude patterns",
		}
		pattern, matched := discovery.FirstMatch(p.Exclude, filePath)
		base := filePath[strings.LastIndex(filePath, "/")+1:]
		for _, pat := range p.Exclude {
			if !matched && !strings.Contains(pat, "/") && discovery.MatchAny([]string{pat}, base) {
				pattern, matched = pat, true
			}
		}
		if matched {
			step.Matched = true
			step.Outcome = "EXCLUDED"
			result.Trace = append(result.Trace, step)
			result.Included = false
			result.ExcludedBy = fmt.Sprintf("exclude pattern %q", pattern)
			return result
		}
		if defaults := discovery.NewDefaultIgnoreMatcher(); defaults.IsIgnored(filePath, false) || defaults.IsIgnored(filePath, true) {
			step.Matched = true
			step.Outcome = "EXCLUDED"
			result.Trace = append(result.Trace, step)
			result.Included = false
			result.ExcludedBy = "built-in default ignore list"
			return result
		}
		step.Outcome = "no match -> continue"
		result.Trace = append(result.Trace, step)
	}

	// ── Step 2: .gitignore rules ─────────────────────────────────────────────
	result.Trace = append(result.Trace, TraceStep{
		StepNum: nextStep(),
		Rule:    ".gitignore rules",
		Outcome: "not simulated -> continue",
	})

	// ── Step 3: Include filter ───────────────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Include filter",
		}
		if len(p.Include) > 0 {
			included := discovery.MatchAny(p.Include, filePath)
			base := filePath[strings.LastIndex(filePath, "/")+1:]
			for _, pat := range p.Include {
				if !strings.Contains(pat, "/") && discovery.MatchAny([]string{pat}, base) {
					included = true
				}
			}
			if !included {
				step.Matched = true
				step.Outcome = "EXCLUDED"
				result.Trace = append(result.Trace, step)
				result.Included = false
				result.ExcludedBy = "include filter (not in include list)"
				return result
			}
			step.Outcome = "include match -> continue"
		} else {
			step.Outcome = "not active -> continue"
		}
		result.Trace = append(result.Trace, step)
	}

	result.Included = true

	// ── Step 4: Root / top-dir importance ───────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Root/top-dir importance",
		}
		if pattern, matched := discovery.FirstMatch(p.Scoring.ImportantFiles, filePath); matched {
			result.IsRoot = true
			step.Matched = true
			step.Outcome = fmt.Sprintf("root match %q", pattern)
		}
		topDir := topLevelDir(filePath)
		if topDir != "" {
			for _, dir := range p.Scoring.ImportantDirs {
				if dir == topDir {
					result.IsTopDir = true
					if step.Outcome != "" {
						step.Outcome += fmt.Sprintf("; top_dir match %q", dir)
					} else {
						step.Matched = true
						step.Outcome = fmt.Sprintf("top_dir match %q", dir)
					}
					break
				}
			}
		}
		if step.Outcome == "" {
			step.Outcome = "no match"
		}
		result.Trace = append(result.Trace, step)
	}

	// ── Step 5: Type classification ─────────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Type classification",
		}
		bucket, pattern, matched := discovery.ClassifyType(filePath, discovery.TypeBucketPatterns{
			Source: p.Scoring.SourceExtensions,
			Config: p.Scoring.ConfigExtensions,
			Docs:   p.Scoring.DocsExtensions,
			Test:   p.Scoring.TestPatterns,
		})
		if matched {
			result.TypeBucket = string(bucket)
			result.TypeBucketPattern = pattern
			step.Matched = true
			step.Outcome = fmt.Sprintf("type=%s (pattern %q)", bucket, pattern)
		} else {
			step.Outcome = "unclassified"
		}
		result.Trace = append(result.Trace, step)
	}

	// ── Language detection ───────────────────────────────────────────────────
	result.Language = langdetect.Detect(filePath)

	// ── Step 6: Summarization applicability ─────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Summarization",
		}
		if p.Summarization.Enabled && langdetect.IsSourceLanguage(result.Language) {
			result.WillSummarize = true
			step.Matched = true
			step.Outcome = fmt.Sprintf("eligible (language=%s)", result.Language)
		} else if p.Summarization.Enabled {
			step.Outcome = fmt.Sprintf("not eligible (language=%q is not source)", result.Language)
		} else {
			step.Outcome = "summarization disabled"
		}
		result.Trace = append(result.Trace, step)
	}

	return result
}

// topLevelDir returns the first path segment of filePath, or "" if filePath
// has no directory component.
func topLevelDir(filePath string) string {
	idx := strings.Index(filePath, "/")
	if idx < 0 {
		return ""
	}
	return filePath[:idx]
}

