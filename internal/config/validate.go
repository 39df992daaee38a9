package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// validFormats lists the only accepted values for Profile.Format.
// An empty string is valid for profiles that inherit the value from a parent.
var validFormats = map[string]bool{
	"markdown":   true,
	"xml":        true,
	"claude_xml": true,
	"plain":      true,
	"":           true,
}

// validTokenEncodings lists the only accepted values for
// Profile.TokenEncoding. An empty string is valid for profiles that inherit
// the value from a parent.
var validTokenEncodings = map[string]bool{
	"cl100k_base": true,
	"p50k_base":   true,
	"p50k_edit":   true,
	"r50k_base":   true,
	"o200k_base":  true,
	"":            true,
}

// validTargets lists the only accepted values for Profile.Target.
// An empty string is also valid (no LLM-specific optimizations).
var validTargets = map[string]bool{
	"claude":  true,
	"chatgpt": true,
	"generic": true,
	"":        true,
}

// validSelections lists the only accepted values for Profile.Selection.
var validSelections = map[string]bool{
	"all":     true,
	"scoring": true,
	"":        true,
}

// validNERMethods lists the only accepted values for
// SummarizationOptions.NER.Method.
var validNERMethods = map[string]bool{
	"regex":       true,
	"syntax_tree": true,
	"ml":          true,
	"hybrid":      true,
	"":            true,
}

// maxOutputBytesHardCap is the absolute upper limit for Profile.MaxOutputBytes.
// Values above this are almost certainly a configuration mistake.
const maxOutputBytesHardCap int64 = 1 << 30 // 1 GiB

// maxOutputBytesSoftCap triggers a warning when Profile.MaxOutputBytes
// exceeds it, because unusually large budgets are a common misconfiguration.
const maxOutputBytesSoftCap int64 = 256 * 1024 * 1024 // 256 MiB

// maxInheritanceWarningDepth is the chain length above which validation emits
// a warning about deep inheritance (mirrors the resolver constant).
const maxInheritanceWarningDepth = 3

// Validate inspects every profile in cfg and returns a slice of
// ValidationErrors describing hard errors and warnings found in the
// configuration. It does not stop at the first error; all profiles are
// checked and all findings are accumulated before returning.
//
// The returned slice is nil when no issues are found. Each element carries
// a Severity field of either "error" or "warning".
//
// Validate does not modify cfg.
func Validate(cfg *Config) []ValidationError {
	if cfg == nil {
		return nil
	}

	var results []ValidationError

	for name, profile := range cfg.Profile {
		if profile == nil {
			continue
		}
		errs := validateProfile(name, profile, cfg.Profile)
		results = append(results, errs...)
	}

	if len(results) > 0 {
		slog.Debug("config validation complete",
			"total_issues", len(results),
		)
	}

	return results
}

// validateProfile checks a single named profile and returns all validation
// errors and warnings for that profile.
func validateProfile(name string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	var results []ValidationError

	field := func(f string) string {
		return fmt.Sprintf("profile.%s.%s", name, f)
	}

	// ── Hard errors ────────────────────────────────────────────────────────

	if !validFormats[p.Format] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("format"),
			Message:  fmt.Sprintf("format %q is invalid", p.Format),
			Suggest:  "Valid formats: plain, markdown, xml, claude_xml",
		})
	}

	if !validTokenEncodings[p.TokenEncoding] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("token_encoding"),
			Message:  fmt.Sprintf("token_encoding %q is invalid", p.TokenEncoding),
			Suggest:  "Valid encodings: cl100k_base, p50k_base, p50k_edit, r50k_base, o200k_base",
		})
	}

	if !validTargets[p.Target] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("target"),
			Message:  fmt.Sprintf("target %q is invalid", p.Target),
			Suggest:  "Valid targets: claude, chatgpt, generic (or leave empty)",
		})
	}

	if !validSelections[p.Selection] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("selection"),
			Message:  fmt.Sprintf("selection %q is invalid", p.Selection),
			Suggest:  "Valid selections: all, scoring",
		})
	}

	if !validNERMethods[p.Summarization.NER.Method] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("summarization.ner.method"),
			Message:  fmt.Sprintf("ner method %q is invalid", p.Summarization.NER.Method),
			Suggest:  "Valid methods: regex, syntax_tree, ml, hybrid",
		})
	}

	if p.MaxOutputBytes < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("max_output_bytes"),
			Message:  fmt.Sprintf("max_output_bytes %d is negative", p.MaxOutputBytes),
			Suggest:  "Set max_output_bytes to a positive integer or remove it to use the default",
		})
	}
	if p.MaxOutputBytes > maxOutputBytesHardCap {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("max_output_bytes"),
			Message:  fmt.Sprintf("max_output_bytes %d exceeds the maximum allowed value of %d", p.MaxOutputBytes, maxOutputBytesHardCap),
			Suggest:  fmt.Sprintf("Reduce max_output_bytes to at most %d", maxOutputBytesHardCap),
		})
	}

	if p.RunDeadlineSeconds < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("run_deadline_seconds"),
			Message:  fmt.Sprintf("run_deadline_seconds %d is negative", p.RunDeadlineSeconds),
			Suggest:  "Set run_deadline_seconds to a positive integer or remove it to use the default",
		})
	}

	if p.WorkerCount < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("worker_count"),
			Message:  fmt.Sprintf("worker_count %d is negative", p.WorkerCount),
			Suggest:  "Set worker_count to a positive integer or 0 to use the logical CPU count",
		})
	}

	if p.Scoring.InclusionThreshold < 0 || p.Scoring.InclusionThreshold > 1 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("scoring.inclusion_threshold"),
			Message:  fmt.Sprintf("scoring.inclusion_threshold %g is outside [0, 1]", p.Scoring.InclusionThreshold),
			Suggest:  "Set inclusion_threshold to a value between 0 and 1",
		})
	}

	results = append(results, validateWeight(name, "weight_root", p.Scoring.WeightRoot)...)
	results = append(results, validateWeight(name, "weight_top_dir", p.Scoring.WeightTopDir)...)
	results = append(results, validateWeight(name, "weight_entry_point", p.Scoring.WeightEntryPoint)...)
	results = append(results, validateWeight(name, "weight_graph", p.Scoring.WeightGraph)...)
	results = append(results, validateWeight(name, "weight_type_source", p.Scoring.WeightTypeSource)...)
	results = append(results, validateWeight(name, "weight_type_config", p.Scoring.WeightTypeConfig)...)
	results = append(results, validateWeight(name, "weight_type_docs", p.Scoring.WeightTypeDocs)...)
	results = append(results, validateWeight(name, "weight_type_test", p.Scoring.WeightTypeTest)...)
	results = append(results, validateWeight(name, "weight_recency", p.Scoring.WeightRecency)...)
	results = append(results, validateWeight(name, "weight_size_inv", p.Scoring.WeightSizeInv)...)
	results = append(results, validateWeight(name, "weight_density", p.Scoring.WeightDensity)...)

	// glob pattern validity
	results = append(results, validateGlobPatterns(name, p)...)

	// circular inheritance
	if p.Extends != nil && *p.Extends != "" {
		if _, err := ResolveProfile(name, allProfiles); err != nil {
			if strings.Contains(err.Error(), "circular") {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    field("extends"),
					Message:  err.Error(),
					Suggest:  "Remove or restructure the extends chain to eliminate the cycle",
				})
			} else {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    field("extends"),
					Message:  fmt.Sprintf("extends %q: %s", *p.Extends, err.Error()),
					Suggest:  fmt.Sprintf("Define a profile named %q or update the extends value", *p.Extends),
				})
			}
		}
	}

	// ── Warnings ───────────────────────────────────────────────────────────

	results = append(results, warnOverlappingTypeClassifiers(name, p)...)
	results = append(results, warnWeightSum(name, p)...)
	results = append(results, warnDeepInheritance(name, p, allProfiles)...)

	if p.MaxOutputBytes > maxOutputBytesSoftCap && p.MaxOutputBytes <= maxOutputBytesHardCap {
		results = append(results, ValidationError{
			Severity: "warning",
			Field:    field("max_output_bytes"),
			Message:  fmt.Sprintf("max_output_bytes %d is unusually large", p.MaxOutputBytes),
			Suggest:  fmt.Sprintf("Values above %d may cause memory pressure; verify this is intentional", maxOutputBytesSoftCap),
		})
	}

	if p.Summarization.NER.Enabled && p.Summarization.NER.Method == "ml" && p.Summarization.NER.MLModelPath == "" {
		results = append(results, ValidationError{
			Severity: "warning",
			Field:    field("summarization.ner.ml_model_path"),
			Message:  "ner method is \"ml\" but ml_model_path is empty",
			Suggest:  "Set summarization.ner.ml_model_path to a wasm model, or switch method to \"regex\"",
		})
	}

	return results
}

// validateWeight emits an error for a scoring component weight outside [0,1].
func validateWeight(profileName, field string, value float64) []ValidationError {
	if value < 0 || value > 1 {
		return []ValidationError{{
			Severity: "error",
			Field:    fmt.Sprintf("profile.%s.scoring.%s", profileName, field),
			Message:  fmt.Sprintf("%s %g is outside [0, 1]", field, value),
			Suggest:  "Component weights must be between 0 and 1",
		}}
	}
	return nil
}

// validateGlobPatterns validates all glob pattern lists in the profile and
// returns errors for any invalid patterns.
func validateGlobPatterns(profileName string, p *Profile) []ValidationError {
	var results []ValidationError

	field := func(f string) string {
		return fmt.Sprintf("profile.%s.%s", profileName, f)
	}

	type patternList struct {
		fieldPath string
		patterns  []string
	}

	lists := []patternList{
		{field("include"), p.Include},
		{field("exclude"), p.Exclude},
		{field("scoring.important_files"), p.Scoring.ImportantFiles},
		{field("scoring.important_dirs"), p.Scoring.ImportantDirs},
		{field("scoring.source_extensions"), p.Scoring.SourceExtensions},
		{field("scoring.config_extensions"), p.Scoring.ConfigExtensions},
		{field("scoring.docs_extensions"), p.Scoring.DocsExtensions},
		{field("scoring.test_patterns"), p.Scoring.TestPatterns},
	}

	for _, list := range lists {
		for i, pattern := range list.patterns {
			if err := validateGlobPattern(pattern); err != nil {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    fmt.Sprintf("%s[%d]", list.fieldPath, i),
					Message:  fmt.Sprintf("invalid glob pattern %q: %s", pattern, err.Error()),
					Suggest:  "Use doublestar glob syntax, e.g. \"**/*.go\" or \"src/**\"",
				})
			}
		}
	}

	return results
}

// validateGlobPattern checks whether pattern is syntactically valid according
// to the doublestar library. It uses doublestar.ValidatePattern which returns
// false for malformed patterns (e.g. unclosed character classes or alternations).
func validateGlobPattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("syntax error in pattern %q", pattern)
	}
	return nil
}

// warnOverlappingTypeClassifiers returns warnings for glob patterns that
// appear identically in more than one file-type classification list.
// SourceExtensions is checked before ConfigExtensions, then DocsExtensions,
// then TestPatterns, so a pattern duplicated in a later list is unreachable.
func warnOverlappingTypeClassifiers(profileName string, p *Profile) []ValidationError {
	lists := []struct {
		name     string
		patterns []string
	}{
		{"source_extensions", p.Scoring.SourceExtensions},
		{"config_extensions", p.Scoring.ConfigExtensions},
		{"docs_extensions", p.Scoring.DocsExtensions},
		{"test_patterns", p.Scoring.TestPatterns},
	}

	seen := make(map[string]string) // pattern -> list name
	var results []ValidationError

	for _, list := range lists {
		for _, pattern := range list.patterns {
			if firstList, exists := seen[pattern]; exists {
				results = append(results, ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("profile.%s.scoring.%s", profileName, list.name),
					Message: fmt.Sprintf(
						"pattern %q also appears in %s; since %s is checked first, this entry is unreachable",
						pattern, firstList, firstList,
					),
					Suggest: fmt.Sprintf("Remove the duplicate pattern from %s", list.name),
				})
			} else {
				seen[pattern] = list.name
			}
		}
	}

	return results
}

// warnWeightSum warns when the sum of all scoring component weights deviates
// substantially from 1.0, which usually indicates the weights were not
// normalized after editing.
func warnWeightSum(profileName string, p *Profile) []ValidationError {
	s := p.Scoring
	sum := s.WeightRoot + s.WeightTopDir + s.WeightEntryPoint + s.WeightGraph +
		s.WeightTypeSource + s.WeightTypeConfig + s.WeightTypeDocs + s.WeightTypeTest +
		s.WeightRecency + s.WeightSizeInv + s.WeightDensity

	if sum == 0 {
		return nil
	}
	if sum > 0.8 && sum < 1.2 {
		return nil
	}

	return []ValidationError{{
		Severity: "warning",
		Field:    fmt.Sprintf("profile.%s.scoring", profileName),
		Message:  fmt.Sprintf("scoring component weights sum to %.2f, not 1.0", sum),
		Suggest:  "Scores are easiest to reason about when component weights sum to 1.0",
	}}
}

// warnDeepInheritance returns a warning when the inheritance chain for the
// profile exceeds maxInheritanceWarningDepth levels.
func warnDeepInheritance(profileName string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	if p.Extends == nil || *p.Extends == "" {
		return nil
	}

	resolution, err := ResolveProfile(profileName, allProfiles)
	if err != nil {
		// Errors are already reported elsewhere (e.g. circular inheritance).
		return nil
	}

	depth := len(resolution.Chain)
	if depth <= maxInheritanceWarningDepth {
		return nil
	}

	return []ValidationError{
		{
			Severity: "warning",
			Field:    fmt.Sprintf("profile.%s.extends", profileName),
			Message: fmt.Sprintf(
				"inheritance chain is %d levels deep (%s)",
				depth,
				strings.Join(resolution.Chain, " -> "),
			),
			Suggest: "Flatten the inheritance chain to 3 levels or fewer for maintainability",
		},
	}
}

// Lint runs all Validate checks and additionally performs deeper static
// analysis of the configuration. It returns a slice of LintResult values that
// embed ValidationError for unified severity/field/message access.
//
// Lint-only checks include:
//   - No-extension patterns: type-classification patterns that have no
//     file-extension suffix, meaning they match any file name regardless of
//     type.
//   - Complexity score: profiles with many non-default fields set are
//     flagged to encourage splitting into focused sub-profiles.
//
// The returned slice is nil when no issues are found.
func Lint(cfg *Config) []LintResult {
	if cfg == nil {
		return nil
	}

	var results []LintResult

	for _, ve := range Validate(cfg) {
		results = append(results, LintResult{ValidationError: ve})
	}

	for name, profile := range cfg.Profile {
		if profile == nil {
			continue
		}
		results = append(results, lintProfile(name, profile)...)
	}

	return results
}

// lintProfile performs the deeper lint-only analysis for a single profile.
func lintProfile(profileName string, p *Profile) []LintResult {
	var results []LintResult

	results = append(results, lintNoExtPatterns(profileName, p)...)
	results = append(results, lintComplexity(profileName, p)...)

	return results
}

// lintNoExtPatterns detects type-classification patterns that do not contain
// any file-extension-like suffix (no dot after the last path separator or
// wildcard). Such patterns match files of any type, which may be
// unintentional.
func lintNoExtPatterns(profileName string, p *Profile) []LintResult {
	lists := []struct {
		name     string
		patterns []string
	}{
		{"source_extensions", p.Scoring.SourceExtensions},
		{"config_extensions", p.Scoring.ConfigExtensions},
		{"docs_extensions", p.Scoring.DocsExtensions},
	}

	var results []LintResult

	for _, list := range lists {
		for i, pattern := range list.patterns {
			if !patternHasExtension(pattern) {
				results = append(results, LintResult{
					ValidationError: ValidationError{
						Severity: "warning",
						Field:    fmt.Sprintf("profile.%s.scoring.%s[%d]", profileName, list.name, i),
						Message:  fmt.Sprintf("pattern %q has no file extension; it will match files of any type", pattern),
						Suggest:  "Add an extension suffix (e.g. \"**/*.go\") unless matching all file types is intentional",
					},
					Code: "no-ext-match",
				})
			}
		}
	}

	return results
}

// patternHasExtension reports whether pattern contains a dot after the last
// path separator or wildcard segment, indicating it matches a specific file
// extension. This is a heuristic, not a precise check.
func patternHasExtension(pattern string) bool {
	last := pattern
	if idx := strings.LastIndex(pattern, "/"); idx >= 0 {
		last = pattern[idx+1:]
	}
	dotIdx := strings.LastIndex(last, ".")
	if dotIdx < 0 {
		return false
	}
	if dotIdx == 0 && !strings.Contains(last[1:], ".") {
		return false
	}
	return true
}

// complexityThreshold is the number of non-default fields above which a
// profile is considered overly complex.
const complexityThreshold = 8

// lintComplexity computes the number of non-zero/non-empty fields in a profile
// and emits a warning when the count exceeds complexityThreshold.
func lintComplexity(profileName string, p *Profile) []LintResult {
	score := profileComplexityScore(p)
	if score <= complexityThreshold {
		return nil
	}

	return []LintResult{
		{
			ValidationError: ValidationError{
				Severity: "warning",
				Field:    fmt.Sprintf("profile.%s", profileName),
				Message:  fmt.Sprintf("profile has a complexity score of %d (threshold: %d)", score, complexityThreshold),
				Suggest:  "Consider splitting into multiple profiles connected via extends to improve maintainability",
			},
			Code: "complexity",
		},
	}
}

// profileComplexityScore counts the number of non-empty / non-zero fields in
// the profile. Scalar fields each count as 1; each non-empty slice counts as 1.
func profileComplexityScore(p *Profile) int {
	score := 0

	if p.Output != "" {
		score++
	}
	if p.Format != "" {
		score++
	}
	if p.Target != "" {
		score++
	}
	if p.WorkerCount != 0 {
		score++
	}
	if p.Verbose {
		score++
	}
	if p.ShowTiming {
		score++
	}
	if len(p.Include) > 0 {
		score++
	}
	if len(p.Exclude) > 0 {
		score++
	}
	if p.Selection != "" {
		score++
	}
	if p.CountTokens {
		score++
	}
	if p.TokenEncoding != "" {
		score++
	}
	if p.TokensOnly {
		score++
	}
	if p.RunDeadlineSeconds != 0 {
		score++
	}
	if p.MaxOutputBytes != 0 {
		score++
	}
	if len(p.Scoring.ImportantFiles) > 0 {
		score++
	}
	if len(p.Scoring.ImportantDirs) > 0 {
		score++
	}
	if len(p.Scoring.SourceExtensions) > 0 {
		score++
	}
	if len(p.Scoring.ConfigExtensions) > 0 {
		score++
	}
	if len(p.Scoring.DocsExtensions) > 0 {
		score++
	}
	if len(p.Scoring.TestPatterns) > 0 {
		score++
	}
	if p.Scoring.UseSyntaxTree {
		score++
	}
	if p.Summarization.Enabled {
		score++
	}
	if p.Summarization.NER.Enabled {
		score++
	}

	return score
}
