package config

// mergeProfile creates a new Profile by applying override on top of base.
// The merge rules are:
//   - String scalars: use override if non-empty; otherwise keep base.
//   - Int/int64/float64 scalars: use override if non-zero; otherwise keep base.
//   - Bool scalars: always use override (false is a valid override value).
//   - Slice fields: use override slice if it is non-nil and non-empty;
//     otherwise keep base slice.
//   - ScoringConfig/SummarizationOptions/NEROptions: merged field-by-field
//     with the same rules, recursively.
//
// Neither base nor override is mutated. A fresh Profile is always returned.
// The Extends field is always cleared on the returned profile.
func mergeProfile(base, override *Profile) *Profile {
	return &Profile{
		Output: mergeString(base.Output, override.Output),
		Format: mergeString(base.Format, override.Format),
		Target: mergeString(base.Target, override.Target),

		WorkerCount:        mergeInt(base.WorkerCount, override.WorkerCount),
		RunDeadlineSeconds: mergeInt(base.RunDeadlineSeconds, override.RunDeadlineSeconds),
		MaxOutputBytes:     mergeInt64(base.MaxOutputBytes, override.MaxOutputBytes),

		Verbose:    override.Verbose,
		ShowTiming: override.ShowTiming,

		Include: mergeSlice(base.Include, override.Include),
		Exclude: mergeSlice(base.Exclude, override.Exclude),

		Selection: mergeString(base.Selection, override.Selection),

		CountTokens:   override.CountTokens,
		TokenEncoding: mergeString(base.TokenEncoding, override.TokenEncoding),
		TokensOnly:    override.TokensOnly,

		Scoring:       mergeScoring(base.Scoring, override.Scoring),
		Summarization: mergeSummarization(base.Summarization, override.Summarization),

		Extends: nil,
	}
}

func mergeScoring(base, override ScoringConfig) ScoringConfig {
	return ScoringConfig{
		WeightRoot:       mergeFloat(base.WeightRoot, override.WeightRoot),
		WeightTopDir:     mergeFloat(base.WeightTopDir, override.WeightTopDir),
		WeightEntryPoint: mergeFloat(base.WeightEntryPoint, override.WeightEntryPoint),
		WeightGraph:      mergeFloat(base.WeightGraph, override.WeightGraph),
		WeightTypeSource: mergeFloat(base.WeightTypeSource, override.WeightTypeSource),
		WeightTypeConfig: mergeFloat(base.WeightTypeConfig, override.WeightTypeConfig),
		WeightTypeDocs:   mergeFloat(base.WeightTypeDocs, override.WeightTypeDocs),
		WeightTypeTest:   mergeFloat(base.WeightTypeTest, override.WeightTypeTest),
		WeightRecency:    mergeFloat(base.WeightRecency, override.WeightRecency),
		WeightSizeInv:    mergeFloat(base.WeightSizeInv, override.WeightSizeInv),
		WeightDensity:    mergeFloat(base.WeightDensity, override.WeightDensity),

		RecentWindowDays:        mergeInt(base.RecentWindowDays, override.RecentWindowDays),
		LargeFileThresholdBytes: mergeInt64(base.LargeFileThresholdBytes, override.LargeFileThresholdBytes),
		InclusionThreshold:      mergeFloat(base.InclusionThreshold, override.InclusionThreshold),

		ImportantFiles:   mergeSlice(base.ImportantFiles, override.ImportantFiles),
		ImportantDirs:    mergeSlice(base.ImportantDirs, override.ImportantDirs),
		SourceExtensions: mergeSlice(base.SourceExtensions, override.SourceExtensions),
		ConfigExtensions: mergeSlice(base.ConfigExtensions, override.ConfigExtensions),
		DocsExtensions:   mergeSlice(base.DocsExtensions, override.DocsExtensions),
		TestPatterns:     mergeSlice(base.TestPatterns, override.TestPatterns),

		UseSyntaxTree: override.UseSyntaxTree,
	}
}

func mergeSummarization(base, override SummarizationOptions) SummarizationOptions {
	return SummarizationOptions{
		Enabled:     override.Enabled,
		FirstNLines: mergeInt(base.FirstNLines, override.FirstNLines),
		Signatures:  override.Signatures,
		Docstrings:  override.Docstrings,

		Snippets:      override.Snippets,
		SnippetsCount: mergeInt(base.SnippetsCount, override.SnippetsCount),

		ReadmePassthrough: override.ReadmePassthrough,
		UseSyntaxTree:     override.UseSyntaxTree,

		FileSizeThresholdBytes: mergeInt64(base.FileSizeThresholdBytes, override.FileSizeThresholdBytes),
		MaxSummaryLines:        mergeInt(base.MaxSummaryLines, override.MaxSummaryLines),

		NER: mergeNER(base.NER, override.NER),
	}
}

func mergeNER(base, override NEROptions) NEROptions {
	return NEROptions{
		Enabled: override.Enabled,
		Method:  mergeString(base.Method, override.Method),

		IncludeClasses:   override.IncludeClasses,
		IncludeFunctions: override.IncludeFunctions,
		IncludeVariables: override.IncludeVariables,
		IncludeEnums:     override.IncludeEnums,
		IncludeImports:   override.IncludeImports,

		MaxEntities: mergeInt(base.MaxEntities, override.MaxEntities),
		GroupByKind: override.GroupByKind,

		MLModelPath:          mergeString(base.MLModelPath, override.MLModelPath),
		MLSizeThresholdBytes: mergeInt64(base.MLSizeThresholdBytes, override.MLSizeThresholdBytes),
		MLConfidence:         mergeFloat(base.MLConfidence, override.MLConfidence),
		MLTimeBudgetMS:       mergeInt(base.MLTimeBudgetMS, override.MLTimeBudgetMS),

		CacheEnabled: override.CacheEnabled,
	}
}

// mergeString returns override if non-empty, otherwise base.
func mergeString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

// mergeInt returns override if non-zero, otherwise base.
func mergeInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}

// mergeInt64 returns override if non-zero, otherwise base.
func mergeInt64(base, override int64) int64 {
	if override != 0 {
		return override
	}
	return base
}

// mergeFloat returns override if non-zero, otherwise base.
func mergeFloat(base, override float64) float64 {
	if override != 0 {
		return override
	}
	return base
}

// mergeSlice returns a copy of override if it is non-nil and non-empty,
// otherwise returns a copy of base. Copies are made at the boundary to
// prevent callers from sharing slice backing arrays.
func mergeSlice(base, override []string) []string {
	if len(override) > 0 {
		result := make([]string, len(override))
		copy(result, override)
		return result
	}
	if len(base) > 0 {
		result := make([]string, len(base))
		copy(result, base)
		return result
	}
	return nil
}
