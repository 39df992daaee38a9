package config

// DefaultProfile returns a new Profile populated with the built-in defaults.
// This profile is used as the base when no ctxpack.toml is present or when a
// named profile omits fields.
//
// Callers receive a fresh copy each time; mutating the returned value does
// not affect subsequent calls.
func DefaultProfile() *Profile {
	return &Profile{
		Output:             "ctxpack-output.txt",
		Format:             "plain",
		Target:             "",
		WorkerCount:        0,
		Verbose:            false,
		ShowTiming:         false,
		Include:            nil,
		Exclude:            nil,
		Selection:          "all",
		CountTokens:        false,
		TokenEncoding:      "cl100k_base",
		TokensOnly:         false,
		RunDeadlineSeconds: 120,
		MaxOutputBytes:     64 * 1024 * 1024,
		Scoring:            defaultScoringConfig(),
		Summarization:      defaultSummarizationOptions(),
	}
}

// defaultScoringConfig returns the built-in FileScorer weights, thresholds,
// and type/structure pattern lists.
func defaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		WeightRoot:       0.10,
		WeightTopDir:     0.08,
		WeightEntryPoint: 0.12,
		WeightGraph:      0.15,
		WeightTypeSource: 0.15,
		WeightTypeConfig: 0.05,
		WeightTypeDocs:   0.03,
		WeightTypeTest:   0.05,
		WeightRecency:    0.10,
		WeightSizeInv:    0.07,
		WeightDensity:    0.10,

		RecentWindowDays:        30,
		LargeFileThresholdBytes: 100 * 1024,
		InclusionThreshold:      0.3,

		ImportantFiles: []string{
			"README*", "go.mod", "go.sum", "package.json", "Cargo.toml",
			"pyproject.toml", "Makefile", "Dockerfile",
		},
		ImportantDirs: []string{
			"src", "lib", "app", "cmd", "internal", "pkg",
		},
		SourceExtensions: []string{
			"*.go", "*.py", "*.js", "*.jsx", "*.ts", "*.tsx", "*.rs",
			"*.java", "*.c", "*.h", "*.cpp", "*.hpp", "*.rb", "*.sh",
		},
		ConfigExtensions: []string{
			"*.toml", "*.yaml", "*.yml", "*.json", "*.ini", "*.cfg",
		},
		DocsExtensions: []string{
			"*.md", "*.rst", "*.txt",
		},
		TestPatterns: []string{
			"**/*_test.go", "**/*.test.*", "**/*.spec.*", "**/test_*.py",
			"**/tests/**", "**/__tests__/**",
		},
		UseSyntaxTree: false,
	}
}

// defaultSummarizationOptions returns the built-in Summarizer/NER defaults.
// Summarization is disabled by default; the run emits verbatim content
// unless a caller opts in.
func defaultSummarizationOptions() SummarizationOptions {
	return SummarizationOptions{
		Enabled:                false,
		FirstNLines:            20,
		Signatures:              true,
		Docstrings:              true,
		Snippets:                false,
		SnippetsCount:           3,
		ReadmePassthrough:       true,
		UseSyntaxTree:           false,
		FileSizeThresholdBytes:  4096,
		MaxSummaryLines:         80,
		NER: NEROptions{
			Enabled:          false,
			Method:           "regex",
			IncludeClasses:   true,
			IncludeFunctions: true,
			IncludeVariables: false,
			IncludeEnums:     true,
			IncludeImports:   false,
			MaxEntities:      50,
			GroupByKind:      true,
			MLSizeThresholdBytes: 8192,
			MLConfidence:     0.6,
			MLTimeBudgetMS:   200,
			CacheEnabled:     true,
		},
	}
}
