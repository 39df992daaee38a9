package config

// Config is the top-level configuration type parsed from a ctxpack.toml
// file. It holds a map of named profiles keyed by profile name. Profile
// names are case-sensitive. The special name "default" is the built-in
// fallback profile.
type Config struct {
	// Profile maps profile names to their configuration. Access via
	// cfg.Profile["default"] or cfg.Profile["ci"].
	Profile map[string]*Profile `toml:"profile"`
}

// Profile defines all settings for a single named profile. Fields with zero
// values are considered unset and will be filled in by the merge/inheritance
// pipeline. The Extends field enables profile inheritance.
type Profile struct {
	// Extends is the name of a parent profile to inherit from. A nil
	// pointer means no inheritance.
	Extends *string `toml:"extends"`

	// Output is the file path for the generated context document.
	Output string `toml:"output"`

	// Format controls the output format: "plain", "markdown", "xml", or
	// "claude_xml".
	Format string `toml:"format"`

	// Target selects LLM-specific output optimizations: "claude",
	// "chatgpt", "generic", or empty string for no preset.
	Target string `toml:"target"`

	// WorkerCount is the size of the parallel file-reading pool. Zero
	// means "use logical CPU count".
	WorkerCount int `toml:"worker_count"`

	// Verbose emits one log line per orchestrator state transition.
	Verbose bool `toml:"verbose"`

	// ShowTiming records elapsed milliseconds per orchestrator phase.
	ShowTiming bool `toml:"show_timing"`

	// Include is the list of include glob patterns. Empty means every
	// non-ignored file is included.
	Include []string `toml:"include"`

	// Exclude is the list of additional ignore glob patterns layered on
	// top of the default ignore set and any .gitignore/.ctxpackignore
	// files.
	Exclude []string `toml:"exclude"`

	// Selection is the file-selection strategy: "all" or "scoring".
	Selection string `toml:"selection"`

	// CountTokens enables tokenization of the packed file contents (counted
	// per file before rendering and summed).
	CountTokens bool `toml:"count_tokens"`

	// TokenEncoding names the byte-pair vocabulary used to count tokens:
	// "cl100k_base", "p50k_base", "p50k_edit", "r50k_base", or
	// "o200k_base".
	TokenEncoding string `toml:"token_encoding"`

	// TokensOnly empties every file body in the output. The document is
	// still written: paths, the tree, per-file headers and the summary with
	// the token count remain.
	TokensOnly bool `toml:"tokens_only"`

	// RunDeadlineSeconds bounds the whole run; zero means the built-in
	// default (120s).
	RunDeadlineSeconds int `toml:"run_deadline_seconds"`

	// MaxOutputBytes bounds the rendered artifact's content size; zero
	// means the built-in default (64 MiB).
	MaxOutputBytes int64 `toml:"max_output_bytes"`

	// Scoring holds FileScorer weights and thresholds.
	Scoring ScoringConfig `toml:"scoring"`

	// Summarization holds Summarizer and NER options.
	Summarization SummarizationOptions `toml:"summarization"`
}

// ScoringConfig holds the FileScorer's component weights (each in [0,1]),
// thresholds, and pattern lists.
type ScoringConfig struct {
	WeightRoot       float64 `toml:"weight_root"`
	WeightTopDir     float64 `toml:"weight_top_dir"`
	WeightEntryPoint float64 `toml:"weight_entry_point"`
	WeightGraph      float64 `toml:"weight_graph"`
	WeightTypeSource float64 `toml:"weight_type_source"`
	WeightTypeConfig float64 `toml:"weight_type_config"`
	WeightTypeDocs   float64 `toml:"weight_type_docs"`
	WeightTypeTest   float64 `toml:"weight_type_test"`
	WeightRecency    float64 `toml:"weight_recency"`
	WeightSizeInv    float64 `toml:"weight_size_inv"`
	WeightDensity    float64 `toml:"weight_density"`

	// RecentWindowDays sizes the recency component's decay window.
	RecentWindowDays int `toml:"recent_window_days"`
	// LargeFileThresholdBytes is the size above which size_inv decays
	// below 1.0.
	LargeFileThresholdBytes int64 `toml:"large_file_threshold_bytes"`
	// InclusionThreshold is the minimum score for Selection=scoring to
	// include a file.
	InclusionThreshold float64 `toml:"inclusion_threshold"`

	// ImportantFiles matches root-level files for structure.root.
	ImportantFiles []string `toml:"important_files"`
	// ImportantDirs matches top-level directories for structure.top_dir.
	ImportantDirs []string `toml:"important_dirs"`
	// SourceExtensions, ConfigExtensions, DocsExtensions classify a file's
	// type component; the first list whose pattern matches wins, in that
	// order, then TestPatterns.
	SourceExtensions []string `toml:"source_extensions"`
	ConfigExtensions []string `toml:"config_extensions"`
	DocsExtensions   []string `toml:"docs_extensions"`
	TestPatterns     []string `toml:"test_patterns"`

	// UseSyntaxTree enables syntax-tree-based import extraction for the
	// dependency graph component instead of plain regex.
	UseSyntaxTree bool `toml:"use_syntax_tree"`
}

// SummarizationOptions controls the Summarizer.
type SummarizationOptions struct {
	Enabled bool `toml:"enabled"`

	FirstNLines int  `toml:"first_n_lines"`
	Signatures  bool `toml:"signatures"`
	Docstrings  bool `toml:"docstrings"`

	Snippets      bool `toml:"snippets"`
	SnippetsCount int  `toml:"snippets_count"`

	ReadmePassthrough bool `toml:"readme_passthrough"`
	UseSyntaxTree     bool `toml:"use_syntax_tree"`

	// FileSizeThresholdBytes: files smaller than this are never
	// summarized.
	FileSizeThresholdBytes int64 `toml:"file_size_threshold_bytes"`
	// MaxSummaryLines is the hard cap on assembled summary length.
	MaxSummaryLines int `toml:"max_summary_lines"`

	NER NEROptions `toml:"ner"`
}

// NEROptions controls named-entity extraction within a summary.
type NEROptions struct {
	Enabled bool `toml:"enabled"`
	// Method selects the backend: "regex", "syntax_tree", "ml", or
	// "hybrid".
	Method string `toml:"method"`

	IncludeClasses   bool `toml:"include_classes"`
	IncludeFunctions bool `toml:"include_functions"`
	IncludeVariables bool `toml:"include_variables"`
	IncludeEnums     bool `toml:"include_enums"`
	IncludeImports   bool `toml:"include_imports"`

	MaxEntities int  `toml:"max_entities"`
	GroupByKind bool `toml:"group_by_kind"`

	MLModelPath      string  `toml:"ml_model_path"`
	MLSizeThresholdBytes int64 `toml:"ml_size_threshold_bytes"`
	MLConfidence     float64 `toml:"ml_confidence"`
	MLTimeBudgetMS   int     `toml:"ml_time_budget_ms"`

	CacheEnabled bool `toml:"cache_enabled"`
}
