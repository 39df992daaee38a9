package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output file path when --output is not specified.
const DefaultOutput = "ctxpack-output.md"

// DefaultSkipLargeFiles is the default file size threshold (1MB) above which
// files are skipped during discovery, independent of the scoring
// LargeFileThresholdBytes component which merely down-weights large files.
const DefaultSkipLargeFiles int64 = 1 * 1024 * 1024

// FlagValues collects all parsed global flag values from the CLI. This struct
// is populated by BindFlags and passed to downstream pipeline stages. Fields
// that mirror a Profile field (format, include/exclude, selection, scoring,
// summarization knobs) are merged over the resolved profile by
// config.Resolve's CLI-flags layer; see internal/config/resolver.go.
type FlagValues struct {
	// Dir is the repository root to scan.
	Dir string
	// Output is the path the rendered artifact is written to (--output).
	Output string
	// Filters is the legacy -f extension shorthand, folded into Includes.
	Filters []string
	// Includes / Excludes are glob lists (--include/--exclude, repeatable).
	Includes []string
	Excludes []string

	// Format selects the renderer: plain, markdown, xml, claude_xml.
	Format string
	// Target selects an LLM-specific preset (claude, chatgpt, generic).
	Target string

	// Threads is the FileReader worker pool size; 0 means runtime.NumCPU().
	Threads int
	// Verbose logs one line per orchestrator state transition.
	Verbose bool
	// ShowTiming records elapsed ms per orchestrator phase.
	ShowTiming bool

	// CountTokens enables the Tokenizer adapter on the packed file contents.
	CountTokens bool
	// TokenEncoding names the byte-pair vocabulary (cl100k_base, ...).
	TokenEncoding string
	// TokensOnly empties file bodies in the output; the token count is kept.
	TokensOnly bool

	// Selection is "all" or "scoring".
	Selection string
	// InclusionThreshold overrides ScoringConfig.InclusionThreshold when > 0.
	InclusionThreshold float64

	// Summarize enables the Summarizer (SummarizationOptions.Enabled).
	Summarize bool
	// SummarizeFirstN overrides SummarizationOptions.FirstNLines when > 0.
	SummarizeFirstN int
	// SummarizeMaxLines overrides SummarizationOptions.MaxSummaryLines when > 0.
	SummarizeMaxLines int
	// NERMethod overrides NEROptions.Method (regex, syntax_tree, ml, hybrid).
	NERMethod string

	// Watch starts the optional bubbletea TUI progress watcher.
	Watch bool

	// GitTrackedOnly restricts discovery to git-tracked files.
	GitTrackedOnly bool
	// SkipLargeFiles is the file size threshold in bytes above which files
	// are skipped outright during enumeration.
	SkipLargeFiles int64
	// Stdout writes the rendered artifact to stdout instead of Output.
	Stdout bool
	// LineNumbers adds line numbers to rendered code blocks.
	LineNumbers bool

	// Tokenizer is an alias for TokenEncoding read by the preview/heatmap
	// reports, which can run independently of a full render.
	Tokenizer string
	// MaxTokens is an optional budget used only to flag over-budget files
	// in `ctxpack preview`; it has no effect on generate's output.
	MaxTokens int
	// TruncationStrategy selects how `ctxpack preview`'s BudgetEnforcer
	// handles files that would exceed MaxTokens: "skip" or "truncate".
	TruncationStrategy string
	// Heatmap shows per-file token density instead of a flat report.
	Heatmap bool
	// TopFiles limits `ctxpack preview --top-files N` to the largest N files.
	TopFiles int

	// ProfileName selects a named profile (--profile).
	ProfileName string
	// ProfileFile points at a standalone profile TOML file (--profile-file).
	ProfileFile string

	Quiet      bool
	Yes        bool
	ClearCache bool
}

// BindFlags registers all global persistent flags on the given Cobra command
// and returns a FlagValues pointer that will be populated when the command is
// executed. Callers should access the returned struct after flag parsing.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&fv.Dir, "dir", "d", ".", "target directory to scan (spec: --input)")
	pf.StringVarP(&fv.Output, "output", "o", DefaultOutput, "output file path")
	pf.StringArrayVarP(&fv.Filters, "filter", "f", nil, "filter by file extension (repeatable, e.g. -f ts -f go)")
	pf.StringArrayVar(&fv.Includes, "include", nil, "include glob pattern (repeatable)")
	pf.StringArrayVar(&fv.Excludes, "exclude", nil, "exclude glob pattern (repeatable)")
	pf.StringVar(&fv.Format, "format", "plain", "output format: plain, markdown, xml, claude_xml")
	pf.StringVar(&fv.Target, "target", "generic", "LLM target: claude, chatgpt, generic")

	pf.IntVar(&fv.Threads, "threads", 0, "worker pool size (0 = logical CPU count)")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging and phase transition logs")
	pf.BoolVar(&fv.ShowTiming, "timing", false, "record elapsed ms per orchestrator phase")

	pf.BoolVar(&fv.CountTokens, "count-tokens", false, "count tokens in the packed file contents")
	pf.StringVar(&fv.TokenEncoding, "token-encoding", "cl100k_base", "tokenizer encoding: cl100k_base, p50k_base, p50k_edit, r50k_base, o200k_base")
	pf.BoolVar(&fv.TokensOnly, "tokens-only", false, "empty file bodies in the output; keep the token count")
	pf.BoolVar(&fv.CountTokens, "token-count", false, "alias for --count-tokens")

	pf.StringVar(&fv.Tokenizer, "tokenizer", "", "tokenizer encoding for preview/heatmap reports (defaults to --token-encoding)")
	pf.IntVar(&fv.MaxTokens, "max-tokens", 0, "token budget for `ctxpack preview` (0 = unlimited)")
	pf.StringVar(&fv.TruncationStrategy, "truncation-strategy", "skip", "budget enforcement strategy for preview: skip, truncate")
	pf.IntVar(&fv.TopFiles, "top-files", 0, "limit preview to the N largest files by token count (0 = show all)")

	pf.StringVar(&fv.Selection, "selection", "all", "file selection strategy: all, scoring")
	pf.Float64Var(&fv.InclusionThreshold, "inclusion-threshold", 0, "minimum score for selection=scoring to include a file (0 = use profile default)")

	pf.BoolVar(&fv.Summarize, "summarize", false, "enable the summarizer for large files")
	pf.IntVar(&fv.SummarizeFirstN, "summarize-first-n", 0, "first-N verbatim lines in a summary (0 = use profile default)")
	pf.IntVar(&fv.SummarizeMaxLines, "summarize-max-lines", 0, "hard cap on assembled summary lines (0 = use profile default)")
	pf.StringVar(&fv.NERMethod, "ner-method", "", "named-entity extraction backend: regex, syntax_tree, ml, hybrid")

	pf.BoolVar(&fv.Watch, "watch", false, "show an interactive TUI progress watcher")

	pf.BoolVar(&fv.GitTrackedOnly, "git-tracked-only", false, "only include files in git index")
	pf.StringVar(&skipLargeFilesRaw, "skip-large-files", "1MB", "skip files larger than threshold (e.g. 500KB, 2MB)")
	pf.BoolVar(&fv.Stdout, "stdout", false, "output to stdout instead of file")
	pf.BoolVar(&fv.LineNumbers, "line-numbers", false, "add line numbers to code blocks")

	pf.StringVar(&fv.ProfileName, "profile", "", `named profile to activate (default: "default" or $CTXPACK_PROFILE)`)
	pf.StringVar(&fv.ProfileFile, "profile-file", "", "standalone profile TOML file, bypassing repo ctxpack.toml")

	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVar(&fv.Yes, "yes", false, "skip confirmation prompts")
	pf.BoolVar(&fv.ClearCache, "clear-cache", false, "clear cached state before running")

	return fv
}

// skipLargeFilesRaw holds the raw string value for --skip-large-files before
// parsing. This is a package-level variable because Cobra needs a string target
// for binding, and we parse it into FlagValues.SkipLargeFiles during validation.
var skipLargeFilesRaw string

// ValidateFlags checks the parsed flag values for correctness and mutual
// exclusion. It also applies environment variable fallbacks and normalizes
// values. Call this from PersistentPreRunE after Cobra has parsed the flags.
func ValidateFlags(fv *FlagValues, cmd *cobra.Command) error {
	applyEnvOverrides(fv, cmd)

	if fv.Verbose && fv.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	info, err := os.Stat(fv.Dir)
	if err != nil {
		return fmt.Errorf("--dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("--dir: %s is not a directory", fv.Dir)
	}

	switch fv.Format {
	case "plain", "markdown", "xml", "claude_xml":
	default:
		return fmt.Errorf("--format: invalid value %q (allowed: plain, markdown, xml, claude_xml)", fv.Format)
	}

	switch fv.Target {
	case "claude", "chatgpt", "generic":
	default:
		return fmt.Errorf("--target: invalid value %q (allowed: claude, chatgpt, generic)", fv.Target)
	}

	switch fv.Selection {
	case "all", "scoring":
	default:
		return fmt.Errorf("--selection: invalid value %q (allowed: all, scoring)", fv.Selection)
	}

	if fv.TokensOnly {
		fv.CountTokens = true
	}

	size, err := ParseSize(skipLargeFilesRaw)
	if err != nil {
		return fmt.Errorf("--skip-large-files: %w", err)
	}
	fv.SkipLargeFiles = size

	for i, f := range fv.Filters {
		fv.Filters[i] = strings.TrimLeft(f, ".")
	}
	for _, f := range fv.Filters {
		fv.Includes = append(fv.Includes, "*."+f)
	}

	if fv.Tokenizer == "" {
		fv.Tokenizer = fv.TokenEncoding
	}
	switch fv.Tokenizer {
	case "cl100k_base", "o200k_base", "p50k_base", "p50k_edit", "r50k_base", "none":
	default:
		return fmt.Errorf("--tokenizer: invalid value %q (allowed: cl100k_base, o200k_base, p50k_base, p50k_edit, r50k_base, none)", fv.Tokenizer)
	}

	switch fv.TruncationStrategy {
	case "skip", "truncate":
	default:
		return fmt.Errorf("--truncation-strategy: invalid value %q (allowed: skip, truncate)", fv.TruncationStrategy)
	}

	return nil
}

// applyEnvOverrides applies environment variable fallbacks for flags that were
// not explicitly set on the command line. The prefix is CTXPACK_.
func applyEnvOverrides(fv *FlagValues, cmd *cobra.Command) {
	envMap := map[string]func(string){
		"CTXPACK_DIR":            func(v string) { fv.Dir = v },
		"CTXPACK_OUTPUT":         func(v string) { fv.Output = v },
		"CTXPACK_FORMAT":         func(v string) { fv.Format = v },
		"CTXPACK_TARGET":         func(v string) { fv.Target = v },
		"CTXPACK_SELECTION":      func(v string) { fv.Selection = v },
		"CTXPACK_TOKEN_ENCODING": func(v string) { fv.TokenEncoding = v },
		"CTXPACK_PROFILE":        func(v string) { fv.ProfileName = v },
	}

	for env, setter := range envMap {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		flagName := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(env, "CTXPACK_")), "_", "-")
		if !cmd.Flags().Changed(flagName) {
			setter(v)
		}
	}

	if os.Getenv("CTXPACK_VERBOSE") == "1" && !cmd.Flags().Changed("verbose") {
		fv.Verbose = true
	}
	if os.Getenv("CTXPACK_QUIET") == "1" && !cmd.Flags().Changed("quiet") {
		fv.Quiet = true
	}
	if os.Getenv("CTXPACK_COUNT_TOKENS") == "1" && !cmd.Flags().Changed("count-tokens") {
		fv.CountTokens = true
	}
	if v := os.Getenv("CTXPACK_WORKERS"); v != "" && !cmd.Flags().Changed("threads") {
		if n, err := strconv.Atoi(v); err == nil {
			fv.Threads = n
		}
	}
}

// ParseSize parses a human-readable size string into bytes. It supports KB, MB,
// and GB suffixes (case-insensitive). Plain numbers without a suffix are treated
// as bytes. KB = 1024, MB = 1048576, GB = 1073741824.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)

	var suffix string
	var multiplier int64

	switch {
	case strings.HasSuffix(upper, "GB"):
		suffix = "GB"
		multiplier = 1024 * 1024 * 1024
	case strings.HasSuffix(upper, "MB"):
		suffix = "MB"
		multiplier = 1024 * 1024
	case strings.HasSuffix(upper, "KB"):
		suffix = "KB"
		multiplier = 1024
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return n, nil
	}

	numStr := strings.TrimSpace(s[:len(s)-len(suffix)])
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(numStr, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if f < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return int64(f * float64(multiplier)), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("size must be non-negative: %q", s)
	}
	return n * multiplier, nil
}
