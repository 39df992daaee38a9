// Package pipeline defines the central data types shared across every stage
// of a ctxpack run: discovery, filtering, scoring, content loading,
// summarization, tokenization, and rendering all operate on the same DTOs
// defined here. It intentionally holds no orchestration logic and imports
// none of the stage packages, since each of them imports pipeline for these
// types; the run state machine that wires them together lives in
// internal/orchestrator.
package pipeline

import "time"

// ExitCode represents the process exit code returned by the ctxpack CLI,
// matching the external CLI contract: 0 success, 1 usage error, 2 I/O
// error, 3 timeout, 4 cancelled.
type ExitCode int

const (
	// ExitSuccess indicates the run completed successfully.
	ExitSuccess ExitCode = 0
	// ExitUsage indicates a malformed or conflicting option set.
	ExitUsage ExitCode = 1
	// ExitIO indicates an unrecoverable I/O error (path not found,
	// permission denied, output write failure).
	ExitIO ExitCode = 2
	// ExitTimeout indicates the run deadline was exceeded.
	ExitTimeout ExitCode = 3
	// ExitCancelled indicates the run was cancelled externally.
	ExitCancelled ExitCode = 4
)

// OutputFormat specifies the format of the rendered context document.
type OutputFormat string

const (
	// FormatPlain renders the context document as delimited plain text.
	FormatPlain OutputFormat = "plain"
	// FormatMarkdown renders the context document as Markdown with fenced
	// code blocks.
	FormatMarkdown OutputFormat = "markdown"
	// FormatXML renders the context document as generic XML with CDATA
	// file bodies.
	FormatXML OutputFormat = "xml"
	// FormatClaudeXML renders the context document using Claude's
	// <document>/<document_content> XML convention.
	FormatClaudeXML OutputFormat = "claude_xml"
)

// ParseOutputFormat validates and normalizes a format string from CLI/config
// input.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch OutputFormat(s) {
	case FormatPlain, FormatMarkdown, FormatXML, FormatClaudeXML:
		return OutputFormat(s), true
	default:
		return "", false
	}
}

// LLMTarget identifies the target LLM platform, allowing format and token
// defaults to be tuned per model family.
type LLMTarget string

const (
	// TargetClaude targets Anthropic Claude models. Defaults to
	// Claude-XML output format and cl100k_base tokenizer.
	TargetClaude LLMTarget = "claude"
	// TargetChatGPT targets OpenAI ChatGPT/GPT-4 models. Defaults to
	// Markdown output format and o200k_base tokenizer.
	TargetChatGPT LLMTarget = "chatgpt"
	// TargetGeneric is a generic target with no model-specific
	// optimizations. Uses Markdown output format and cl100k_base.
	TargetGeneric LLMTarget = "generic"
)

// SelectionStrategy is the policy for choosing which enumerated files reach
// the renderer.
type SelectionStrategy string

const (
	// SelectionAll keeps every file not filtered by pattern.
	SelectionAll SelectionStrategy = "all"
	// SelectionScoring additionally requires score >= inclusion_threshold.
	SelectionScoring SelectionStrategy = "scoring"
)

// NamedEntityKind classifies an identifier extracted from source code.
type NamedEntityKind string

const (
	EntityClass    NamedEntityKind = "class"
	EntityFunction NamedEntityKind = "function"
	EntityVariable NamedEntityKind = "variable"
	EntityEnum     NamedEntityKind = "enum"
	EntityImport   NamedEntityKind = "import"
	EntityOther    NamedEntityKind = "other"
)

// NamedEntity is an identifier extracted from source code tagged with a
// semantic kind.
type NamedEntity struct {
	Name string          `json:"name"`
	Kind NamedEntityKind `json:"kind"`
}

// FileDescriptor is the output of the discovery phase: one entry per
// candidate path that survived pattern matching, before content is read.
type FileDescriptor struct {
	// Path is the file path relative to the repository root, forward-slash
	// form.
	Path string `json:"path"`
	// AbsPath is the absolute filesystem path used to read content.
	AbsPath string `json:"abs_path"`
	// Size is the file size in bytes as reported by the filesystem.
	Size int64 `json:"size"`
	// ModTime is the file's last-modified time, used for recency scoring.
	ModTime time.Time `json:"mod_time"`
	// IsSymlink indicates the entry was reached through a symbolic link.
	IsSymlink bool `json:"is_symlink"`
}

// IsValid reports whether the descriptor has the minimum fields required to
// proceed: a non-empty relative path.
func (fd FileDescriptor) IsValid() bool {
	return fd.Path != ""
}

// DiscoveryResult holds the aggregate output of the file discovery phase.
type DiscoveryResult struct {
	Files []FileDescriptor `json:"files"`
	// IgnoredDirs lists the repo-relative directories the matcher rejected
	// outright (and therefore never descended into), sorted, for the
	// renderer's "[ignored]" tree markers.
	IgnoredDirs  []string `json:"ignored_dirs,omitempty"`
	TotalFound   int      `json:"total_found"`
	TotalSkipped int      `json:"total_skipped"`
	// SkipReasons maps each skip reason ("ignored_dir", "ignored",
	// "symlink_error", "symlink_escape", "symlink_loop", "not_tracked",
	// "stat_error", "large_file", "pattern_filter") to its skip count.
	SkipReasons map[string]int `json:"skip_reasons"`
}

// ProcessedFile is the unit of ingestion: a FileDescriptor enriched with
// content and, optionally, a summary in place of that content.
type ProcessedFile struct {
	// Path is relative to the repository root, forward-slash form, used
	// for rendering and deterministic ordering.
	Path string `json:"path"`
	// Content is the file's text content: either verbatim (lossy UTF-8
	// replacement of invalid bytes) or a summary when IsSummarized.
	Content string `json:"content"`
	// LineCount is the number of newline-terminated segments in Content,
	// plus one if Content is non-empty and does not end in '\n'.
	LineCount int `json:"line_count"`
	// ByteSize is the original file size on disk, independent of whatever
	// transformation produced Content.
	ByteSize int64 `json:"byte_size"`
	// IsSummarized is true when Content holds a summary rather than the
	// verbatim file body.
	IsSummarized bool `json:"is_summarized"`
	// IsBinary marks files excluded from content but still counted in
	// enumeration stats.
	IsBinary bool `json:"is_binary"`
	// ContentHash is the xxh3 hash of Content, used for determinism checks.
	ContentHash uint64 `json:"content_hash"`
	// Language is the detected source language, used by the summarizer and
	// Markdown fence-language inference.
	Language string `json:"language"`
	// Entities holds named entities extracted for this file, populated
	// only when summarization with NER is enabled.
	Entities []NamedEntity `json:"entities,omitempty"`
	// Score is populated when the run's selection strategy is Scoring.
	Score *ScoredFile `json:"score,omitempty"`
	// TokenCount is populated by the Tokenizer adapter when token counting
	// is requested; zero when tokenization was not requested or the
	// tokenizer was unavailable for this file's content.
	TokenCount int `json:"token_count,omitempty"`
	// Err records a non-fatal per-file processing failure; when set the
	// file may still be rendered with an error annotation.
	Err error `json:"-"`
}

// ScoredFile is the FileScorer's verdict for one candidate file.
type ScoredFile struct {
	Path       string             `json:"path"`
	Score      float64            `json:"score"`
	Components map[string]float64 `json:"components"`
	Included   bool               `json:"included"`
}

// RunInput is the Renderer's input: the fully processed file set plus the
// rendering knobs that affect output shape but not file content.
type RunInput struct {
	// Files are rendered in the given order; callers needing
	// score-descending order should sort before constructing RunInput.
	Files []ProcessedFile
	// RootDir is the directory the run was rooted at, used for the
	// document header.
	RootDir string
	// Format selects the renderer implementation.
	Format OutputFormat
	// Target tunes format defaults for a specific LLM platform.
	Target LLMTarget
	// LineNumbers prefixes each rendered line with its 1-based line
	// number when true.
	LineNumbers bool
	// MaxOutputBytes bounds the rendered content size; zero means the
	// built-in default. Exceeding it sets RunSummary.ContentTruncated.
	MaxOutputBytes int64
	// IgnoredDirs lists directories the matcher rejected, marked
	// "[ignored]" in the rendered directory tree.
	IgnoredDirs []string
	// ElapsedMS is the run time consumed before rendering began, shown in
	// the artifact's trailing summary.
	ElapsedMS int64
	// TokenCount is the total token count when counting ran before
	// rendering; zero when token counting was off or unavailable.
	TokenCount int
	// Truncated marks a run interrupted by cancellation or deadline; the
	// renderer emits a "[truncated]" marker and the partial file set.
	Truncated bool
}

// PhaseTiming records how long one orchestrator phase took.
type PhaseTiming struct {
	Phase   string        `json:"phase"`
	Elapsed time.Duration `json:"elapsed"`
}

// ScoringReportSummary is the aggregate portion of a ScoringReport.
type ScoringReportSummary struct {
	Total        int     `json:"total"`
	Included     int     `json:"included"`
	InclusionPct float64 `json:"inclusion_pct"`
}

// ScoringReport is the JSON-serializable scoring summary attached to a
// RunSummary when the selection strategy is Scoring.
type ScoringReport struct {
	Summary ScoringReportSummary `json:"summary"`
	Files   []ScoredFile         `json:"files"`
}

// RunSummary aggregates counters for a completed or partially-completed run.
type RunSummary struct {
	TotalFiles       int            `json:"total_files"`
	ProcessedFiles   int            `json:"processed_files"`
	SkippedFiles     int            `json:"skipped_files"`
	ErroredFiles     int            `json:"errored_files"`
	TotalLines       int            `json:"total_lines"`
	TotalBytes       int64          `json:"total_bytes"`
	TokenCount       int            `json:"token_count,omitempty"`
	TokenizerMissing bool           `json:"tokenizer_missing,omitempty"`
	ElapsedMS        int64          `json:"elapsed_ms"`
	PhaseTimings     []PhaseTiming  `json:"phase_timings,omitempty"`
	ContentTruncated bool           `json:"content_truncated,omitempty"`
	Truncated        bool           `json:"truncated,omitempty"`
	Scoring          *ScoringReport `json:"scoring,omitempty"`
}
