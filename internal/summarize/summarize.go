// Package summarize implements the Summarizer: it reduces a large file's
// content to a compact textual orientation aid (first lines, docstrings,
// signatures, representative snippets, named entities) when full content
// would be wasteful. Activation is size-gated through SummarizationOptions.
package summarize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/ner"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// Summarizer reduces ProcessedFile.Content for files that qualify under
// SummarizationOptions, optionally enriching the summary with named
// entities extracted by an ner.Backend.
type Summarizer struct {
	opts    config.SummarizationOptions
	backend ner.Backend
}

// New constructs a Summarizer. backend may be nil when NER is disabled; in
// that case the named-entities section is simply omitted.
func New(opts config.SummarizationOptions, backend ner.Backend) *Summarizer {
	return &Summarizer{opts: opts, backend: backend}
}

// ShouldSummarize reports whether pf qualifies for summarization under s's
// options: summarization must be enabled, the file must be large enough,
// and README files are exempted unless ReadmePassthrough is false.
func (s *Summarizer) ShouldSummarize(pf pipeline.ProcessedFile) bool {
	if !s.opts.Enabled || pf.IsBinary {
		return false
	}
	if isReadme(pf.Path) && s.opts.ReadmePassthrough {
		return false
	}
	return pf.ByteSize >= s.opts.FileSizeThresholdBytes
}

func isReadme(path string) bool {
	return strings.HasPrefix(strings.ToUpper(filepath.Base(path)), "README")
}

// Summarize applies ShouldSummarize and, when it qualifies, replaces
// pf.Content with the assembled summary and sets pf.IsSummarized. Files
// that do not qualify are returned unchanged.
func (s *Summarizer) Summarize(ctx context.Context, pf pipeline.ProcessedFile) pipeline.ProcessedFile {
	if !s.ShouldSummarize(pf) {
		return pf
	}

	lines := splitLines(pf.Content)
	rules := rulesFor(pf.Language)

	var sections []string

	if s.opts.FirstNLines > 0 {
		n := s.opts.FirstNLines
		if n > len(lines) {
			n = len(lines)
		}
		if n > 0 {
			sections = append(sections, strings.Join(lines[:n], "\n"))
		}
	}

	if s.opts.Docstrings && rules.docstring != nil {
		if doc := extractDocstrings(lines, rules); doc != "" {
			sections = append(sections, doc)
		}
	}

	if s.opts.Signatures && rules.signature != nil {
		if sig := extractSignatures(lines, rules); sig != "" {
			sections = append(sections, sig)
		}
	}

	if s.opts.Snippets && s.opts.SnippetsCount > 0 {
		if snip := extractSnippets(lines, s.opts.SnippetsCount); snip != "" {
			sections = append(sections, snip)
		}
	}

	if s.opts.NER.Enabled && s.backend != nil {
		entities, err := s.backend.Extract(ctx, pf.Content, pf.Path)
		if err == nil && len(entities) > 0 {
			pf.Entities = entities
			sections = append(sections, formatEntities(entities))
		}
	}

	assembled := strings.Join(sections, "\n\n")
	assembled, truncated := truncate(assembled, s.opts.MaxSummaryLines)
	_ = truncated

	pf.Content = assembled
	pf.IsSummarized = true
	pf.LineCount = len(splitLines(assembled))
	return pf
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// extractDocstrings finds contiguous comment blocks immediately preceding a
// declaration line and emits them in file order.
func extractDocstrings(lines []string, rules langRules) string {
	var out []string
	var block []string
	for i, line := range lines {
		if rules.docstring.MatchString(line) {
			block = append(block, strings.TrimSpace(line))
			continue
		}
		if len(block) > 0 && rules.signature != nil && rules.signature.MatchString(line) {
			out = append(out, strings.Join(block, "\n"))
		}
		_ = i
		block = nil
	}
	return strings.Join(out, "\n\n")
}

// extractSignatures emits one line per matched declaration: the matched
// text up to its opening brace or colon.
func extractSignatures(lines []string, rules langRules) string {
	var out []string
	for _, line := range lines {
		if rules.signature.MatchString(line) {
			sig := line
			if idx := strings.IndexAny(sig, "{:"); idx >= 0 {
				sig = sig[:idx]
			}
			out = append(out, strings.TrimSpace(sig))
		}
	}
	return strings.Join(out, "\n")
}

// extractSnippets picks `count` evenly spaced windows of lines, preferring
// (among the fixed window positions) the one with the higher non-blank
// line ratio within each window when two windows would otherwise overlap
// the same content.
func extractSnippets(lines []string, count int) string {
	if len(lines) == 0 || count <= 0 {
		return ""
	}
	const windowSize = 10
	if len(lines) <= windowSize {
		return strings.Join(lines, "\n")
	}

	stride := len(lines) / (count + 1)
	if stride < 1 {
		stride = 1
	}

	var windows []string
	for i := 1; i <= count; i++ {
		start := i * stride
		if start >= len(lines) {
			break
		}
		end := start + windowSize
		if end > len(lines) {
			end = len(lines)
		}
		windows = append(windows, strings.Join(lines[start:end], "\n"))
	}
	return strings.Join(windows, "\n…\n")
}

func formatEntities(entities []pipeline.NamedEntity) string {
	var sb strings.Builder
	sb.WriteString("Entities:")
	for _, e := range entities {
		fmt.Fprintf(&sb, "\n- %s (%s)", e.Name, e.Kind)
	}
	return sb.String()
}

// truncate caps assembled at maxLines lines, appending the documented
// truncation marker when content is dropped. maxLines <= 0 disables the cap.
func truncate(content string, maxLines int) (string, bool) {
	if maxLines <= 0 {
		return content, false
	}
	lines := splitLines(content)
	if len(lines) <= maxLines {
		return content, false
	}
	omitted := len(lines) - maxLines
	kept := lines[:maxLines]
	marker := fmt.Sprintf("… (%d more lines omitted)", omitted)
	return strings.Join(kept, "\n") + "\n" + marker, true
}
