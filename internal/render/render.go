// Package render implements the Renderer: it writes a RunInput's processed
// files to an io.Writer in one of four document formats (plain, markdown,
// xml, claude_xml), enforcing an output-size ceiling so a pathological run
// cannot produce an unbounded artifact.
package render

import (
	"context"
	"fmt"
	"io"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// DefaultMaxOutputBytes is the output-size ceiling applied when
// RunInput.MaxOutputBytes is zero.
const DefaultMaxOutputBytes int64 = 64 * 1024 * 1024

// Renderer writes a RunInput's files to w in a specific document format and
// returns the aggregate RunSummary for the render.
type Renderer interface {
	Render(ctx context.Context, w io.Writer, run *pipeline.RunInput) (*pipeline.RunSummary, error)
}

// New returns the Renderer for run's configured format, defaulting to
// plain text for an unrecognized or empty format.
func New(format pipeline.OutputFormat) Renderer {
	switch format {
	case pipeline.FormatMarkdown:
		return &MarkdownRenderer{}
	case pipeline.FormatXML:
		return &XMLRenderer{}
	case pipeline.FormatClaudeXML:
		return &ClaudeXMLRenderer{}
	default:
		return &PlainRenderer{}
	}
}

// boundedWriter wraps an io.Writer and tracks how many bytes have been
// written against a ceiling. Once the ceiling is exceeded, subsequent
// writes are silently dropped (already-written bytes are never rolled
// back) and truncated is set so the caller can flag RunSummary.ContentTruncated.
type boundedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
}

func newBoundedWriter(w io.Writer, max int64) *boundedWriter {
	if max <= 0 {
		max = DefaultMaxOutputBytes
	}
	return &boundedWriter{w: w, max: max}
}

func (b *boundedWriter) WriteString(s string) {
	if b.truncated {
		return
	}
	if b.written+int64(len(s)) > b.max {
		remaining := b.max - b.written
		if remaining > 0 {
			_, _ = io.WriteString(b.w, s[:remaining])
			b.written = b.max
		}
		b.truncated = true
		return
	}
	n, _ := io.WriteString(b.w, s)
	b.written += int64(n)
}

func (b *boundedWriter) Printf(format string, args ...any) {
	b.WriteString(fmt.Sprintf(format, args...))
}

// WriteRaw writes directly to the underlying writer, bypassing the output
// ceiling. The trailing summary uses it: a ceiling-truncated artifact must
// still end with its summary block.
func (b *boundedWriter) WriteRaw(s string) {
	_, _ = io.WriteString(b.w, s)
}

func (b *boundedWriter) RawPrintf(format string, args ...any) {
	b.WriteRaw(fmt.Sprintf(format, args...))
}

// summarize builds the base RunSummary fields common to every renderer:
// file/line/byte counts. Each renderer sets ContentTruncated from its
// bounded writer after the file blocks are written.
func summarize(run *pipeline.RunInput) *pipeline.RunSummary {
	summary := &pipeline.RunSummary{}
	for _, pf := range run.Files {
		summary.TotalFiles++
		if pf.Err != nil {
			summary.ErroredFiles++
			continue
		}
		if pf.IsBinary {
			summary.SkippedFiles++
			continue
		}
		summary.ProcessedFiles++
		summary.TotalLines += pf.LineCount
		summary.TotalBytes += pf.ByteSize
	}
	return summary
}
