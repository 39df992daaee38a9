package render

import (
	"context"
	"io"
	"strings"
	"unicode"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// ClaudeXMLRenderer writes files using Claude's documented
// <document index="N">/<source>/<document_content> convention, the format
// Claude models are trained to parse most reliably for long-context
// ingestion. Unlike the generic XML renderer there is no CDATA wrapping:
// content is emitted verbatim with control characters stripped.
type ClaudeXMLRenderer struct{}

func (r *ClaudeXMLRenderer) Render(ctx context.Context, w io.Writer, run *pipeline.RunInput) (*pipeline.RunSummary, error) {
	bw := newBoundedWriter(w, run.MaxOutputBytes)

	bw.WriteString("<documents>\n")
	bw.WriteString("<tree>\n")
	bw.WriteString(fileTree(run))
	bw.WriteString("</tree>\n")

	truncatedRun := run.Truncated
	index := 1
	for _, pf := range run.Files {
		if ctx.Err() != nil {
			truncatedRun = true
			break
		}
		if pf.IsBinary || pf.Err != nil {
			continue
		}

		content := pf.Content
		if run.LineNumbers {
			content = withLineNumbers(content)
		}
		content = stripControlChars(content)

		bw.Printf("<document index=\"%d\">\n", index)
		bw.Printf("<source>%s</source>\n", escapeAttr(pf.Path))
		bw.WriteString("<document_content>\n")
		bw.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			bw.WriteString("\n")
		}
		bw.WriteString("</document_content>\n")
		bw.WriteString("</document>\n")
		index++
	}

	summary := summarize(run)
	summary.ContentTruncated = bw.truncated

	if truncatedRun {
		bw.WriteRaw("<!-- [truncated] -->\n")
	}
	bw.RawPrintf("<summary files=\"%d\" lines=\"%d\" bytes=\"%d\" elapsed_ms=\"%d\"",
		summary.ProcessedFiles, summary.TotalLines, summary.TotalBytes, run.ElapsedMS)
	if run.TokenCount > 0 {
		bw.RawPrintf(" tokens=\"%d\"", run.TokenCount)
	}
	if truncatedRun {
		bw.WriteRaw(" truncated=\"true\"")
	}
	bw.WriteRaw("/>\n</documents>\n")

	return summary, nil
}

// stripControlChars removes control characters other than tab, newline, and
// carriage return. This is the claude_xml escape rule: no CDATA and no
// entity escaping, just content a model can read with the bytes that would
// corrupt a text stream dropped.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
