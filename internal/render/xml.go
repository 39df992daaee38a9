package render

import (
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// XMLRenderer writes files as generic XML: a <files> root holding the
// directory tree and one <file path="..."> element per file with a CDATA
// body, closed by a <summary> element. The document structure is hand-built
// (no pack example renders this shape); encoding/xml is used only for
// attribute/text escaping via xml.EscapeText, not for marshaling the
// document itself.
type XMLRenderer struct{}

func (r *XMLRenderer) Render(ctx context.Context, w io.Writer, run *pipeline.RunInput) (*pipeline.RunSummary, error) {
	bw := newBoundedWriter(w, run.MaxOutputBytes)

	bw.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	bw.Printf("<files generator=\"ctxpack\" format=\"xml\" root=\"%s\">\n", escapeAttr(run.RootDir))

	bw.WriteString("  <tree><![CDATA[\n")
	bw.WriteString(escapeCDATA(fileTree(run)))
	bw.WriteString("]]></tree>\n")

	truncatedRun := run.Truncated
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
		bw.Printf("  <file path=\"%s\" summarized=\"%t\"><![CDATA[", escapeAttr(pf.Path), pf.IsSummarized)
		bw.WriteString(escapeCDATA(content))
		bw.WriteString("]]></file>\n")
	}

	summary := summarize(run)
	summary.ContentTruncated = bw.truncated

	if truncatedRun {
		bw.WriteRaw("  <!-- [truncated] -->\n")
	}
	bw.RawPrintf("  <summary files=\"%d\" lines=\"%d\" bytes=\"%d\" elapsed_ms=\"%d\"",
		summary.ProcessedFiles, summary.TotalLines, summary.TotalBytes, run.ElapsedMS)
	if run.TokenCount > 0 {
		bw.RawPrintf(" tokens=\"%d\"", run.TokenCount)
	}
	if truncatedRun {
		bw.WriteRaw(" truncated=\"true\"")
	}
	if bw.truncated {
		bw.WriteRaw(" content_truncated=\"true\"")
	}
	bw.WriteRaw("/>\n</files>\n")

	return summary, nil
}

// escapeAttr escapes a string for use inside a double-quoted XML attribute
// using the standard library's own escaper, avoiding a hand-rolled
// replacer for a security-sensitive operation.
func escapeAttr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}

// escapeCDATA splits any "]]>" sequence in content, the one byte sequence
// that is illegal inside a CDATA section, since the section itself is not
// otherwise escaped.
func escapeCDATA(content string) string {
	return strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>")
}
