package render

import (
	"context"
	"io"
	"strings"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// PlainRenderer writes files as delimited plain text: a preamble naming the
// tool and format, the directory tree, one section per file separated by a
// rule line, then the trailing summary.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(ctx context.Context, w io.Writer, run *pipeline.RunInput) (*pipeline.RunSummary, error) {
	bw := newBoundedWriter(w, run.MaxOutputBytes)

	bw.WriteString("ctxpack (plain)\n")
	bw.Printf("Repository: %s\n", run.RootDir)
	bw.WriteString(strings.Repeat("=", 60) + "\n\n")

	bw.WriteString("File tree:\n")
	bw.WriteString(fileTree(run))
	bw.WriteString("\n")

	truncatedRun := run.Truncated
	for _, pf := range run.Files {
		if ctx.Err() != nil {
			truncatedRun = true
			break
		}
		if pf.IsBinary || pf.Err != nil {
			continue
		}
		bw.WriteString(strings.Repeat("-", 60) + "\n")
		bw.Printf("File: %s", pf.Path)
		if pf.IsSummarized {
			bw.WriteString(" (summarized)")
		}
		bw.WriteString("\n")
		bw.WriteString(strings.Repeat("-", 60) + "\n")

		content := pf.Content
		if run.LineNumbers {
			content = withLineNumbers(content)
		}
		bw.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			bw.WriteString("\n")
		}
		bw.WriteString("\n")
	}

	summary := summarize(run)
	summary.ContentTruncated = bw.truncated

	bw.WriteRaw(strings.Repeat("=", 60) + "\n")
	if truncatedRun {
		bw.WriteRaw("[truncated]\n")
	}
	bw.RawPrintf("Summary: %d files, %d lines, %d bytes, %d ms\n",
		summary.ProcessedFiles, summary.TotalLines, summary.TotalBytes, run.ElapsedMS)
	if run.TokenCount > 0 {
		bw.RawPrintf("Tokens: %d\n", run.TokenCount)
	}
	if bw.truncated {
		bw.WriteRaw("Content truncated at the output size ceiling.\n")
	}

	return summary, nil
}
