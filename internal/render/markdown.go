package render

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/ctxpack/ctxpack/internal/langdetect"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// MarkdownRenderer writes files as a Markdown document: a heading, the
// directory tree in a fence, one fenced code block per file with the fence
// language inferred from the file's detected source language, then the
// trailing summary. Fences are widened past the longest backtick run in the
// content so a file containing fence markers cannot break out of its block.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(ctx context.Context, w io.Writer, run *pipeline.RunInput) (*pipeline.RunSummary, error) {
	bw := newBoundedWriter(w, run.MaxOutputBytes)

	bw.Printf("# Repository context: %s\n\n", run.RootDir)
	bw.WriteString("_Generated by ctxpack (markdown)._\n\n")

	bw.WriteString("## File tree\n\n")
	bw.WriteString("```\n")
	bw.WriteString(fileTree(run))
	bw.WriteString("```\n\n")

	truncatedRun := run.Truncated
	for _, pf := range run.Files {
		if ctx.Err() != nil {
			truncatedRun = true
			break
		}
		if pf.IsBinary || pf.Err != nil {
			continue
		}

		bw.Printf("### %s\n\n", pf.Path)
		if pf.IsSummarized {
			bw.WriteString("_Summarized content._\n\n")
		}

		content := pf.Content
		if run.LineNumbers {
			content = withLineNumbers(content)
		}
		fence := fenceFor(content)
		bw.Printf("%s%s\n", fence, fenceLanguage(pf.Language, pf.Path))
		bw.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			bw.WriteString("\n")
		}
		bw.Printf("%s\n\n", fence)
	}

	summary := summarize(run)
	summary.ContentTruncated = bw.truncated

	bw.WriteRaw("## Summary\n\n")
	if truncatedRun {
		bw.WriteRaw("**[truncated]** the run was interrupted before all files were rendered.\n\n")
	}
	bw.RawPrintf("- Files: %d\n- Lines: %d\n- Bytes: %d\n- Elapsed: %d ms\n",
		summary.ProcessedFiles, summary.TotalLines, summary.TotalBytes, run.ElapsedMS)
	if run.TokenCount > 0 {
		bw.RawPrintf("- Tokens: %d\n", run.TokenCount)
	}
	if bw.truncated {
		bw.WriteRaw("- Content truncated at the output size ceiling.\n")
	}

	return summary, nil
}

// fenceFor returns a backtick fence one longer than the longest backtick run
// in content, never shorter than the standard three, so the content cannot
// terminate the fence early.
func fenceFor(content string) string {
	longest, current := 0, 0
	for _, r := range content {
		if r == '`' {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

// fenceLanguage returns the fence tag for a file: the detected language
// name as is, or, when no language is detected, the bare file extension.
func fenceLanguage(language, path string) string {
	if language == "" {
		language = langdetect.Detect(path)
	}
	switch language {
	case "cpp":
		return "cpp"
	case "":
		return strings.TrimPrefix(filepath.Ext(path), ".")
	default:
		return language
	}
}
