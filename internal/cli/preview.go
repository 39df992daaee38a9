// Package cli implements the Cobra command hierarchy for the ctxpack CLI tool.
// This file implements the `ctxpack preview` subcommand which shows file selection
// and token statistics without generating an output file.
package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/orchestrator"
	"github.com/ctxpack/ctxpack/internal/pipeline"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
)

// previewHeatmap is a local flag target for --heatmap on the preview command.
// It is a file-level variable (not inside init) to avoid dereferencing the
// flagValues pointer before root.go's init() has populated it.
var previewHeatmap bool

// previewCmd implements `ctxpack preview` which shows file selection and token
// distribution without generating an output file.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview file selection and token statistics without generating output",
	Long: `Preview runs the file discovery, scoring, and token counting stages
without writing an output context file. Use this to inspect which files
would be included, their token counts, and how they relate to your token
budget.

Examples:
  # Preview the current directory
  ctxpack preview

  # Show token density heatmap to find context-bloat files
  ctxpack preview --heatmap

  # Preview with a specific tokenizer
  ctxpack preview --tokenizer o200k_base

  # Show the top 20 largest files
  ctxpack preview --top-files 20

  # Flag files that would not fit in a 50k token budget
  ctxpack preview --max-tokens 50000 --truncation-strategy truncate`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewHeatmap, "heatmap", false, "show token density heatmap (tokens per line)")
	rootCmd.AddCommand(previewCmd)
}

// runPreview resolves the same layered configuration generate uses, then runs
// discovery, scoring, reading, and tokenizing through orchestrator.Preview,
// without summarizing, rendering, or writing any output file. When --max-tokens
// is set, the results are passed through a BudgetEnforcer so the report can
// show which files would be dropped or truncated at that budget.
func runPreview(cmd *cobra.Command, args []string) error {
	fv := GlobalFlags()
	fv.Heatmap = previewHeatmap

	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: fv.ProfileName,
		ProfileFile: fv.ProfileFile,
		TargetDir:   fv.Dir,
		CLIFlags:    config.FlagsToCLIMap(cmd, fv),
	})
	if err != nil {
		return pipeline.NewInvalidOptions("resolving configuration", err)
	}

	files, err := orchestrator.Preview(cmd.Context(), resolved.Profile, fv, fv.Tokenizer)
	if err != nil {
		return err
	}

	sort.SliceStable(files, func(i, j int) bool {
		si, sj := scoreOf(files[i]), scoreOf(files[j])
		if si != sj {
			return si > sj
		}
		return files[i].TokenCount > files[j].TokenCount
	})

	if fv.MaxTokens > 0 {
		tok, terr := tokenizer.NewTokenizer(fv.Tokenizer)
		if terr != nil {
			tok = nil
		}
		enforcer := tokenizer.NewBudgetEnforcer(fv.MaxTokens, tokenizer.TruncationStrategy(fv.TruncationStrategy), tok)
		result := enforcer.Enforce(files, 0)
		files = result.IncludedFiles

		if !fv.Quiet && len(result.ExcludedFiles) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s) excluded by the %d token budget (%s strategy)\n",
				len(result.ExcludedFiles), fv.MaxTokens, fv.TruncationStrategy)
		}
	}

	switch {
	case fv.Heatmap:
		report := tokenizer.NewHeatmapReport(files)
		fmt.Fprint(os.Stderr, report.Format())
	case fv.TopFiles > 0:
		PrintTopFiles(cmd.ErrOrStderr(), files, fv.TopFiles)
	default:
		PrintTokenReport(cmd.ErrOrStderr(), files, fv.Tokenizer, fv.MaxTokens)
	}

	return nil
}

// scoreOf returns a file's relevance score, or 0 when the run used
// selection=all and no ScoredFile was attached.
func scoreOf(pf *pipeline.ProcessedFile) float64 {
	if pf.Score == nil {
		return 0
	}
	return pf.Score.Score
}
