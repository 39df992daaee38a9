// Package cli implements the Cobra command hierarchy for the ctxpack CLI tool.
// This file implements the `ctxpack tokens` subcommand, a standalone token
// counter for an already-rendered artifact or a fresh dry run.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/orchestrator"
	"github.com/ctxpack/ctxpack/internal/pipeline"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [artifact]",
	Short: "Count tokens in a rendered artifact or a fresh dry run",
	Long: `Count tokens under a named encoding without generating an output file.

With an artifact path, the file is read and counted directly. Without one,
the discovery, scoring, and reading stages run against --dir and a per-file
token report is printed.

Examples:
  # Count tokens in an already-rendered artifact
  ctxpack tokens ctxpack-output.md

  # Count with a specific encoding
  ctxpack tokens ctxpack-output.md --tokenizer o200k_base

  # Fresh dry run over the current directory
  ctxpack tokens`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

// runTokens counts an artifact file when one is given; otherwise it runs the
// same read-only pipeline preview uses and prints the token report.
func runTokens(cmd *cobra.Command, args []string) error {
	fv := GlobalFlags()

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return pipeline.NewIOError(fmt.Sprintf("reading artifact %s", args[0]), err)
		}
		tok, err := tokenizer.NewTokenizer(fv.Tokenizer)
		if err != nil {
			return pipeline.NewError(pipeline.KindTokenizerUnavailable,
				fmt.Sprintf("loading tokenizer %q", fv.Tokenizer), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s tokens (%s)\n",
			tokenizer.FormatInt(tok.Count(string(data))), tok.Name())
		return nil
	}

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

	PrintTokenReport(cmd.OutOrStdout(), files, fv.Tokenizer, fv.MaxTokens)
	return nil
}
