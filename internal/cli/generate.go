package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/orchestrator"
	"github.com/ctxpack/ctxpack/internal/pipeline"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
	"github.com/ctxpack/ctxpack/internal/tui"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate LLM-optimized context from a codebase",
	Long: `Recursively discover files, apply filters, score and select by
relevance, and produce a structured context document optimized for large
language models.

This is the primary workflow command. Running 'ctxpack' with no subcommand
is equivalent to running 'ctxpack generate'.`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.RegisterFlagCompletionFunc("token-encoding", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{tokenizer.NameCL100K, tokenizer.NameO200K, tokenizer.NameP50KBase, tokenizer.NameP50KEdit, tokenizer.NameR50KBase, tokenizer.NameNone}, cobra.ShellCompDirectiveNoFileComp
	})
	generateCmd.RegisterFlagCompletionFunc("selection", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "scoring"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// runGenerate resolves the layered configuration (defaults, global config,
// repo ctxpack.toml, env vars, then this invocation's CLI flags) and hands
// it to the orchestrator.
func runGenerate(cmd *cobra.Command, args []string) error {
	fv := GlobalFlags()

	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: fv.ProfileName,
		ProfileFile: fv.ProfileFile,
		TargetDir:   fv.Dir,
		CLIFlags:    config.FlagsToCLIMap(cmd, fv),
	})
	if err != nil {
		return pipeline.NewInvalidOptions("resolving configuration", err)
	}

	summary, err := runWithProgress(cmd, resolved.Profile, fv)
	if err != nil {
		return err
	}

	if !fv.Quiet {
		dest := resolved.Profile.Output
		if fv.Stdout {
			dest = "stdout"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s: %d files, %s tokens\n",
			dest, summary.ProcessedFiles, tokenizer.FormatInt(summary.TokenCount))
	}
	return nil
}

// runWithProgress runs the orchestrator. When --watch is set, the run
// happens on its own goroutine against a shared progress handle while the
// bubbletea watcher occupies the foreground terminal; quitting the watcher
// early (q/ctrl+c) leaves the run to finish in the background, matching
// the watcher's own "run continues in background" hint.
func runWithProgress(cmd *cobra.Command, profile *config.Profile, fv *config.FlagValues) (*pipeline.RunSummary, error) {
	if !fv.Watch {
		return orchestrator.Run(cmd.Context(), profile, fv, pipeline.NewProgressHandle())
	}

	progress := pipeline.NewProgressHandle()
	done := make(chan struct{})
	var summary *pipeline.RunSummary
	var runErr error

	go func() {
		defer close(done)
		summary, runErr = orchestrator.Run(cmd.Context(), profile, fv, progress)
	}()

	if err := tui.Watch(progress); err != nil {
		<-done
		return summary, err
	}

	<-done
	return summary, runErr
}
