package config

import "github.com/spf13/cobra"

// FlagsToCLIMap converts the flags the user actually typed into the flat
// key format Resolve's CLIFlags layer expects. Only explicitly-set flags are
// included: a flag left at its zero-value default must not silently
// override a profile or config-file value, since Resolve treats every key
// present in CLIFlags as an explicit override regardless of what wrote it.
func FlagsToCLIMap(cmd *cobra.Command, fv *FlagValues) map[string]any {
	out := make(map[string]any)
	changed := cmd.Flags().Changed

	set := func(flag, key string, value any) {
		if changed(flag) {
			out[key] = value
		}
	}

	set("output", "output", fv.Output)
	set("format", "format", fv.Format)
	set("target", "target", fv.Target)
	set("selection", "selection", fv.Selection)
	set("token-encoding", "token_encoding", fv.TokenEncoding)
	set("count-tokens", "count_tokens", fv.CountTokens)
	set("tokens-only", "tokens_only", fv.TokensOnly)
	set("threads", "worker_count", fv.Threads)
	set("timing", "show_timing", fv.ShowTiming)
	set("verbose", "verbose", fv.Verbose)

	// -f/--filter folds into Includes during ValidateFlags, so either flag
	// changing means Includes must be re-sent as an override.
	if changed("include") || changed("filter") {
		out["include"] = fv.Includes
	}
	if changed("exclude") {
		out["exclude"] = fv.Excludes
	}

	if changed("inclusion-threshold") && fv.InclusionThreshold > 0 {
		out["scoring.inclusion_threshold"] = fv.InclusionThreshold
	}

	set("summarize", "summarization.enabled", fv.Summarize)
	if changed("summarize-first-n") && fv.SummarizeFirstN > 0 {
		out["summarization.first_n_lines"] = fv.SummarizeFirstN
	}
	if changed("summarize-max-lines") && fv.SummarizeMaxLines > 0 {
		out["summarization.max_summary_lines"] = fv.SummarizeMaxLines
	}
	if changed("ner-method") && fv.NERMethod != "" {
		out["summarization.ner.method"] = fv.NERMethod
	}

	return out
}
