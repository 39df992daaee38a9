package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ShowOptions controls the rendering of a resolved profile.
type ShowOptions struct {
	// Profile is the fully merged profile to display.
	Profile *Profile

	// Sources maps flat field names to their origin layer.
	Sources SourceMap

	// ProfileName is the name of the profile being displayed.
	ProfileName string

	// Chain is the inheritance chain in resolution order, e.g. ["finvault", "default"].
	Chain []string
}

// ShowProfile renders a resolved profile as annotated TOML. Each field is
// printed with an inline comment indicating which configuration layer
// provided its value. The output is human-readable and approximately valid
// TOML (inline comments are not part of the TOML spec but are widely
// supported by editors and tooling).
//
// The Chain parameter should come from ProfileResolution.Chain.
func ShowProfile(opts ShowOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resolved profile: %s\n", opts.ProfileName)
	if len(opts.Chain) > 1 {
		fmt.Fprintf(&b, "# Inheritance chain: %s\n", strings.Join(opts.Chain, " -> "))
	}
	fmt.Fprintf(&b, "\n")

	p := opts.Profile
	src := opts.Sources

	writeStringField(&b, "output", p.Output, sourceLabel(src, "output"))
	writeStringField(&b, "format", p.Format, sourceLabel(src, "format"))
	if p.Target != "" {
		writeStringField(&b, "target", p.Target, sourceLabel(src, "target"))
	}
	writeIntField(&b, "worker_count", p.WorkerCount, sourceLabel(src, "worker_count"))
	writeBoolField(&b, "verbose", p.Verbose, sourceLabel(src, "verbose"))
	writeBoolField(&b, "show_timing", p.ShowTiming, sourceLabel(src, "show_timing"))
	writeStringField(&b, "selection", p.Selection, sourceLabel(src, "selection"))
	writeBoolField(&b, "count_tokens", p.CountTokens, sourceLabel(src, "count_tokens"))
	writeStringField(&b, "token_encoding", p.TokenEncoding, sourceLabel(src, "token_encoding"))
	writeBoolField(&b, "tokens_only", p.TokensOnly, sourceLabel(src, "tokens_only"))
	writeIntField(&b, "run_deadline_seconds", p.RunDeadlineSeconds, sourceLabel(src, "run_deadline_seconds"))
	writeInt64Field(&b, "max_output_bytes", p.MaxOutputBytes, sourceLabel(src, "max_output_bytes"))

	if len(p.Include) > 0 {
		writeStringSliceField(&b, "include", p.Include, sourceLabel(src, "include"))
	}
	if len(p.Exclude) > 0 {
		writeStringSliceField(&b, "exclude", p.Exclude, sourceLabel(src, "exclude"))
	}

	b.WriteString("\n")
	writeScoringSection(&b, p.Scoring, src)

	b.WriteString("\n")
	writeSummarizationSection(&b, p.Summarization, src)

	return b.String()
}

// ShowProfileJSON serializes the resolved profile to indented JSON. It returns
// the JSON bytes as a string. An error is returned only if marshalling fails,
// which should not happen for well-formed Profile values.
func ShowProfileJSON(p *Profile) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile to JSON: %w", err)
	}
	return string(data), nil
}

// sourceLabel returns the Source.String() for a given flat key, defaulting to
// "default" when the key is absent from the SourceMap.
func sourceLabel(src SourceMap, key string) string {
	if s, ok := src[key]; ok {
		return s.String()
	}
	return "default"
}

func writeStringField(b *strings.Builder, key, value, source string) {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, `"`+escaped+`"`, source)
}

func writeIntField(b *strings.Builder, key string, value int, source string) {
	fmt.Fprintf(b, "%-20s = %-30d # %s\n", key, value, source)
}

func writeInt64Field(b *strings.Builder, key string, value int64, source string) {
	fmt.Fprintf(b, "%-20s = %-30d # %s\n", key, value, source)
}

func writeFloatField(b *strings.Builder, key string, value float64, source string) {
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, strconv.FormatFloat(value, 'g', -1, 64), source)
}

func writeBoolField(b *strings.Builder, key string, value bool, source string) {
	boolStr := "false"
	if value {
		boolStr = "true"
	}
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, boolStr, source)
}

func writeStringSliceField(b *strings.Builder, key string, values []string, source string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%-20s = []%-27s # %s\n", key, "", source)
		return
	}

	fmt.Fprintf(b, "%-20s = [%-29s # %s\n", key, "", source)
	for _, v := range values {
		fmt.Fprintf(b, "  %q,\n", v)
	}
	b.WriteString("]\n")
}

// writeScoringSection writes the [scoring] TOML table with per-field source
// annotations.
func writeScoringSection(b *strings.Builder, s ScoringConfig, src SourceMap) {
	fmt.Fprintf(b, "[scoring]\n")
	writeFloatField(b, "weight_root", s.WeightRoot, sourceLabel(src, "scoring.weight_root"))
	writeFloatField(b, "weight_top_dir", s.WeightTopDir, sourceLabel(src, "scoring.weight_top_dir"))
	writeFloatField(b, "weight_entry_point", s.WeightEntryPoint, sourceLabel(src, "scoring.weight_entry_point"))
	writeFloatField(b, "weight_graph", s.WeightGraph, sourceLabel(src, "scoring.weight_graph"))
	writeFloatField(b, "weight_type_source", s.WeightTypeSource, sourceLabel(src, "scoring.weight_type_source"))
	writeFloatField(b, "weight_type_config", s.WeightTypeConfig, sourceLabel(src, "scoring.weight_type_config"))
	writeFloatField(b, "weight_type_docs", s.WeightTypeDocs, sourceLabel(src, "scoring.weight_type_docs"))
	writeFloatField(b, "weight_type_test", s.WeightTypeTest, sourceLabel(src, "scoring.weight_type_test"))
	writeFloatField(b, "weight_recency", s.WeightRecency, sourceLabel(src, "scoring.weight_recency"))
	writeFloatField(b, "weight_size_inv", s.WeightSizeInv, sourceLabel(src, "scoring.weight_size_inv"))
	writeFloatField(b, "weight_density", s.WeightDensity, sourceLabel(src, "scoring.weight_density"))
	writeIntField(b, "recent_window_days", s.RecentWindowDays, sourceLabel(src, "scoring.recent_window_days"))
	writeInt64Field(b, "large_file_threshold_bytes", s.LargeFileThresholdBytes, sourceLabel(src, "scoring.large_file_threshold_bytes"))
	writeFloatField(b, "inclusion_threshold", s.InclusionThreshold, sourceLabel(src, "scoring.inclusion_threshold"))
	writeBoolField(b, "use_syntax_tree", s.UseSyntaxTree, sourceLabel(src, "scoring.use_syntax_tree"))
	if len(s.ImportantFiles) > 0 {
		writeStringSliceField(b, "important_files", s.ImportantFiles, sourceLabel(src, "scoring.important_files"))
	}
	if len(s.ImportantDirs) > 0 {
		writeStringSliceField(b, "important_dirs", s.ImportantDirs, sourceLabel(src, "scoring.important_dirs"))
	}
	if len(s.SourceExtensions) > 0 {
		writeStringSliceField(b, "source_extensions", s.SourceExtensions, sourceLabel(src, "scoring.source_extensions"))
	}
	if len(s.ConfigExtensions) > 0 {
		writeStringSliceField(b, "config_extensions", s.ConfigExtensions, sourceLabel(src, "scoring.config_extensions"))
	}
	if len(s.DocsExtensions) > 0 {
		writeStringSliceField(b, "docs_extensions", s.DocsExtensions, sourceLabel(src, "scoring.docs_extensions"))
	}
	if len(s.TestPatterns) > 0 {
		writeStringSliceField(b, "test_patterns", s.TestPatterns, sourceLabel(src, "scoring.test_patterns"))
	}
}

// writeSummarizationSection writes the [summarization] TOML table, including
// the nested [summarization.ner] table.
func writeSummarizationSection(b *strings.Builder, s SummarizationOptions, src SourceMap) {
	fmt.Fprintf(b, "[summarization]\n")
	writeBoolField(b, "enabled", s.Enabled, sourceLabel(src, "summarization.enabled"))
	writeIntField(b, "first_n_lines", s.FirstNLines, sourceLabel(src, "summarization.first_n_lines"))
	writeBoolField(b, "signatures", s.Signatures, sourceLabel(src, "summarization.signatures"))
	writeBoolField(b, "docstrings", s.Docstrings, sourceLabel(src, "summarization.docstrings"))
	writeBoolField(b, "snippets", s.Snippets, sourceLabel(src, "summarization.snippets"))
	writeIntField(b, "snippets_count", s.SnippetsCount, sourceLabel(src, "summarization.snippets_count"))
	writeBoolField(b, "readme_passthrough", s.ReadmePassthrough, sourceLabel(src, "summarization.readme_passthrough"))
	writeBoolField(b, "use_syntax_tree", s.UseSyntaxTree, sourceLabel(src, "summarization.use_syntax_tree"))
	writeInt64Field(b, "file_size_threshold_bytes", s.FileSizeThresholdBytes, sourceLabel(src, "summarization.file_size_threshold_bytes"))
	writeIntField(b, "max_summary_lines", s.MaxSummaryLines, sourceLabel(src, "summarization.max_summary_lines"))

	b.WriteString("\n[summarization.ner]\n")
	writeBoolField(b, "enabled", s.NER.Enabled, sourceLabel(src, "summarization.ner.enabled"))
	writeStringField(b, "method", s.NER.Method, sourceLabel(src, "summarization.ner.method"))
	writeBoolField(b, "include_classes", s.NER.IncludeClasses, sourceLabel(src, "summarization.ner.include_classes"))
	writeBoolField(b, "include_functions", s.NER.IncludeFunctions, sourceLabel(src, "summarization.ner.include_functions"))
	writeBoolField(b, "include_variables", s.NER.IncludeVariables, sourceLabel(src, "summarization.ner.include_variables"))
	writeBoolField(b, "include_enums", s.NER.IncludeEnums, sourceLabel(src, "summarization.ner.include_enums"))
	writeBoolField(b, "include_imports", s.NER.IncludeImports, sourceLabel(src, "summarization.ner.include_imports"))
	writeIntField(b, "max_entities", s.NER.MaxEntities, sourceLabel(src, "summarization.ner.max_entities"))
	writeBoolField(b, "group_by_kind", s.NER.GroupByKind, sourceLabel(src, "summarization.ner.group_by_kind"))
	writeBoolField(b, "cache_enabled", s.NER.CacheEnabled, sourceLabel(src, "summarization.ner.cache_enabled"))
	if s.NER.MLModelPath != "" {
		writeStringField(b, "ml_model_path", s.NER.MLModelPath, sourceLabel(src, "summarization.ner.ml_model_path"))
	}
}
