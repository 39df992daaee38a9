package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// ProfileName selects a named profile from loaded configs. If empty,
	// the CTXPACK_PROFILE env var is checked, then "default" is used.
	ProfileName string

	// ProfileFile is a standalone profile TOML file path (--profile-file
	// flag). When set, the repo config (ctxpack.toml) is not loaded.
	ProfileFile string

	// TargetDir is the directory to search for ctxpack.toml. Defaults to
	// "." if empty.
	TargetDir string

	// GlobalConfigPath overrides the default
	// ~/.config/ctxpack/config.toml. Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat Profile field paths: "format", "scoring.weight_root",
	// "summarization.ner.method", etc.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	Profile     *Profile
	Sources     SourceMap
	ProfileName string
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/ctxpack/config.toml)
//  3. Repository config (ctxpack.toml in TargetDir) OR standalone profile file
//  4. Environment variables (CTXPACK_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently ignored. Invalid files return errors.
// Named profiles not found in any loaded config return an error listing
// available profiles.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	profileName := opts.ProfileName
	if profileName == "" {
		if v := os.Getenv(EnvProfile); v != "" {
			profileName = v
		} else {
			profileName = "default"
		}
	}

	slog.Debug("resolving config",
		"profile", profileName,
		"targetDir", opts.TargetDir,
		"profileFile", opts.ProfileFile,
	)

	k := koanf.New(".")
	sources := make(SourceMap)

	// ── Layer 1: built-in defaults ──────────────────────────────────────
	defaultProfile := DefaultProfile()
	if err := loadLayer(k, profileToFlatMap(defaultProfile), sources, SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	profileFound := false

	// ── Layer 2: global config ───────────────────────────────────────────
	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath = filepath.Join(home, ".config", "ctxpack", "config.toml")
		}
	}

	if globalPath != "" {
		found, err := loadFileLayer(k, globalPath, profileName, sources, SourceGlobal)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	// ── Layer 3: repo config OR standalone profile file ──────────────────
	if opts.ProfileFile != "" {
		found, err := loadFileLayer(k, opts.ProfileFile, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("profile %q not found in profile file %s", profileName, opts.ProfileFile)
		}
		profileFound = true
	} else {
		targetDir := opts.TargetDir
		if targetDir == "" {
			targetDir = "."
		}
		repoConfigPath := filepath.Join(targetDir, "ctxpack.toml")
		found, err := loadFileLayer(k, repoConfigPath, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	if profileName != "default" && !profileFound {
		return nil, fmt.Errorf("profile %q not found in any config file", profileName)
	}

	// ── Layer 4: environment variables ───────────────────────────────────
	envMap := buildEnvMap()
	if len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	// ── Apply target preset (after env, before CLI flags) ────────────────
	if target := k.String("target"); target != "" {
		presetProfile := flatMapToProfile(k)
		if err := ApplyTargetPreset(presetProfile, target); err != nil {
			return nil, fmt.Errorf("applying target preset: %w", err)
		}
		if err := loadLayer(k, profileToFlatMap(presetProfile), sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading target preset: %w", err)
		}
	}

	// ── Layer 5: CLI flags ────────────────────────────────────────────────
	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	finalProfile := flatMapToProfile(k)

	slog.Debug("config resolved",
		"profile", profileName,
		"format", finalProfile.Format,
		"selection", finalProfile.Selection,
		"target", finalProfile.Target,
	)

	return &ResolvedConfig{
		Profile:     finalProfile,
		Sources:     sources,
		ProfileName: profileName,
	}, nil
}

func loadFileLayer(k *koanf.Koanf, path, profileName string, sources SourceMap, src Source) (bool, error) {
	flat, err := extractProfileFlat(path, profileName)
	if err != nil {
		return false, fmt.Errorf("loading config %s: %w", path, err)
	}
	if flat == nil {
		return false, nil
	}

	slog.Debug("loading profile from config",
		"profile", profileName,
		"path", path,
		"source", src.String(),
	)

	if err := loadLayer(k, flat, sources, src); err != nil {
		return false, err
	}
	return true, nil
}

// extractProfileFlat parses a TOML config file into a raw Go map and returns
// a flat koanf-compatible map containing only the fields that are explicitly
// present in the TOML for the given profile. Returns nil if the file does
// not exist or the profile is not found in the file.
func extractProfileFlat(path, profileName string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	profilesRaw, ok := raw["profile"].(map[string]interface{})
	if !ok {
		available := listConfigProfileNames(path)
		slog.Debug("no [profile] section in config",
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	profileRaw, ok := profilesRaw[profileName].(map[string]interface{})
	if !ok {
		available := make([]string, 0, len(profilesRaw))
		for name := range profilesRaw {
			available = append(available, name)
		}
		sort.Strings(available)
		slog.Debug("profile not found in config",
			"profile", profileName,
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	return flattenProfileRaw(profileRaw), nil
}

func listConfigProfileNames(path string) []string {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil
	}
	profiles, ok := raw["profile"].(map[string]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flattenProfileRaw converts a raw TOML profile map (as decoded by
// BurntSushi/toml into map[string]interface{}) into a flat koanf-compatible
// map. Only fields explicitly present in the raw map are included.
func flattenProfileRaw(raw map[string]interface{}) map[string]any {
	flat := make(map[string]any)

	for _, key := range []string{"output", "format", "target", "selection", "token_encoding"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	for _, key := range []string{"worker_count", "run_deadline_seconds"} {
		if v, ok := raw[key]; ok {
			flat[key] = rawToInt(v)
		}
	}
	if v, ok := raw["max_output_bytes"]; ok {
		flat["max_output_bytes"] = rawToInt64(v)
	}

	for _, key := range []string{"verbose", "show_timing", "count_tokens", "tokens_only"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	for _, key := range []string{"include", "exclude"} {
		if v, ok := raw[key]; ok {
			flat[key] = rawToStringSlice(v)
		}
	}

	if scoringRaw, ok := raw["scoring"].(map[string]interface{}); ok {
		flattenScoringRaw(scoringRaw, flat)
	}
	if summRaw, ok := raw["summarization"].(map[string]interface{}); ok {
		flattenSummarizationRaw(summRaw, flat)
	}

	return flat
}

func flattenScoringRaw(raw map[string]interface{}, flat map[string]any) {
	floatKeys := []string{
		"weight_root", "weight_top_dir", "weight_entry_point", "weight_graph",
		"weight_type_source", "weight_type_config", "weight_type_docs",
		"weight_type_test", "weight_recency", "weight_size_inv", "weight_density",
		"inclusion_threshold",
	}
	for _, key := range floatKeys {
		if v, ok := raw[key]; ok {
			flat["scoring."+key] = rawToFloat(v)
		}
	}
	if v, ok := raw["recent_window_days"]; ok {
		flat["scoring.recent_window_days"] = rawToInt(v)
	}
	if v, ok := raw["large_file_threshold_bytes"]; ok {
		flat["scoring.large_file_threshold_bytes"] = rawToInt64(v)
	}
	if v, ok := raw["use_syntax_tree"]; ok {
		flat["scoring.use_syntax_tree"] = v
	}
	sliceKeys := []string{
		"important_files", "important_dirs", "source_extensions",
		"config_extensions", "docs_extensions", "test_patterns",
	}
	for _, key := range sliceKeys {
		if v, ok := raw[key]; ok {
			flat["scoring."+key] = rawToStringSlice(v)
		}
	}
}

func flattenSummarizationRaw(raw map[string]interface{}, flat map[string]any) {
	boolKeys := []string{"enabled", "signatures", "docstrings", "snippets", "readme_passthrough", "use_syntax_tree"}
	for _, key := range boolKeys {
		if v, ok := raw[key]; ok {
			flat["summarization."+key] = v
		}
	}
	intKeys := []string{"first_n_lines", "snippets_count", "max_summary_lines"}
	for _, key := range intKeys {
		if v, ok := raw[key]; ok {
			flat["summarization."+key] = rawToInt(v)
		}
	}
	if v, ok := raw["file_size_threshold_bytes"]; ok {
		flat["summarization.file_size_threshold_bytes"] = rawToInt64(v)
	}

	if nerRaw, ok := raw["ner"].(map[string]interface{}); ok {
		nerBoolKeys := []string{
			"enabled", "include_classes", "include_functions", "include_variables",
			"include_enums", "include_imports", "group_by_kind", "cache_enabled",
		}
		for _, key := range nerBoolKeys {
			if v, ok := nerRaw[key]; ok {
				flat["summarization.ner."+key] = v
			}
		}
		if v, ok := nerRaw["method"]; ok {
			flat["summarization.ner.method"] = v
		}
		if v, ok := nerRaw["ml_model_path"]; ok {
			flat["summarization.ner.ml_model_path"] = v
		}
		if v, ok := nerRaw["max_entities"]; ok {
			flat["summarization.ner.max_entities"] = rawToInt(v)
		}
		if v, ok := nerRaw["ml_time_budget_ms"]; ok {
			flat["summarization.ner.ml_time_budget_ms"] = rawToInt(v)
		}
		if v, ok := nerRaw["ml_size_threshold_bytes"]; ok {
			flat["summarization.ner.ml_size_threshold_bytes"] = rawToInt64(v)
		}
		if v, ok := nerRaw["ml_confidence"]; ok {
			flat["summarization.ner.ml_confidence"] = rawToFloat(v)
		}
	}
}

func rawToInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func rawToInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func rawToFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// rawToStringSlice converts a raw TOML array value ([]interface{}) into
// []string. Returns nil for unrecognised types.
func rawToStringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// loadLayer merges a flat map into k and marks every key in the map as
// originating from src.
func loadLayer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// profileToFlatMap converts a Profile to a flat map for koanf's confmap
// provider. All fields are included (used for the defaults layer, where
// every field has an authoritative default value).
func profileToFlatMap(p *Profile) map[string]any {
	return map[string]any{
		"output":               p.Output,
		"format":               p.Format,
		"target":               p.Target,
		"worker_count":         p.WorkerCount,
		"verbose":              p.Verbose,
		"show_timing":          p.ShowTiming,
		"include":              p.Include,
		"exclude":              p.Exclude,
		"selection":            p.Selection,
		"count_tokens":         p.CountTokens,
		"token_encoding":       p.TokenEncoding,
		"tokens_only":          p.TokensOnly,
		"run_deadline_seconds": p.RunDeadlineSeconds,
		"max_output_bytes":     p.MaxOutputBytes,

		"scoring.weight_root":                p.Scoring.WeightRoot,
		"scoring.weight_top_dir":             p.Scoring.WeightTopDir,
		"scoring.weight_entry_point":         p.Scoring.WeightEntryPoint,
		"scoring.weight_graph":               p.Scoring.WeightGraph,
		"scoring.weight_type_source":         p.Scoring.WeightTypeSource,
		"scoring.weight_type_config":         p.Scoring.WeightTypeConfig,
		"scoring.weight_type_docs":           p.Scoring.WeightTypeDocs,
		"scoring.weight_type_test":           p.Scoring.WeightTypeTest,
		"scoring.weight_recency":             p.Scoring.WeightRecency,
		"scoring.weight_size_inv":            p.Scoring.WeightSizeInv,
		"scoring.weight_density":             p.Scoring.WeightDensity,
		"scoring.recent_window_days":         p.Scoring.RecentWindowDays,
		"scoring.large_file_threshold_bytes": p.Scoring.LargeFileThresholdBytes,
		"scoring.inclusion_threshold":        p.Scoring.InclusionThreshold,
		"scoring.important_files":            p.Scoring.ImportantFiles,
		"scoring.important_dirs":             p.Scoring.ImportantDirs,
		"scoring.source_extensions":          p.Scoring.SourceExtensions,
		"scoring.config_extensions":          p.Scoring.ConfigExtensions,
		"scoring.docs_extensions":            p.Scoring.DocsExtensions,
		"scoring.test_patterns":              p.Scoring.TestPatterns,
		"scoring.use_syntax_tree":            p.Scoring.UseSyntaxTree,

		"summarization.enabled":                   p.Summarization.Enabled,
		"summarization.first_n_lines":              p.Summarization.FirstNLines,
		"summarization.signatures":                 p.Summarization.Signatures,
		"summarization.docstrings":                 p.Summarization.Docstrings,
		"summarization.snippets":                   p.Summarization.Snippets,
		"summarization.snippets_count":             p.Summarization.SnippetsCount,
		"summarization.readme_passthrough":         p.Summarization.ReadmePassthrough,
		"summarization.use_syntax_tree":            p.Summarization.UseSyntaxTree,
		"summarization.file_size_threshold_bytes":  p.Summarization.FileSizeThresholdBytes,
		"summarization.max_summary_lines":          p.Summarization.MaxSummaryLines,

		"summarization.ner.enabled":                 p.Summarization.NER.Enabled,
		"summarization.ner.method":                  p.Summarization.NER.Method,
		"summarization.ner.include_classes":         p.Summarization.NER.IncludeClasses,
		"summarization.ner.include_functions":       p.Summarization.NER.IncludeFunctions,
		"summarization.ner.include_variables":       p.Summarization.NER.IncludeVariables,
		"summarization.ner.include_enums":           p.Summarization.NER.IncludeEnums,
		"summarization.ner.include_imports":         p.Summarization.NER.IncludeImports,
		"summarization.ner.max_entities":            p.Summarization.NER.MaxEntities,
		"summarization.ner.group_by_kind":           p.Summarization.NER.GroupByKind,
		"summarization.ner.ml_model_path":           p.Summarization.NER.MLModelPath,
		"summarization.ner.ml_size_threshold_bytes": p.Summarization.NER.MLSizeThresholdBytes,
		"summarization.ner.ml_confidence":           p.Summarization.NER.MLConfidence,
		"summarization.ner.ml_time_budget_ms":       p.Summarization.NER.MLTimeBudgetMS,
		"summarization.ner.cache_enabled":           p.Summarization.NER.CacheEnabled,
	}
}

// flatMapToProfile converts the current koanf state into a Profile struct.
func flatMapToProfile(k *koanf.Koanf) *Profile {
	return &Profile{
		Output:             k.String("output"),
		Format:             k.String("format"),
		Target:             k.String("target"),
		WorkerCount:        k.Int("worker_count"),
		Verbose:            k.Bool("verbose"),
		ShowTiming:         k.Bool("show_timing"),
		Include:            k.Strings("include"),
		Exclude:            k.Strings("exclude"),
		Selection:          k.String("selection"),
		CountTokens:        k.Bool("count_tokens"),
		TokenEncoding:      k.String("token_encoding"),
		TokensOnly:         k.Bool("tokens_only"),
		RunDeadlineSeconds: k.Int("run_deadline_seconds"),
		MaxOutputBytes:     k.Int64("max_output_bytes"),

		Scoring: ScoringConfig{
			WeightRoot:              k.Float64("scoring.weight_root"),
			WeightTopDir:            k.Float64("scoring.weight_top_dir"),
			WeightEntryPoint:        k.Float64("scoring.weight_entry_point"),
			WeightGraph:             k.Float64("scoring.weight_graph"),
			WeightTypeSource:        k.Float64("scoring.weight_type_source"),
			WeightTypeConfig:        k.Float64("scoring.weight_type_config"),
			WeightTypeDocs:          k.Float64("scoring.weight_type_docs"),
			WeightTypeTest:          k.Float64("scoring.weight_type_test"),
			WeightRecency:           k.Float64("scoring.weight_recency"),
			WeightSizeInv:           k.Float64("scoring.weight_size_inv"),
			WeightDensity:           k.Float64("scoring.weight_density"),
			RecentWindowDays:        k.Int("scoring.recent_window_days"),
			LargeFileThresholdBytes: k.Int64("scoring.large_file_threshold_bytes"),
			InclusionThreshold:      k.Float64("scoring.inclusion_threshold"),
			ImportantFiles:          k.Strings("scoring.important_files"),
			ImportantDirs:           k.Strings("scoring.important_dirs"),
			SourceExtensions:        k.Strings("scoring.source_extensions"),
			ConfigExtensions:        k.Strings("scoring.config_extensions"),
			DocsExtensions:          k.Strings("scoring.docs_extensions"),
			TestPatterns:            k.Strings("scoring.test_patterns"),
			UseSyntaxTree:           k.Bool("scoring.use_syntax_tree"),
		},

		Summarization: SummarizationOptions{
			Enabled:                override(k, "summarization.enabled"),
			FirstNLines:            k.Int("summarization.first_n_lines"),
			Signatures:             override(k, "summarization.signatures"),
			Docstrings:             override(k, "summarization.docstrings"),
			Snippets:               override(k, "summarization.snippets"),
			SnippetsCount:          k.Int("summarization.snippets_count"),
			ReadmePassthrough:      override(k, "summarization.readme_passthrough"),
			UseSyntaxTree:          override(k, "summarization.use_syntax_tree"),
			FileSizeThresholdBytes: k.Int64("summarization.file_size_threshold_bytes"),
			MaxSummaryLines:        k.Int("summarization.max_summary_lines"),
			NER: NEROptions{
				Enabled:              override(k, "summarization.ner.enabled"),
				Method:               k.String("summarization.ner.method"),
				IncludeClasses:       override(k, "summarization.ner.include_classes"),
				IncludeFunctions:     override(k, "summarization.ner.include_functions"),
				IncludeVariables:     override(k, "summarization.ner.include_variables"),
				IncludeEnums:         override(k, "summarization.ner.include_enums"),
				IncludeImports:       override(k, "summarization.ner.include_imports"),
				MaxEntities:          k.Int("summarization.ner.max_entities"),
				GroupByKind:          override(k, "summarization.ner.group_by_kind"),
				MLModelPath:          k.String("summarization.ner.ml_model_path"),
				MLSizeThresholdBytes: k.Int64("summarization.ner.ml_size_threshold_bytes"),
				MLConfidence:         k.Float64("summarization.ner.ml_confidence"),
				MLTimeBudgetMS:       k.Int("summarization.ner.ml_time_budget_ms"),
				CacheEnabled:         override(k, "summarization.ner.cache_enabled"),
			},
		},
	}
}

// override reads a bool key from koanf, defaulting to false when absent --
// a thin wrapper kept to make the flatMapToProfile bool reads visually
// consistent with the other typed readers above.
func override(k *koanf.Koanf, key string) bool {
	return k.Bool(key)
}
