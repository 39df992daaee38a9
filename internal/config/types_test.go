package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_TOMLUnmarshal_SingleProfile(t *testing.T) {
	t.Parallel()
	data := `
[profile.default]
output = "out.md"
format = "markdown"
worker_count = 8
verbose = true
include = ["**/*.go"]

[profile.default.scoring]
weight_root = 0.2
important_files = ["README.md"]

[profile.default.summarization]
enabled = true
first_n_lines = 10

[profile.default.summarization.ner]
enabled = true
method = "syntax_tree"
`
	var cfg Config
	_, err := toml.Decode(data, &cfg)
	require.NoError(t, err)

	require.Contains(t, cfg.Profile, "default")
	p := cfg.Profile["default"]
	assert.Equal(t, "out.md", p.Output)
	assert.Equal(t, "markdown", p.Format)
	assert.Equal(t, 8, p.WorkerCount)
	assert.True(t, p.Verbose)
	assert.Equal(t, []string{"**/*.go"}, p.Include)
	assert.InDelta(t, 0.2, p.Scoring.WeightRoot, 0.0001)
	assert.Equal(t, []string{"README.md"}, p.Scoring.ImportantFiles)
	assert.True(t, p.Summarization.Enabled)
	assert.Equal(t, 10, p.Summarization.FirstNLines)
	assert.True(t, p.Summarization.NER.Enabled)
	assert.Equal(t, "syntax_tree", p.Summarization.NER.Method)
}

func TestConfig_TOMLUnmarshal_Extends(t *testing.T) {
	t.Parallel()
	data := `
[profile.base]
format = "xml"

[profile.child]
extends = "base"
output = "child-out.md"
`
	var cfg Config
	_, err := toml.Decode(data, &cfg)
	require.NoError(t, err)

	require.Contains(t, cfg.Profile, "child")
	require.NotNil(t, cfg.Profile["child"].Extends)
	assert.Equal(t, "base", *cfg.Profile["child"].Extends)
}

func TestConfig_TOMLUnmarshal_MultipleProfiles(t *testing.T) {
	t.Parallel()
	data := `
[profile.default]
format = "plain"

[profile.ci]
format = "xml"
selection = "scoring"
`
	var cfg Config
	_, err := toml.Decode(data, &cfg)
	require.NoError(t, err)

	assert.Len(t, cfg.Profile, 2)
	assert.Equal(t, "plain", cfg.Profile["default"].Format)
	assert.Equal(t, "scoring", cfg.Profile["ci"].Selection)
}

func TestProfile_ZeroValueIsEmpty(t *testing.T) {
	t.Parallel()
	var p Profile

	assert.Nil(t, p.Extends)
	assert.Equal(t, "", p.Output)
	assert.Equal(t, 0, p.WorkerCount)
	assert.Nil(t, p.Include)
	assert.Nil(t, p.Exclude)
	assert.Equal(t, ScoringConfig{}, p.Scoring)
	assert.Equal(t, SummarizationOptions{}, p.Summarization)
}

func TestScoringConfig_TOMLFieldNames(t *testing.T) {
	t.Parallel()
	data := `
weight_top_dir = 0.5
weight_entry_point = 0.3
recent_window_days = 14
large_file_threshold_bytes = 2048
inclusion_threshold = 0.4
source_extensions = ["*.go"]
use_syntax_tree = true
`
	var s ScoringConfig
	_, err := toml.Decode(data, &s)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.WeightTopDir, 0.0001)
	assert.InDelta(t, 0.3, s.WeightEntryPoint, 0.0001)
	assert.Equal(t, 14, s.RecentWindowDays)
	assert.Equal(t, int64(2048), s.LargeFileThresholdBytes)
	assert.InDelta(t, 0.4, s.InclusionThreshold, 0.0001)
	assert.Equal(t, []string{"*.go"}, s.SourceExtensions)
	assert.True(t, s.UseSyntaxTree)
}

func TestNEROptions_TOMLFieldNames(t *testing.T) {
	t.Parallel()
	data := `
enabled = true
method = "ml"
include_classes = true
include_variables = true
max_entities = 25
ml_model_path = "/models/ner.wasm"
ml_confidence = 0.75
ml_time_budget_ms = 150
cache_enabled = false
`
	var n NEROptions
	_, err := toml.Decode(data, &n)
	require.NoError(t, err)

	assert.True(t, n.Enabled)
	assert.Equal(t, "ml", n.Method)
	assert.True(t, n.IncludeClasses)
	assert.True(t, n.IncludeVariables)
	assert.Equal(t, 25, n.MaxEntities)
	assert.Equal(t, "/models/ner.wasm", n.MLModelPath)
	assert.InDelta(t, 0.75, n.MLConfidence, 0.0001)
	assert.Equal(t, 150, n.MLTimeBudgetMS)
	assert.False(t, n.CacheEnabled)
}
