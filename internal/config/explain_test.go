package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *Profile {
	return &Profile{
		Include: nil,
		Exclude: []string{"**/*.lock", "node_modules/**"},
		Scoring: ScoringConfig{
			ImportantFiles:   []string{"README.md", "go.mod"},
			ImportantDirs:    []string{"cmd", "internal"},
			SourceExtensions: []string{"**/*.go"},
			ConfigExtensions: []string{"**/*.toml", "**/*.yaml"},
			DocsExtensions:   []string{"**/*.md"},
			TestPatterns:     []string{"**/testdata/**"},
		},
		Summarization: SummarizationOptions{Enabled: true},
	}
}

func TestExplainFile_ExcludedByExcludePattern(t *testing.T) {
	t.Parallel()
	result := ExplainFile("yarn.lock", "default", testProfile())

	assert.False(t, result.Included)
	assert.Contains(t, result.ExcludedBy, "exclude pattern")
	assert.Contains(t, result.ExcludedBy, `"**/*.lock"`)
}

func TestExplainFile_ExcludedByIncludeFilter(t *testing.T) {
	t.Parallel()
	p := testProfile()
	p.Include = []string{"**/*.py"}

	result := ExplainFile("main.go", "default", p)

	assert.False(t, result.Included)
	assert.Contains(t, result.ExcludedBy, "include filter")
}

func TestExplainFile_IncludedAndClassifiedSource(t *testing.T) {
	t.Parallel()
	result := ExplainFile("internal/pipeline/pipeline.go", "default", testProfile())

	require.True(t, result.Included)
	assert.Equal(t, "source", result.TypeBucket)
	assert.Equal(t, "**/*.go", result.TypeBucketPattern)
	assert.True(t, result.IsTopDir, "internal/ is in important_dirs")
	assert.Equal(t, "go", result.Language)
	assert.True(t, result.WillSummarize)
}

func TestExplainFile_ClassifiedTest(t *testing.T) {
	t.Parallel()
	result := ExplainFile("internal/pipeline/testdata/fixture.json", "default", testProfile())

	require.True(t, result.Included)
	assert.Equal(t, "test", result.TypeBucket)
}

func TestExplainFile_RootMatch(t *testing.T) {
	t.Parallel()
	result := ExplainFile("README.md", "default", testProfile())

	require.True(t, result.Included)
	assert.True(t, result.IsRoot)
	assert.Equal(t, "docs", result.TypeBucket)
}

func TestExplainFile_UnclassifiedNonSourceNotSummarized(t *testing.T) {
	t.Parallel()
	result := ExplainFile("assets/logo.png", "default", testProfile())

	require.True(t, result.Included)
	assert.Equal(t, "", result.TypeBucket)
	assert.False(t, result.WillSummarize)
}

func TestExplainFile_SummarizationDisabled(t *testing.T) {
	t.Parallel()
	p := testProfile()
	p.Summarization.Enabled = false

	result := ExplainFile("main.go", "default", p)

	assert.False(t, result.WillSummarize)
}

func TestExplainFile_ExtendsPropagated(t *testing.T) {
	t.Parallel()
	parent := "base"
	p := testProfile()
	p.Extends = &parent

	result := ExplainFile("main.go", "child", p)

	assert.Equal(t, "base", result.Extends)
}

func TestExplainFile_TraceStepsNumberedSequentially(t *testing.T) {
	t.Parallel()
	result := ExplainFile("main.go", "default", testProfile())

	for i, step := range result.Trace {
		assert.Equal(t, i+1, step.StepNum)
	}
}

func TestTopLevelDir(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "internal", topLevelDir("internal/pipeline/pipeline.go"))
	assert.Equal(t, "", topLevelDir("README.md"))
}
