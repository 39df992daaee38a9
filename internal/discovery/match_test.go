package discovery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ctxpack/ctxpack/internal/discovery"
)

func TestFirstMatch(t *testing.T) {
	t.Parallel()

	pattern, matched := discovery.FirstMatch([]string{"**/*.md", "**/*.go"}, "main.go")
	assert.True(t, matched)
	assert.Equal(t, "**/*.go", pattern)

	_, matched = discovery.FirstMatch([]string{"**/*.md"}, "main.go")
	assert.False(t, matched)
}

func TestMatchAny_InvalidPatternIsNonMatch(t *testing.T) {
	t.Parallel()
	assert.False(t, discovery.MatchAny([]string{"["}, "anything"))
}

func TestMatchAny_SkipsInvalidPatternAndChecksRest(t *testing.T) {
	t.Parallel()
	assert.True(t, discovery.MatchAny([]string{"[", "*.go"}, "main.go"))
}

func TestClassifyType_PriorityOrderSourceBeforeConfig(t *testing.T) {
	t.Parallel()

	patterns := discovery.TypeBucketPatterns{
		Source: []string{"**/*.go"},
		Config: []string{"**/*.go"}, // deliberately overlapping
	}
	bucket, pattern, matched := discovery.ClassifyType("main.go", patterns)
	assert.True(t, matched)
	assert.Equal(t, discovery.BucketSource, bucket)
	assert.Equal(t, "**/*.go", pattern)
}

func TestClassifyType_NoMatchReturnsBucketNone(t *testing.T) {
	t.Parallel()

	bucket, _, matched := discovery.ClassifyType("logo.png", discovery.TypeBucketPatterns{
		Source: []string{"**/*.go"},
	})
	assert.False(t, matched)
	assert.Equal(t, discovery.BucketNone, bucket)
}
