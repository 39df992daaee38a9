package ner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/ner"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

type countingBackend struct {
	calls int
}

func (c *countingBackend) Extract(_ context.Context, content, path string) ([]pipeline.NamedEntity, error) {
	c.calls++
	return []pipeline.NamedEntity{{Name: "x", Kind: pipeline.EntityFunction}}, nil
}

func TestWithCache_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	inner := &countingBackend{}
	b := ner.WithCache(inner, config.NEROptions{CacheEnabled: false})
	assert.Same(t, inner, b)
}

func TestWithCache_DeduplicatesRepeatedContent(t *testing.T) {
	t.Parallel()

	inner := &countingBackend{}
	b := ner.WithCache(inner, config.NEROptions{CacheEnabled: true, Method: "regex"})

	_, err := b.Extract(context.Background(), "same content", "a.go")
	require.NoError(t, err)
	_, err = b.Extract(context.Background(), "same content", "b.go")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestWithCache_DifferentContentMisses(t *testing.T) {
	t.Parallel()

	inner := &countingBackend{}
	b := ner.WithCache(inner, config.NEROptions{CacheEnabled: true, Method: "regex"})

	_, _ = b.Extract(context.Background(), "content one", "a.go")
	_, _ = b.Extract(context.Background(), "content two", "a.go")

	assert.Equal(t, 2, inner.calls)
}
