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

func allKinds() config.NEROptions {
	return config.NEROptions{
		IncludeClasses:   true,
		IncludeFunctions: true,
		IncludeVariables: true,
		IncludeEnums:     true,
		IncludeImports:   true,
	}
}

func TestRegexBackend_ExtractsGoEntities(t *testing.T) {
	t.Parallel()

	src := `package main

import "fmt"

type Widget struct{}

func NewWidget() *Widget {
	return &Widget{}
}

var DefaultName = "widget"
`
	b := ner.NewRegexBackend(allKinds())
	entities, err := b.Extract(context.Background(), src, "widget.go")
	require.NoError(t, err)

	names := map[string]pipeline.NamedEntityKind{}
	for _, e := range entities {
		names[e.Name] = e.Kind
	}
	assert.Equal(t, pipeline.EntityClass, names["Widget"])
	assert.Equal(t, pipeline.EntityFunction, names["NewWidget"])
	assert.Equal(t, pipeline.EntityVariable, names["DefaultName"])
}

func TestRegexBackend_UnknownLanguageReturnsNoEntities(t *testing.T) {
	t.Parallel()

	b := ner.NewRegexBackend(allKinds())
	entities, err := b.Extract(context.Background(), "some content", "notes.txt")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestRegexBackend_RespectsKindFilters(t *testing.T) {
	t.Parallel()

	opts := config.NEROptions{IncludeClasses: true}
	b := ner.NewRegexBackend(opts)
	entities, err := b.Extract(context.Background(), "type Widget struct{}\nfunc F() {}\n", "w.go")
	require.NoError(t, err)

	for _, e := range entities {
		assert.Equal(t, pipeline.EntityClass, e.Kind)
	}
}

func TestRegexBackend_RespectsMaxEntities(t *testing.T) {
	t.Parallel()

	opts := allKinds()
	opts.MaxEntities = 1
	b := ner.NewRegexBackend(opts)
	entities, err := b.Extract(context.Background(), "func A() {}\nfunc B() {}\n", "w.go")
	require.NoError(t, err)
	assert.Len(t, entities, 1)
}
