// Package ner extracts named entities (classes, functions, variables,
// enums, imports) from source content for the Summarizer's entities
// section. Four backends share one Backend contract: Regex (fast,
// always available), SyntaxTree (tree-sitter grammars, precise),
// ML (wazero-hosted model, feature-gated), and Hybrid (dispatches
// between SyntaxTree and Regex).
package ner

import (
	"context"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// Backend extracts named entities from a file's content.
type Backend interface {
	Extract(ctx context.Context, content, path string) ([]pipeline.NamedEntity, error)
}

// New builds the configured Backend. An unrecognized method falls back to
// Regex, the same default the Hybrid backend uses for files it cannot
// otherwise classify.
func New(opts config.NEROptions) Backend {
	regex := NewRegexBackend(opts)

	switch opts.Method {
	case "regex", "":
		return WithCache(regex, opts)
	case "syntax_tree":
		return WithCache(NewSyntaxTreeBackend(opts, regex), opts)
	case "ml":
		return WithCache(NewMLBackend(opts, regex), opts)
	case "hybrid":
		return WithCache(NewHybridBackend(opts, regex), opts)
	default:
		return WithCache(regex, opts)
	}
}

// filterByOptions drops entity kinds the caller disabled and caps the
// result at opts.MaxEntities, matching every backend's shared
// post-processing step.
func filterByOptions(entities []pipeline.NamedEntity, opts config.NEROptions) []pipeline.NamedEntity {
	out := make([]pipeline.NamedEntity, 0, len(entities))
	for _, e := range entities {
		if !kindEnabled(e.Kind, opts) {
			continue
		}
		out = append(out, e)
		if opts.MaxEntities > 0 && len(out) >= opts.MaxEntities {
			break
		}
	}
	return out
}

func kindEnabled(kind pipeline.NamedEntityKind, opts config.NEROptions) bool {
	switch kind {
	case pipeline.EntityClass:
		return opts.IncludeClasses
	case pipeline.EntityFunction:
		return opts.IncludeFunctions
	case pipeline.EntityVariable:
		return opts.IncludeVariables
	case pipeline.EntityEnum:
		return opts.IncludeEnums
	case pipeline.EntityImport:
		return opts.IncludeImports
	default:
		return true
	}
}
