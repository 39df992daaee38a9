package ner

import (
	"context"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/langdetect"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// hybridSyntaxTreeLanguages are the languages HybridBackend routes to
// SyntaxTreeBackend; everything else goes straight to regex, which is
// cheaper and sufficient for files the syntax-tree grammars don't cover.
var hybridSyntaxTreeLanguages = map[string]bool{
	"python":     true,
	"javascript": true,
	"typescript": true,
	"cpp":        true,
}

// hybridSyntaxTreeSizeCeiling bounds how large a file HybridBackend will
// still parse with tree-sitter; beyond this, parsing cost outweighs the
// precision gain over regex.
const hybridSyntaxTreeSizeCeiling = 512 * 1024

// HybridBackend dispatches between SyntaxTreeBackend and RegexBackend by
// file extension and size: precise parsing for the languages and sizes
// where it is cheap, regex everywhere else.
type HybridBackend struct {
	syntaxTree Backend
	regex      Backend
}

// NewHybridBackend constructs a HybridBackend.
func NewHybridBackend(opts config.NEROptions, regex Backend) *HybridBackend {
	return &HybridBackend{
		syntaxTree: NewSyntaxTreeBackend(opts, regex),
		regex:      regex,
	}
}

// Extract routes to SyntaxTreeBackend for supported languages under the
// size ceiling, and to RegexBackend otherwise.
func (b *HybridBackend) Extract(ctx context.Context, content, path string) ([]pipeline.NamedEntity, error) {
	language := langdetect.Detect(path)
	if hybridSyntaxTreeLanguages[language] && len(content) <= hybridSyntaxTreeSizeCeiling {
		return b.syntaxTree.Extract(ctx, content, path)
	}
	return b.regex.Extract(ctx, content, path)
}
