package ner

import (
	"context"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tscpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tsjavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/langdetect"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// treeSitterLang bundles one language's compiled Query together with the
// capture-name -> entity-kind mapping SyntaxTreeBackend.Extract uses to
// interpret matches, following the per-language setup idiom of building a
// parser once and reusing it across files.
type treeSitterLang struct {
	language *sitter.Language
	query    *sitter.Query
	kindOf   map[string]pipeline.NamedEntityKind
}

// syntaxTreeQueries holds the capture query source per supported grammar.
// Only python, javascript, and cpp bindings are wired here: these are the
// grammars retrieved for this project; C and every other language fall back
// to RegexBackend.
var syntaxTreeQueries = map[string]string{
	"python": `
		(class_definition name: (identifier) @class.name) @class
		(function_definition name: (identifier) @function.name) @function
		(import_from_statement) @import
		(import_statement) @import
	`,
	"javascript": `
		(class_declaration name: (identifier) @class.name) @class
		(function_declaration name: (identifier) @function.name) @function
		(variable_declarator name: (identifier) @variable.name) @variable
		(import_statement) @import
	`,
	"cpp": `
		(class_specifier name: (type_identifier) @class.name) @class
		(struct_specifier name: (type_identifier) @class.name) @class
		(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function
		(enum_specifier name: (type_identifier) @enum.name) @enum
		(preproc_include path: (_) @import.name) @import
	`,
}

// SyntaxTreeBackend extracts entities via tree-sitter grammars for the
// languages this project bundles bindings for, falling back to a
// RegexBackend for everything else.
type SyntaxTreeBackend struct {
	opts     config.NEROptions
	fallback Backend
	langs    map[string]*treeSitterLang
}

// NewSyntaxTreeBackend constructs a SyntaxTreeBackend, compiling each
// bundled grammar's query once at construction time.
func NewSyntaxTreeBackend(opts config.NEROptions, fallback Backend) *SyntaxTreeBackend {
	b := &SyntaxTreeBackend{opts: opts, fallback: fallback, langs: make(map[string]*treeSitterLang)}

	setups := []struct {
		name     string
		language func() *sitter.Language
	}{
		{"python", func() *sitter.Language { return sitter.NewLanguage(tspython.Language()) }},
		{"javascript", func() *sitter.Language { return sitter.NewLanguage(tsjavascript.Language()) }},
		{"cpp", func() *sitter.Language { return sitter.NewLanguage(tscpp.Language()) }},
	}

	for _, setup := range setups {
		language := setup.language()
		query, err := sitter.NewQuery(language, syntaxTreeQueries[setup.name])
		if err != nil {
			// A grammar/query mismatch degrades to the regex fallback for
			// this language rather than failing the whole backend.
			continue
		}
		b.langs[setup.name] = &treeSitterLang{
			language: language,
			query:    query,
			kindOf: map[string]pipeline.NamedEntityKind{
				"class.name":    pipeline.EntityClass,
				"function.name": pipeline.EntityFunction,
				"variable.name": pipeline.EntityVariable,
				"enum.name":     pipeline.EntityEnum,
				"import.name":   pipeline.EntityImport,
				"import":        pipeline.EntityImport,
			},
		}
	}

	return b
}

// Extract parses content with the grammar matching path's detected
// language and walks the query matches into NamedEntity values. Unsupported
// languages route to the fallback backend.
func (b *SyntaxTreeBackend) Extract(ctx context.Context, content, path string) ([]pipeline.NamedEntity, error) {
	language := langdetect.Detect(path)
	tsl, ok := b.langs[language]
	if !ok {
		return b.fallback.Extract(ctx, content, path)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tsl.language); err != nil {
		return b.fallback.Extract(ctx, content, path)
	}

	src := []byte(content)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return b.fallback.Extract(ctx, content, path)
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(tsl.query, tree.RootNode(), src)
	captureNames := tsl.query.CaptureNames()

	var entities []pipeline.NamedEntity
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, c := range match.Captures {
			name := captureNames[c.Index]
			kind, ok := tsl.kindOf[name]
			if !ok {
				continue
			}
			text := string(src[c.Node.StartByte():c.Node.EndByte()])
			if text == "" {
				continue
			}
			entities = append(entities, pipeline.NamedEntity{Name: text, Kind: kind})
		}
	}

	if len(entities) == 0 {
		return b.fallback.Extract(ctx, content, path)
	}
	return filterByOptions(entities, b.opts), nil
}
