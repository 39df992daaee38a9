package ner

import (
	"context"
	"regexp"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/langdetect"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// entityPattern pairs a regex with the entity kind it identifies and the
// index of the capture group holding the entity's name.
type entityPattern struct {
	re        *regexp.Regexp
	kind      pipeline.NamedEntityKind
	nameGroup int
}

// patternsByLanguage is the Regex backend's per-language entity table. It
// is the fallback every other backend (SyntaxTree for unsupported
// extensions, ML when unavailable) eventually routes to, so it covers the
// broadest language set.
var patternsByLanguage = map[string][]entityPattern{
	"go": {
		{regexp.MustCompile(`^\s*type\s+(\w+)\s+struct\b`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*type\s+(\w+)\s+interface\b`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*(?:var|const)\s+(\w+)\b`), pipeline.EntityVariable, 1},
		{regexp.MustCompile(`^\s*"([\w./-]+)"`), pipeline.EntityImport, 1},
	},
	"python": {
		{regexp.MustCompile(`^\s*class\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*def\s+(\w+)`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*([A-Z_][A-Z0-9_]*)\s*=`), pipeline.EntityVariable, 1},
		{regexp.MustCompile(`^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`), pipeline.EntityImport, 1},
	},
	"javascript": {
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?class\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)`), pipeline.EntityVariable, 1},
		{regexp.MustCompile(`(?:from\s+|require\()\s*['"]([^'"]+)['"]`), pipeline.EntityImport, 1},
	},
	"typescript": {
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:class|interface)\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)`), pipeline.EntityVariable, 1},
		{regexp.MustCompile(`^\s*(?:export\s+)?enum\s+(\w+)`), pipeline.EntityEnum, 1},
		{regexp.MustCompile(`(?:from\s+|require\()\s*['"]([^'"]+)['"]`), pipeline.EntityImport, 1},
	},
	"rust": {
		{regexp.MustCompile(`^\s*(?:pub\s+)?struct\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*(?:pub\s+)?enum\s+(\w+)`), pipeline.EntityEnum, 1},
		{regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*use\s+([\w:]+)`), pipeline.EntityImport, 1},
	},
	"java": {
		{regexp.MustCompile(`^\s*(?:public|private|protected)?\s*(?:static\s+)?(?:final\s+)?class\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*(?:public|private|protected)?\s*enum\s+(\w+)`), pipeline.EntityEnum, 1},
		{regexp.MustCompile(`^\s*(?:public|private|protected)[\w\s\[\]<>]*\s+(\w+)\s*\(`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*import\s+([\w.]+);`), pipeline.EntityImport, 1},
	},
	"c": {
		{regexp.MustCompile(`^\s*struct\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*enum\s+(\w+)`), pipeline.EntityEnum, 1},
		{regexp.MustCompile(`^\s*\w[\w\s\*]*\s+(\w+)\s*\([^;{]*\)\s*\{?\s*$`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*#include\s*["<]([^">]+)[">]`), pipeline.EntityImport, 1},
	},
	"cpp": {
		{regexp.MustCompile(`^\s*(?:class|struct)\s+(\w+)`), pipeline.EntityClass, 1},
		{regexp.MustCompile(`^\s*enum(?:\s+class)?\s+(\w+)`), pipeline.EntityEnum, 1},
		{regexp.MustCompile(`^\s*\w[\w\s:<>\*&]*\s+(\w+)\s*\([^;{]*\)\s*\{?\s*$`), pipeline.EntityFunction, 1},
		{regexp.MustCompile(`^\s*#include\s*["<]([^">]+)[">]`), pipeline.EntityImport, 1},
	},
}

// RegexBackend extracts entities using per-language regex tables. It is the
// fastest backend and the fallback every other backend routes to.
type RegexBackend struct {
	opts config.NEROptions
}

// NewRegexBackend constructs a RegexBackend.
func NewRegexBackend(opts config.NEROptions) *RegexBackend {
	return &RegexBackend{opts: opts}
}

// Extract scans content line by line against path's language table.
func (b *RegexBackend) Extract(_ context.Context, content, path string) ([]pipeline.NamedEntity, error) {
	language := langdetect.Detect(path)
	patterns, ok := patternsByLanguage[language]
	if !ok {
		return nil, nil
	}

	var entities []pipeline.NamedEntity
	lines := splitLines(content)
	for _, line := range lines {
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := firstNonEmpty(m[p.nameGroup:]...)
			if name == "" {
				continue
			}
			entities = append(entities, pipeline.NamedEntity{Name: name, Kind: p.kind})
		}
	}
	return filterByOptions(entities, b.opts), nil
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := make([]string, 0, 64)
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
