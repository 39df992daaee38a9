package summarize

import "regexp"

// langRules holds the regexes Summarizer uses to pull declaration
// signatures and docstrings out of one language's source text. These are
// intentionally line-oriented and permissive: the summarizer produces a
// compact orientation aid, not a parse tree.
type langRules struct {
	signature *regexp.Regexp
	docstring *regexp.Regexp
}

// rulesByLanguage maps internal/langdetect's canonical language names to
// their signature/docstring extraction rules. Languages absent from this
// map fall back to rawRules, which keeps the first-N-lines/snippets
// sections but skips signature and docstring extraction.
var rulesByLanguage = map[string]langRules{
	"go": {
		signature: regexp.MustCompile(`^\s*func\s+(\([^)]*\)\s*)?\w+\s*\([^)]*\)[^{]*\{?\s*$|^\s*type\s+\w+\s+(struct|interface)\b`),
		docstring: regexp.MustCompile(`^\s*//.*$`),
	},
	"python": {
		signature: regexp.MustCompile(`^\s*(def|class)\s+\w+`),
		docstring: regexp.MustCompile(`^\s*(""".*"""|'''.*'''|""" ?$|''' ?$)`),
	},
	"javascript": {
		signature: regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s*\w*\s*\(|^\s*(export\s+)?(default\s+)?class\s+\w+|^\s*(export\s+)?(const|let|var)\s+\w+\s*=\s*(\(.*\)|async\s*\(.*\))\s*=>`),
		docstring: regexp.MustCompile(`^\s*/\*\*`),
	},
	"typescript": {
		signature: regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s*\w*\s*\(|^\s*(export\s+)?(default\s+)?(class|interface)\s+\w+|^\s*(export\s+)?(const|let|var)\s+\w+\s*:.*=>`),
		docstring: regexp.MustCompile(`^\s*/\*\*`),
	},
	"c": {
		signature: regexp.MustCompile(`^\s*\w[\w\s\*]*\s+\w+\s*\([^;{]*\)\s*\{?\s*$`),
		docstring: regexp.MustCompile(`^\s*/\*`),
	},
	"cpp": {
		signature: regexp.MustCompile(`^\s*(class|struct)\s+\w+|^\s*\w[\w\s:<>\*&]*\s+\w+::\w+\s*\(`),
		docstring: regexp.MustCompile(`^\s*/\*`),
	},
	"rust": {
		signature: regexp.MustCompile(`^\s*(pub\s+)?(async\s+)?fn\s+\w+|^\s*(pub\s+)?(struct|enum|trait|impl)\s+\w+`),
		docstring: regexp.MustCompile(`^\s*///`),
	},
	"java": {
		signature: regexp.MustCompile(`^\s*(public|private|protected)?\s*(static\s+)?(final\s+)?(class|interface|enum)\s+\w+|^\s*(public|private|protected)[\w\s\[\]<>]*\s+\w+\s*\([^;{]*\)\s*\{?\s*$`),
		docstring: regexp.MustCompile(`^\s*/\*\*`),
	},
	"shell": {
		signature: regexp.MustCompile(`^\s*(function\s+)?\w+\s*\(\)\s*\{?`),
		docstring: regexp.MustCompile(`^\s*#`),
	},
}

var rawRules = langRules{}

func rulesFor(language string) langRules {
	if r, ok := rulesByLanguage[language]; ok {
		return r
	}
	return rawRules
}
