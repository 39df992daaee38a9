// Package langdetect maps file paths to a coarse source-language name by
// extension. It backs the Summarizer's per-language regex tables, the NER
// Regex/SyntaxTree backend dispatch, and Markdown fence-language inference
// in the renderer.
package langdetect

import (
	"path/filepath"
	"strings"
)

// byExtension maps a lowercased file extension (including the leading dot)
// to a canonical language name. Unknown extensions return "".
var byExtension = map[string]string{
	".go":     "go",
	".py":     "python",
	".pyi":    "python",
	".js":     "javascript",
	".jsx":    "javascript",
	".mjs":    "javascript",
	".cjs":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".rs":     "rust",
	".java":   "java",
	".c":      "c",
	".h":      "c",
	".cpp":    "cpp",
	".cc":     "cpp",
	".cxx":    "cpp",
	".hpp":    "cpp",
	".hh":     "cpp",
	".rb":     "ruby",
	".sh":     "shell",
	".bash":   "shell",
	".zsh":    "shell",
	".php":    "php",
	".swift":  "swift",
	".kt":     "kotlin",
	".kts":    "kotlin",
	".cs":     "csharp",
	".scala":  "scala",
	".md":     "markdown",
	".rst":    "restructuredtext",
	".txt":    "text",
	".json":   "json",
	".yaml":   "yaml",
	".yml":    "yaml",
	".toml":   "toml",
	".ini":    "ini",
	".cfg":    "ini",
	".sql":    "sql",
	".html":   "html",
	".css":    "css",
	".proto":  "protobuf",
	".lua":    "lua",
	".r":      "r",
	".dart":   "dart",
}

// byBasename maps a well-known basename (no directory component) that
// carries no informative extension to a canonical language name.
var byBasename = map[string]string{
	"Makefile":  "makefile",
	"Dockerfile": "dockerfile",
	"Gemfile":   "ruby",
	"Rakefile":  "ruby",
}

// Detect returns the canonical language name for path, or "" if unknown.
// Detection checks a basename table for conventional extensionless filenames
// (Makefile, Dockerfile, ...) first, then the lowercased extension.
func Detect(path string) string {
	base := filepath.Base(path)
	if lang, ok := byBasename[base]; ok {
		return lang
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	return byExtension[ext]
}

// IsSourceLanguage reports whether lang (as returned by Detect) denotes a
// programming language with syntactic structure, as opposed to a
// documentation, data, or configuration format. `profile explain` uses it
// to report whether a file would be summarized.
func IsSourceLanguage(lang string) bool {
	switch lang {
	case "go", "python", "javascript", "typescript", "rust", "java", "c",
		"cpp", "ruby", "shell", "php", "swift", "kotlin", "csharp", "scala",
		"lua", "dart":
		return true
	default:
		return false
	}
}
