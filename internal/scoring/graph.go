package scoring

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ctxpack/ctxpack/internal/langdetect"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// importPatterns extracts the raw import target string(s) from one line of
// source, keyed by internal/langdetect's canonical language name. These are
// intentionally permissive regexes, not a parser: the dependency graph is a
// relevance signal, not a build dependency resolver, so a handful of
// false positives/negatives are acceptable.
var importPatterns = map[string]*regexp.Regexp{
	"go":         regexp.MustCompile(`"([\w./-]+)"`),
	"python":     regexp.MustCompile(`^\s*(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`),
	"javascript": regexp.MustCompile(`(?:from\s+|require\()\s*['"]([^'"]+)['"]`),
	"typescript": regexp.MustCompile(`(?:from\s+|require\()\s*['"]([^'"]+)['"]`),
	"rust":       regexp.MustCompile(`use\s+([\w:]+)`),
	"java":       regexp.MustCompile(`import\s+([\w.]+);`),
	"c":          regexp.MustCompile(`#include\s*["<]([^">]+)[">]`),
	"cpp":        regexp.MustCompile(`#include\s*["<]([^">]+)[">]`),
}

// Graph holds the resolved import dependency graph for one discovery run:
// in-degree per path (how many other discovered files import it) and the
// p95 percentile used to normalize the structure.graph score component.
type Graph struct {
	InDegree map[string]int
	P95      float64
}

// pathIndex resolves a raw import string to one of the discovered file
// paths, trying (in order) an exact relative match, a same-directory
// relative match, and a basename match against every discovered file.
type pathIndex struct {
	byRelPath      map[string]string
	byBasenameNoExt map[string][]string
}

func buildPathIndex(files []pipeline.FileDescriptor) *pathIndex {
	idx := &pathIndex{
		byRelPath:       make(map[string]string, len(files)),
		byBasenameNoExt: make(map[string][]string),
	}
	for _, fd := range files {
		idx.byRelPath[fd.Path] = fd.Path
		base := filepath.Base(fd.Path)
		noExt := strings.TrimSuffix(base, filepath.Ext(base))
		idx.byBasenameNoExt[noExt] = append(idx.byBasenameNoExt[noExt], fd.Path)
	}
	return idx
}

// resolve attempts to map a raw import string found in fromPath to one of
// the discovered file paths. Returns ok=false when no candidate matches.
func (idx *pathIndex) resolve(imp, fromPath string) (string, bool) {
	imp = strings.Trim(imp, `"'`)
	if imp == "" {
		return "", false
	}

	// Relative import: resolve against the importing file's directory.
	if strings.HasPrefix(imp, ".") {
		joined := filepath.ToSlash(filepath.Join(filepath.Dir(fromPath), imp))
		for _, candidate := range candidateExtensions(joined) {
			if p, ok := idx.byRelPath[candidate]; ok {
				return p, true
			}
		}
	}

	// Root-prefixed or package-style import: match by path suffix.
	for rel := range idx.byRelPath {
		if strings.HasSuffix(rel, "/"+imp) || rel == imp {
			return rel, true
		}
		for _, candidate := range candidateExtensions(imp) {
			if strings.HasSuffix(rel, "/"+candidate) || rel == candidate {
				return rel, true
			}
		}
	}

	// Basename fallback: the last path segment of the import, ignoring
	// extension, matched against every discovered file's basename.
	base := filepath.Base(imp)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if candidates, ok := idx.byBasenameNoExt[base]; ok && len(candidates) == 1 {
		return candidates[0], true
	}

	return "", false
}

func candidateExtensions(path string) []string {
	exts := []string{".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".rs", ".java", ".rb", ".c", ".h", ".cpp", ".hpp"}
	out := make([]string, 0, len(exts)+1)
	out = append(out, path)
	for _, e := range exts {
		out = append(out, path+e)
	}
	return out
}

// BuildGraph scans every source-language file in files for import
// statements and builds the in-degree dependency graph used by the
// structure.graph score component. Content is read directly from disk
// rather than reused from a later FileReader pass, since Scoring runs
// before Reading in the orchestrator's state machine.
func BuildGraph(files []pipeline.FileDescriptor) Graph {
	idx := buildPathIndex(files)
	inDegree := make(map[string]int, len(files))
	for _, fd := range files {
		inDegree[fd.Path] = 0
	}

	for _, fd := range files {
		lang := langdetect.Detect(fd.Path)
		pattern, ok := importPatterns[lang]
		if !ok {
			continue
		}
		data, err := os.ReadFile(fd.AbsPath)
		if err != nil {
			continue
		}
		seen := make(map[string]bool)
		for _, line := range strings.Split(string(data), "\n") {
			matches := pattern.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			var raw string
			for _, g := range matches[1:] {
				if g != "" {
					raw = g
					break
				}
			}
			if raw == "" {
				continue
			}
			target, ok := idx.resolve(raw, fd.Path)
			if !ok || target == fd.Path || seen[target] {
				continue
			}
			seen[target] = true
			inDegree[target]++
		}
	}

	return Graph{InDegree: inDegree, P95: percentileP95(inDegree)}
}

// percentileP95 computes the linear-interpolated 95th percentile over the
// sorted in-degree values, the normalizer that keeps structure.graph
// scale-free across repository sizes.
func percentileP95(inDegree map[string]int) float64 {
	if len(inDegree) == 0 {
		return 0
	}
	values := make([]float64, 0, len(inDegree))
	for _, v := range inDegree {
		values = append(values, float64(v))
	}
	sort.Float64s(values)

	if len(values) == 1 {
		return values[0]
	}

	rank := 0.95 * float64(len(values)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(values) {
		return values[len(values)-1]
	}
	frac := rank - float64(lo)
	return values[lo] + frac*(values[hi]-values[lo])
}

// Score returns the structure.graph component for path, clamped to 1: the
// file's in-degree divided by the graph's p95 in-degree. A path absent from
// the graph (or a p95 of 0, meaning no file is ever imported) scores 0.
func (g Graph) Score(path string) float64 {
	if g.P95 <= 0 {
		return 0
	}
	deg, ok := g.InDegree[path]
	if !ok || deg <= 0 {
		return 0
	}
	score := float64(deg) / g.P95
	if score > 1 {
		return 1
	}
	return score
}
