// Package tokenizer provides token counting implementations for LLM context
// documents. This file implements report data structures and formatters for
// presenting token count summaries to the user via the CLI.
package tokenizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// LanguageReportStat holds per-language file and token counts.
type LanguageReportStat struct {
	// FileCount is the number of files detected as this language.
	FileCount int

	// TokenCount is the total number of tokens across all files of this language.
	TokenCount int
}

// TokenReport holds the summary data for a full token count report.
type TokenReport struct {
	// TokenizerName is the encoding name used (e.g., "cl100k_base").
	TokenizerName string

	// TotalFiles is the total number of files included in the report.
	TotalFiles int

	// TotalTokens is the sum of token counts across all files.
	TotalTokens int

	// Budget is the configured max token budget (0 means unlimited).
	Budget int

	// LanguageStats maps detected language to per-language statistics. Files
	// with an empty Language are grouped under "unknown".
	LanguageStats map[string]*LanguageReportStat
}

// NewTokenReport builds a TokenReport from a set of processed files.
// tokenizerName is the encoding name (e.g., "cl100k_base").
// budget is the configured max token budget (0 = unlimited).
func NewTokenReport(files []*pipeline.ProcessedFile, tokenizerName string, budget int) *TokenReport {
	r := &TokenReport{
		TokenizerName: tokenizerName,
		Budget:        budget,
		LanguageStats: make(map[string]*LanguageReportStat),
	}

	for _, pf := range files {
		if pf == nil {
			continue
		}
		r.TotalFiles++
		r.TotalTokens += pf.TokenCount

		lang := pf.Language
		if lang == "" {
			lang = "unknown"
		}

		stat, ok := r.LanguageStats[lang]
		if !ok {
			stat = &LanguageReportStat{}
			r.LanguageStats[lang] = stat
		}
		stat.FileCount++
		stat.TokenCount += pf.TokenCount
	}

	return r
}

// Format renders the token report as a plain-text string suitable for printing
// to stderr. Uses unicode box-drawing chars for the separator line.
func (r *TokenReport) Format() string {
	var sb strings.Builder

	title := fmt.Sprintf("Token Report (%s)", r.TokenizerName)
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "Total files:  %s\n", FormatInt(r.TotalFiles))
	fmt.Fprintf(&sb, "Total tokens: %s\n", FormatInt(r.TotalTokens))

	if r.Budget > 0 {
		pct := int(float64(r.TotalTokens) / float64(r.Budget) * 100)
		fmt.Fprintf(&sb, "Budget:       %s (%d%% used)\n", FormatInt(r.Budget), pct)
	} else {
		sb.WriteString("Budget:       unlimited\n")
	}

	if len(r.LanguageStats) > 0 {
		sb.WriteString("\nBy Language:\n")
		langs := make([]string, 0, len(r.LanguageStats))
		for lang := range r.LanguageStats {
			langs = append(langs, lang)
		}
		sort.Strings(langs)

		for _, lang := range langs {
			stat := r.LanguageStats[lang]
			fmt.Fprintf(&sb, "  %-12s %s files  %s tokens\n",
				lang,
				FormatInt(stat.FileCount),
				FormatInt(stat.TokenCount),
			)
		}
	}

	return sb.String()
}

// TopFilesEntry holds data for a single file in the top-N listing.
type TopFilesEntry struct {
	// Path is the relative file path.
	Path string

	// TokenCount is the number of tokens in this file.
	TokenCount int

	// Language is the detected language of this file.
	Language string
}

// TopFilesReport holds the top-N files by token count.
type TopFilesReport struct {
	// N is the requested limit (0 means all files were included).
	N int

	// Files is the sorted list of entries (descending by TokenCount).
	Files []TopFilesEntry
}

// NewTopFilesReport builds a TopFilesReport from processed files.
// Files are sorted by TokenCount descending. n=0 includes all files.
func NewTopFilesReport(files []*pipeline.ProcessedFile, n int) *TopFilesReport {
	entries := make([]TopFilesEntry, 0, len(files))
	for _, pf := range files {
		if pf == nil {
			continue
		}
		entries = append(entries, TopFilesEntry{
			Path:       pf.Path,
			TokenCount: pf.TokenCount,
			Language:   pf.Language,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TokenCount > entries[j].TokenCount
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}

	return &TopFilesReport{N: n, Files: entries}
}

// Format renders the top-N files report as a plain-text string.
func (r *TopFilesReport) Format() string {
	var sb strings.Builder

	label := "All Files"
	if r.N > 0 {
		label = fmt.Sprintf("Top %d Files", r.N)
	}

	title := fmt.Sprintf("%s by Token Count:", label)
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")

	if len(r.Files) == 0 {
		sb.WriteString("  (no files)\n")
		return sb.String()
	}

	for i, entry := range r.Files {
		lang := entry.Language
		if lang == "" {
			lang = "unknown"
		}
		fmt.Fprintf(&sb, " %2d. %-50s  %s tokens  (%s)\n",
			i+1,
			entry.Path,
			FormatInt(entry.TokenCount),
			lang,
		)
	}

	return sb.String()
}

// HeatmapEntry holds data for a single file in the token density heatmap.
type HeatmapEntry struct {
	// Path is the relative file path.
	Path string

	// Lines is the number of lines in the file.
	Lines int

	// Tokens is the number of tokens in the file.
	Tokens int

	// Density is the token density: tokens per line.
	// Files with 0 lines get density 0 (no division by zero).
	Density float64

	// Language is the detected language of this file.
	Language string
}

// HeatmapReport holds files sorted by token density (tokens per line) descending.
type HeatmapReport struct {
	// Files is the list of entries sorted by Density descending.
	Files []HeatmapEntry
}

// NewHeatmapReport builds a HeatmapReport from processed files, reading line
// counts directly from pf.LineCount. Files with 0 lines get density 0 (no
// division by zero). Nil entries are skipped.
func NewHeatmapReport(files []*pipeline.ProcessedFile) *HeatmapReport {
	entries := make([]HeatmapEntry, 0, len(files))

	for _, pf := range files {
		if pf == nil {
			continue
		}

		var density float64
		if pf.LineCount > 0 {
			density = float64(pf.TokenCount) / float64(pf.LineCount)
		}

		entries = append(entries, HeatmapEntry{
			Path:     pf.Path,
			Lines:    pf.LineCount,
			Tokens:   pf.TokenCount,
			Density:  density,
			Language: pf.Language,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Density > entries[j].Density
	})

	return &HeatmapReport{Files: entries}
}

// Format renders the heatmap as a plain-text string sorted by density descending.
func (r *HeatmapReport) Format() string {
	var sb strings.Builder

	title := "Token Heatmap (tokens per line):"
	separator := strings.Repeat("─", len(title)+2)

	sb.WriteString(title + "\n")
	sb.WriteString(separator + "\n")

	if len(r.Files) == 0 {
		sb.WriteString("  (no files)\n")
		return sb.String()
	}

	for i, entry := range r.Files {
		fmt.Fprintf(&sb, " %2d. %-50s  %.1f tok/line  (%s lines, %s tokens)\n",
			i+1,
			entry.Path,
			entry.Density,
			FormatInt(entry.Lines),
			FormatInt(entry.Tokens),
		)
	}

	return sb.String()
}

// FormatInt formats an integer with comma separators (e.g., 89420 -> "89,420").
// Exported for use in CLI formatting code.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}

	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	// Insert commas every 3 digits from the right.
	var result []byte
	start := len(s) % 3
	if start == 0 {
		start = 3
	}
	result = append(result, s[:start]...)
	for i := start; i < len(s); i += 3 {
		result = append(result, ',')
		result = append(result, s[i:i+3]...)
	}

	return string(result)
}
