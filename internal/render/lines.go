package render

import (
	"fmt"
	"strings"
)

// withLineNumbers prefixes each line of content with its 1-based line
// number, right-aligned to a width derived from the total line count, for
// renderers invoked with RunInput.LineNumbers.
func withLineNumbers(content string) string {
	if content == "" {
		return content
	}
	lines := strings.Split(content, "\n")
	width := len(fmt.Sprintf("%d", len(lines)))
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%*d | %s", width, i+1, line)
	}
	return strings.Join(lines, "\n")
}
