package langdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectByExtension(t *testing.T) {
	assert.Equal(t, "go", Detect("main.go"))
	assert.Equal(t, "python", Detect("src/pkg/module.py"))
	assert.Equal(t, "typescript", Detect("src/App.tsx"))
	assert.Equal(t, "markdown", Detect("README.md"))
	assert.Equal(t, "", Detect("LICENSE"))
	assert.Equal(t, "", Detect("no-extension"))
}

func TestDetectByBasename(t *testing.T) {
	assert.Equal(t, "makefile", Detect("Makefile"))
	assert.Equal(t, "dockerfile", Detect("Dockerfile"))
	assert.Equal(t, "ruby", Detect("Gemfile"))
}

func TestDetectCaseInsensitiveExtension(t *testing.T) {
	assert.Equal(t, "go", Detect("MAIN.GO"))
}

func TestIsSourceLanguage(t *testing.T) {
	assert.True(t, IsSourceLanguage("go"))
	assert.True(t, IsSourceLanguage("python"))
	assert.False(t, IsSourceLanguage("markdown"))
	assert.False(t, IsSourceLanguage("json"))
	assert.False(t, IsSourceLanguage(""))
}
