package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearCtxpackEnvForBenchmark unsets all CTXPACK_* environment variables.
// It does not use t.Setenv because testing.B does not support it.
func clearCtxpackEnvForBenchmark() {
	for _, name := range []string{
		EnvProfile, EnvFormat, EnvTokenEncoding,
		EnvOutput, EnvTarget, EnvLogFormat, EnvSelection, EnvCountTokens, EnvWorkerCount,
	} {
		os.Unsetenv(name)
	}
}

// BenchmarkConfigResolve measures the cost of config resolution across
// different source configurations.
func BenchmarkConfigResolve(b *testing.B) {
	b.Run("defaults-only", func(b *testing.B) {
		clearCtxpackEnvForBenchmark()

		dir := b.TempDir()
		globalPath := filepath.Join(dir, "nonexistent.toml")
		opts := ResolveOptions{
			TargetDir:        dir,
			GlobalConfigPath: globalPath,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Resolve(opts)
		}
	})

	b.Run("single-file", func(b *testing.B) {
		clearCtxpackEnvForBenchmark()

		dir := b.TempDir()
		tomlContent := `
[profile.default]
format = "markdown"
token_encoding = "cl100k_base"
count_tokens = true
output = "ctxpack-output.md"
exclude = ["node_modules/**", "dist/**", ".git/**"]
`
		tomlPath := filepath.Join(dir, "ctxpack.toml")
		if err := os.WriteFile(tomlPath, []byte(tomlContent), 0o644); err != nil {
			b.Fatal(err)
		}

		opts := ResolveOptions{
			TargetDir:        dir,
			GlobalConfigPath: filepath.Join(dir, "nonexistent.toml"),
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Resolve(opts)
		}
	})

	b.Run("multi-source", func(b *testing.B) {
		clearCtxpackEnvForBenchmark()

		globalDir := b.TempDir()
		globalContent := `
[profile.default]
token_encoding = "o200k_base"
format = "markdown"
output = "global-output.md"
`
		globalPath := filepath.Join(globalDir, "global.toml")
		if err := os.WriteFile(globalPath, []byte(globalContent), 0o644); err != nil {
			b.Fatal(err)
		}

		repoDir := b.TempDir()
		repoContent := `
[profile.default]
format = "xml"
selection = "scoring"
worker_count = 8
`
		repoPath := filepath.Join(repoDir, "ctxpack.toml")
		if err := os.WriteFile(repoPath, []byte(repoContent), 0o644); err != nil {
			b.Fatal(err)
		}

		opts := ResolveOptions{
			TargetDir:        repoDir,
			GlobalConfigPath: globalPath,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Resolve(opts)
		}
	})

	b.Run("ten-profiles", func(b *testing.B) {
		clearCtxpackEnvForBenchmark()

		dir := b.TempDir()

		// Build a config with 10 named profiles.
		var sb strings.Builder
		sb.WriteString("[profile.default]\nformat = \"markdown\"\nworker_count = 4\n\n")
		for i := 1; i <= 9; i++ {
			sb.WriteString(fmt.Sprintf("[profile.profile%d]\nextends = \"default\"\nworker_count = %d\n\n",
				i, 2+i))
		}

		tomlPath := filepath.Join(dir, "ctxpack.toml")
		if err := os.WriteFile(tomlPath, []byte(sb.String()), 0o644); err != nil {
			b.Fatal(err)
		}

		opts := ResolveOptions{
			ProfileName:      "profile5",
			TargetDir:        dir,
			GlobalConfigPath: filepath.Join(dir, "nonexistent.toml"),
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = Resolve(opts)
		}
	})
}

// BenchmarkConfigValidate measures the cost of config validation.
func BenchmarkConfigValidate(b *testing.B) {
	b.Run("clean-config", func(b *testing.B) {
		cfg, err := LoadFromString(`
[profile.default]
format = "markdown"
token_encoding = "cl100k_base"
output = "ctxpack-output.md"
`, "bench")
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = Validate(cfg)
		}
	})

	b.Run("complex-config", func(b *testing.B) {
		cfg, err := LoadFromString(`
[profile.default]
format = "markdown"
token_encoding = "cl100k_base"
output = "ctxpack-output.md"
exclude = ["node_modules/**", "dist/**", ".git/**", "coverage/**", "__pycache__/**"]
include = ["**/*.go", "**/*.ts"]

[profile.default.scoring]
important_files = ["README.md", "go.mod", "package.json"]
important_dirs = ["src", "internal", "cmd"]
source_extensions = ["**/*.go", "**/*.ts"]
config_extensions = ["**/*.json", "**/*.toml"]
docs_extensions = ["**/*.md"]
test_patterns = ["**/*_test.go", "**/*.test.ts", "**/*.spec.ts"]

[profile.default.summarization]
enabled = true

[profile.default.summarization.ner]
enabled = true
method = "regex"

[profile.staging]
extends = "default"
format = "xml"
token_encoding = "o200k_base"
target = "claude"
output = ".ctxpack/staging.md"

[profile.ci]
extends = "default"
worker_count = 4
selection = "scoring"
`, "bench")
		if err != nil {
			b.Fatal(err)
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = Validate(cfg)
		}
	})
}
