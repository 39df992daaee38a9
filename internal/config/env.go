package config

import (
	"os"
	"strconv"
)

// Environment variable name constants for CTXPACK_ prefixed overrides.
const (
	// EnvProfile selects the named profile to activate.
	EnvProfile = "CTXPACK_PROFILE"
	// EnvFormat overrides the output format.
	EnvFormat = "CTXPACK_FORMAT"
	// EnvTokenEncoding overrides the tokenizer encoding name.
	EnvTokenEncoding = "CTXPACK_TOKEN_ENCODING"
	// EnvOutput overrides the output file path.
	EnvOutput = "CTXPACK_OUTPUT"
	// EnvTarget overrides the LLM target preset.
	EnvTarget = "CTXPACK_TARGET"
	// EnvLogFormat overrides the log output format (not a profile field).
	EnvLogFormat = "CTXPACK_LOG_FORMAT"
	// EnvSelection overrides the file-selection strategy.
	EnvSelection = "CTXPACK_SELECTION"
	// EnvCountTokens overrides the count-tokens flag.
	EnvCountTokens = "CTXPACK_COUNT_TOKENS"
	// EnvWorkerCount overrides the worker pool size.
	EnvWorkerCount = "CTXPACK_WORKERS"
)

// buildEnvMap reads CTXPACK_* environment variables and returns a flat map
// suitable for use with a koanf confmap provider. Only non-empty env vars
// that parse successfully are included. Invalid numeric/boolean values are
// silently skipped so that a bad env var does not block the entire
// resolution pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvFormat); v != "" {
		m["format"] = v
	}
	if v := os.Getenv(EnvTokenEncoding); v != "" {
		m["token_encoding"] = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		m["output"] = v
	}
	if v := os.Getenv(EnvTarget); v != "" {
		m["target"] = v
	}
	if v := os.Getenv(EnvSelection); v != "" {
		m["selection"] = v
	}
	if v := os.Getenv(EnvCountTokens); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["count_tokens"] = b
		}
	}
	if v := os.Getenv(EnvWorkerCount); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["worker_count"] = n
		}
	}

	return m
}
