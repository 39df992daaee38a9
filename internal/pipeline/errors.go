// Package pipeline defines the central data types shared across all
// pipeline stages in ctxpack. This file defines the
// ErrorKind taxonomy and the CtxpackError type for structured error handling
// with exit codes, enabling commands to communicate specific exit codes
// back to main.go.
package pipeline

import "fmt"

// ErrorKind classifies the condition that produced a CtxpackError.
type ErrorKind string

const (
	// KindInvalidOptions marks conflicting or malformed options, surfaced
	// before any work begins.
	KindInvalidOptions ErrorKind = "invalid_options"
	// KindIO marks a path-not-found, permission-denied, or read/write
	// failure.
	KindIO ErrorKind = "io_error"
	// KindPattern marks an unparseable glob; logged and skipped, the run
	// continues.
	KindPattern ErrorKind = "pattern_error"
	// KindBinarySkipped is informational: a non-textual file was excluded
	// from content.
	KindBinarySkipped ErrorKind = "binary_skipped"
	// KindSummarizerFallback marks a syntax-tree or ML NER backend that
	// was unavailable; regex was used instead.
	KindSummarizerFallback ErrorKind = "summarizer_fallback"
	// KindTokenizerUnavailable marks a requested tokenizer encoding that
	// could not be loaded; the run completes without a token count.
	KindTokenizerUnavailable ErrorKind = "tokenizer_unavailable"
	// KindTimeout marks that the run deadline was exceeded; fatal for the
	// run, partial output is still flushed.
	KindTimeout ErrorKind = "timeout"
	// KindCancelled marks an externally requested cancellation; partial
	// output is still flushed.
	KindCancelled ErrorKind = "cancelled"
	// KindOutputOverflow marks that the output-size ceiling was hit;
	// content is truncated and the summary is flagged.
	KindOutputOverflow ErrorKind = "output_overflow"
)

// exitCodes maps each ErrorKind to its process exit code per the external
// CLI contract (0 success, 1 usage, 2 I/O, 3 timeout, 4 cancelled). Kinds
// that are recorded per-file rather than fatal (Pattern, BinarySkipped,
// SummarizerFallback, TokenizerUnavailable, OutputOverflow) never reach
// main.go as a process-terminating error, but still report a code for
// completeness when surfaced directly.
var exitCodes = map[ErrorKind]ExitCode{
	KindInvalidOptions:       ExitUsage,
	KindIO:                   ExitIO,
	KindPattern:              ExitUsage,
	KindBinarySkipped:        ExitSuccess,
	KindSummarizerFallback:   ExitSuccess,
	KindTokenizerUnavailable: ExitSuccess,
	KindTimeout:              ExitTimeout,
	KindCancelled:            ExitCancelled,
	KindOutputOverflow:       ExitSuccess,
}

// CtxpackError is a custom error type that carries an ErrorKind and exit
// code for structured error handling. Commands in the CLI use this to
// communicate specific exit codes back to main.go. It implements the error
// interface and supports unwrapping via errors.Is and errors.As.
type CtxpackError struct {
	// Kind classifies the failure condition.
	Kind ErrorKind
	// Message is a human-readable description of what went wrong.
	Message string
	// Err is the underlying error that caused this CtxpackError, if any.
	Err error
}

// Error returns the formatted error message. If an underlying error is
// present, it is included in the output separated by a colon.
func (e *CtxpackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As to
// traverse the error chain.
func (e *CtxpackError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code associated with this error's kind.
func (e *CtxpackError) ExitCode() ExitCode {
	if code, ok := exitCodes[e.Kind]; ok {
		return code
	}
	return ExitUsage
}

// NewError creates a CtxpackError of the given kind.
func NewError(kind ErrorKind, msg string, err error) *CtxpackError {
	return &CtxpackError{Kind: kind, Message: msg, Err: err}
}

// NewInvalidOptions creates a KindInvalidOptions error.
func NewInvalidOptions(msg string, err error) *CtxpackError {
	return NewError(KindInvalidOptions, msg, err)
}

// NewIOError creates a KindIO error.
func NewIOError(msg string, err error) *CtxpackError {
	return NewError(KindIO, msg, err)
}

// NewTimeoutError creates a KindTimeout error.
func NewTimeoutError(msg string) *CtxpackError {
	return NewError(KindTimeout, msg, nil)
}

// NewCancelledError creates a KindCancelled error.
func NewCancelledError(msg string) *CtxpackError {
	return NewError(KindCancelled, msg, nil)
}
