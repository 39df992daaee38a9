// Package reader implements the FileReader: it turns the discovery phase's
// path-only FileDescriptors into ProcessedFiles carrying actual content,
// reading small files with a plain os.ReadFile and large files through a
// memory map so the working set stays bounded on big repositories.
package reader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/mmap-go"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/ctxpack/ctxpack/internal/discovery"
	"github.com/ctxpack/ctxpack/internal/langdetect"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// MmapThresholdBytes is the file size at and above which FileReader maps the
// file into memory instead of reading it with a single os.ReadFile call.
// Files under 1 MiB take the buffered path.
const MmapThresholdBytes int64 = 1 * 1024 * 1024

// FileReader loads content for each discovered file, detects binary
// content, and computes the bookkeeping fields (LineCount, ByteSize,
// ContentHash, Language) the rest of the pipeline depends on.
type FileReader struct {
	workers int
	logger  *slog.Logger
}

// New constructs a FileReader. workers bounds the number of files read
// concurrently; a value <= 0 defaults to runtime.NumCPU(), the same
// convention the tokenizer's TokenCounter pool uses.
func New(workers int) *FileReader {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &FileReader{
		workers: workers,
		logger:  slog.Default().With("component", "reader"),
	}
}

// ReadAll reads content for every descriptor in files concurrently, bounded
// to r.workers in-flight reads at a time. Results preserve the input order
// regardless of completion order. A per-file read error is recorded on that
// file's ProcessedFile.Err rather than aborting the whole run; only context
// cancellation stops early. On cancellation, in-flight workers finish their
// current file and the files completed so far are returned alongside the
// context error, so the caller can still render a partial artifact.
func (r *FileReader) ReadAll(ctx context.Context, files []pipeline.FileDescriptor) ([]pipeline.ProcessedFile, error) {
	out := make([]pipeline.ProcessedFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, fd := range files {
		i, fd := i, fd
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("reading cancelled: %w", err)
			}
			out[i] = r.readOne(fd)
			return nil
		})
	}

	err := g.Wait()

	// Slots whose worker never ran are zero-valued; drop them so a partial
	// result set contains only completed files, in input order.
	completed := make([]pipeline.ProcessedFile, 0, len(out))
	for _, pf := range out {
		if pf.Path != "" {
			completed = append(completed, pf)
		}
	}
	return completed, err
}

// readOne reads and classifies a single file. It never returns an error
// itself; failures are captured on the returned ProcessedFile.Err so that
// one unreadable file does not abort the run.
func (r *FileReader) readOne(fd pipeline.FileDescriptor) pipeline.ProcessedFile {
	raw, err := r.readBytes(fd)
	if err != nil {
		pf := pipeline.ProcessedFile{
			Path:     fd.Path,
			ByteSize: fd.Size,
			Language: langdetect.Detect(fd.Path),
			Err:      err,
		}
		r.logger.Debug("read failed", "path", fd.Path, "error", err)
		return pf
	}

	return ClassifyBytes(fd.Path, fd.Size, raw)
}

// ClassifyBytes runs the same binary detection, UTF-8 repair, line-counting,
// and content-hashing a disk read goes through in readOne, for callers that
// already hold file content in memory rather than a FileDescriptor pointing
// at disk. readOne itself calls it once the bytes are read.
func ClassifyBytes(path string, byteSize int64, raw []byte) pipeline.ProcessedFile {
	pf := pipeline.ProcessedFile{
		Path:     path,
		ByteSize: byteSize,
		Language: langdetect.Detect(path),
	}

	if discovery.IsBinaryContent(sample(raw)) {
		pf.IsBinary = true
		return pf
	}

	content := toValidUTF8(raw)
	pf.Content = content
	pf.LineCount = countLines(content)
	pf.ContentHash = xxh3.HashString(content)
	return pf
}

// readBytes chooses between a direct read and a memory-mapped read based on
// fd.Size: small files go through a buffered os.ReadFile; large files are
// mapped, copied into an owned byte slice, and the map is closed immediately
// so the mapping does not outlive this call.
func (r *FileReader) readBytes(fd pipeline.FileDescriptor) ([]byte, error) {
	if fd.Size < MmapThresholdBytes {
		data, err := os.ReadFile(fd.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fd.Path, err)
		}
		return data, nil
	}

	f, err := os.Open(fd.AbsPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s for mmap: %w", fd.Path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", fd.Path, err)
	}
	// Copy the mapped bytes out before unmapping so the returned slice
	// remains valid once the mapping is released.
	data := make([]byte, len(m))
	copy(data, m)
	if err := m.Unmap(); err != nil {
		r.logger.Debug("munmap failed", "path", fd.Path, "error", err)
	}
	return data, nil
}

// sample bounds how much of a large file's content is checked for binary
// content, matching discovery.BinaryDetectionBytes.
func sample(data []byte) []byte {
	if len(data) > discovery.BinaryDetectionBytes {
		return data[:discovery.BinaryDetectionBytes]
	}
	return data
}

// toValidUTF8 replaces invalid byte sequences with the Unicode replacement
// character so Content is always safe to embed in text-based renderers.
func toValidUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// countLines counts newline-terminated segments in content, plus one for a
// non-empty trailing segment that does not end in '\n'.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := bytes.Count([]byte(content), []byte("\n"))
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
