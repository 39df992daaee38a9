package reader_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxpack/ctxpack/internal/pipeline"
	"github.com/ctxpack/ctxpack/internal/reader"
)

func TestReadAll_TextFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(abs, []byte("package main\n\nfunc main() {}\n"), 0o644))

	r := reader.New(2)
	out, err := r.ReadAll(context.Background(), []pipeline.FileDescriptor{
		{Path: "main.go", AbsPath: abs, Size: 30},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	pf := out[0]
	assert.False(t, pf.IsBinary)
	assert.Equal(t, "package main\n\nfunc main() {}\n", pf.Content)
	assert.Equal(t, 3, pf.LineCount)
	assert.Equal(t, "go", pf.Language)
	assert.NotZero(t, pf.ContentHash)
	assert.NoError(t, pf.Err)
}

func TestReadAll_BinaryFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	abs := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(abs, []byte{0x00, 0x01, 0x02, 0xFF}, 0o644))

	r := reader.New(1)
	out, err := r.ReadAll(context.Background(), []pipeline.FileDescriptor{
		{Path: "data.bin", AbsPath: abs, Size: 4},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsBinary)
	assert.Empty(t, out[0].Content)
}

func TestReadAll_MissingFileRecordsErrWithoutAbortingOthers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	goodAbs := filepath.Join(dir, "good.go")
	require.NoError(t, os.WriteFile(goodAbs, []byte("package good\n"), 0o644))

	r := reader.New(2)
	out, err := r.ReadAll(context.Background(), []pipeline.FileDescriptor{
		{Path: "missing.go", AbsPath: filepath.Join(dir, "missing.go"), Size: 10},
		{Path: "good.go", AbsPath: goodAbs, Size: 13},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Error(t, out[0].Err)
	assert.NoError(t, out[1].Err)
	assert.Equal(t, "package good\n", out[1].Content)
}

func TestReadAll_PreservesOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []pipeline.FileDescriptor
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		abs := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(abs, []byte("package p\n"), 0o644))
		files = append(files, pipeline.FileDescriptor{Path: name, AbsPath: abs, Size: 10})
	}

	r := reader.New(4)
	out, err := r.ReadAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a.go", out[0].Path)
	assert.Equal(t, "b.go", out[1].Path)
	assert.Equal(t, "c.go", out[2].Path)
}

func TestClassifyBytes_TextContentMatchesReadAll(t *testing.T) {
	t.Parallel()

	pf := reader.ClassifyBytes("main.go", 30, []byte("package main\n\nfunc main() {}\n"))
	assert.False(t, pf.IsBinary)
	assert.Equal(t, "package main\n\nfunc main() {}\n", pf.Content)
	assert.Equal(t, 3, pf.LineCount)
	assert.Equal(t, "go", pf.Language)
	assert.NotZero(t, pf.ContentHash)
	assert.NoError(t, pf.Err)
}

func TestClassifyBytes_BinaryContentSkipsContent(t *testing.T) {
	t.Parallel()

	pf := reader.ClassifyBytes("blob.bin", 4, []byte{0x00, 0x01, 0x02, 0x00})
	assert.True(t, pf.IsBinary)
	assert.Empty(t, pf.Content)
}

func TestReadAll_CancelledContextReturnsPartialResults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []pipeline.FileDescriptor
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name+"\n"), 0o644))
		files = append(files, pipeline.FileDescriptor{Path: name, AbsPath: path, Size: 6})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := reader.New(1).ReadAll(ctx, files)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// Already-completed reads survive cancellation; nothing half-read
	// appears in the result.
	assert.LessOrEqual(t, len(out), len(files))
	for _, pf := range out {
		assert.NotEmpty(t, pf.Path)
		assert.NoError(t, pf.Err)
	}
}

// TestReadAll_FileAtMmapThresholdReadsCorrectly pins the small/large split:
// a file one byte over the threshold takes the memory-mapped path and must
// produce byte-identical content to a buffered read.
func TestReadAll_FileAtMmapThresholdReadsCorrectly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	size := reader.MmapThresholdBytes + 1
	content := bytes.Repeat([]byte("x"), int(size)-1)
	content = append(content, '\n')
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	out, err := reader.New(1).ReadAll(context.Background(), []pipeline.FileDescriptor{
		{Path: "big.txt", AbsPath: path, Size: size},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, string(content), out[0].Content)
	assert.Equal(t, 1, out[0].LineCount)
}

func TestMmapThresholdIsOneMiB(t *testing.T) {
	t.Parallel()
	assert.Equal(t, int64(1_048_576), reader.MmapThresholdBytes)
}
