package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// WalkerConfig holds configuration for the file discovery walker.
type WalkerConfig struct {
	// Root is the target directory to walk.
	Root string

	// GitignoreMatcher handles .gitignore pattern matching (from T-011).
	GitignoreMatcher Ignorer

	// CtxpackignoreMatcher handles .ctxpackignore pattern matching (from T-012).
	CtxpackignoreMatcher Ignorer

	// DefaultIgnorer handles built-in default ignore patterns (from T-012).
	DefaultIgnorer Ignorer

	// PatternFilter applies include/exclude/extension filtering (from T-014).
	PatternFilter *PatternFilter

	// GitTrackedOnly restricts discovery to git-tracked files when true.
	GitTrackedOnly bool

	// SkipLargeFiles is the file size threshold in bytes. Files exceeding this
	// size are skipped. A value of 0 disables large file skipping.
	SkipLargeFiles int64
}

// Walker is the FileEnumerator: it traverses a directory tree and applies
// ignore rules, git-tracked-only filtering, size limits, and pattern
// filters, producing path-only FileDescriptors. Content is not read here;
// that is internal/reader's job (see FileReader).
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new Walker instance.
func NewWalker() *Walker {
	return &Walker{
		logger: slog.Default().With("component", "walker"),
	}
}

// Walk discovers files in the directory tree rooted at cfg.Root, applying
// all configured filters. It returns a DiscoveryResult with the discovered
// files sorted alphabetically by path. Binary detection is deferred to
// internal/reader's FileReader, which reads each file's content anyway and
// can apply the NUL-byte and non-printable-ratio heuristics against bytes
// already in hand.
//
// filepath.WalkDir traverses the tree, applying ignore rules, size limits,
// and pattern filters. Matching files are collected as FileDescriptors.
// Context cancellation stops the walk promptly.
func (w *Walker) Walk(ctx context.Context, cfg WalkerConfig) (*pipeline.DiscoveryResult, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %s: %w", cfg.Root, err)
	}

	// Verify root exists and is a directory.
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	// Build composite ignorer from all ignore sources.
	composite := NewCompositeIgnorer(
		cfg.DefaultIgnorer,
		cfg.GitignoreMatcher,
		cfg.CtxpackignoreMatcher,
	)

	// Load git-tracked file set if needed.
	var gitTracked map[string]bool
	if cfg.GitTrackedOnly {
		gitTracked, err = GitTrackedFiles(root)
		if err != nil {
			return nil, fmt.Errorf("loading git tracked files: %w", err)
		}
		w.logger.Debug("git-tracked-only mode",
			"tracked_files", len(gitTracked),
		)
	}

	// Symlink resolver for loop detection and root containment.
	symResolver := NewSymlinkResolver(root)

	// Phase 1: Walk and collect file descriptors.
	var files []*pipeline.FileDescriptor
	var ignoredDirs []string
	skipReasons := make(map[string]int)
	var mu sync.Mutex
	totalFound := 0

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		// Check context cancellation.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			w.logger.Debug("walk error",
				"path", path,
				"error", walkErr,
			)
			return nil // Skip entries with errors, don't abort.
		}

		// Compute relative path.
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		// Skip the root directory itself.
		if relPath == "." {
			return nil
		}

		isDir := d.IsDir()

		// Skip .git directory always.
		if isDir && d.Name() == ".git" {
			w.logger.Debug("skipping .git directory", "path", relPath)
			mu.Lock()
			ignoredDirs = append(ignoredDirs, relPath)
			mu.Unlock()
			return fs.SkipDir
		}

		// Check composite ignorer (defaults, .gitignore, .ctxpackignore).
		if composite.IsIgnored(relPath, isDir) {
			w.logger.Debug("ignored by pattern",
				"path", relPath,
				"is_dir", isDir,
			)
			if isDir {
				mu.Lock()
				skipReasons["ignored_dir"]++
				ignoredDirs = append(ignoredDirs, relPath)
				mu.Unlock()
				return fs.SkipDir
			}
			mu.Lock()
			totalFound++
			skipReasons["ignored"]++
			mu.Unlock()
			return nil
		}

		// For directories, no further processing needed.
		if isDir {
			return nil
		}

		// Count every non-directory entry we encounter.
		mu.Lock()
		totalFound++
		mu.Unlock()

		// Handle symlinks.
		isSymlink := d.Type()&os.ModeSymlink != 0
		absPath := path
		if isSymlink {
			realPath, isLoop, err := symResolver.Resolve(path)
			if err != nil {
				reason := "symlink_error"
				if errors.Is(err, ErrEscapesRoot) {
					reason = "symlink_escape"
				}
				w.logger.Debug("symlink error",
					"path", relPath,
					"error", err,
				)
				mu.Lock()
				skipReasons[reason]++
				mu.Unlock()
				return nil
			}
			if isLoop {
				w.logger.Debug("symlink loop",
					"path", relPath,
				)
				mu.Lock()
				skipReasons["symlink_loop"]++
				mu.Unlock()
				return nil
			}
			symResolver.MarkVisited(realPath)
			absPath = realPath
		}

		// Git-tracked-only check.
		if cfg.GitTrackedOnly && gitTracked != nil {
			if !gitTracked[relPath] {
				w.logger.Debug("not git-tracked",
					"path", relPath,
				)
				mu.Lock()
				skipReasons["not_tracked"]++
				mu.Unlock()
				return nil
			}
		}

		// Get file info for the size check and the descriptor fields.
		fileInfo, err := os.Stat(absPath)
		if err != nil {
			w.logger.Debug("stat error",
				"path", relPath,
				"error", err,
			)
			mu.Lock()
			skipReasons["stat_error"]++
			mu.Unlock()
			return nil
		}

		// Large file check.
		if cfg.SkipLargeFiles > 0 && fileInfo.Size() > cfg.SkipLargeFiles {
			w.logger.Debug("large file skipped",
				"path", relPath,
				"size", fileInfo.Size(),
				"threshold", cfg.SkipLargeFiles,
			)
			mu.Lock()
			skipReasons["large_file"]++
			mu.Unlock()
			return nil
		}

		// Pattern filter (include/exclude/extension).
		if cfg.PatternFilter != nil && cfg.PatternFilter.HasFilters() {
			if !cfg.PatternFilter.Matches(relPath) {
				w.logger.Debug("pattern filter excluded",
					"path", relPath,
				)
				mu.Lock()
				skipReasons["pattern_filter"]++
				mu.Unlock()
				return nil
			}
		}

		fd := &pipeline.FileDescriptor{
			Path:      relPath,
			AbsPath:   absPath,
			Size:      fileInfo.Size(),
			ModTime:   fileInfo.ModTime(),
			IsSymlink: isSymlink,
		}
		mu.Lock()
		files = append(files, fd)
		mu.Unlock()

		return nil
	})

	if walkErr != nil {
		return nil, fmt.Errorf("walking directory %s: %w", root, walkErr)
	}

	// Sort files and ignored directories by path for deterministic output.
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	sort.Strings(ignoredDirs)

	// Build result slice (convert pointers to values).
	resultFiles := make([]pipeline.FileDescriptor, len(files))
	for i, fd := range files {
		resultFiles[i] = *fd
	}

	totalSkipped := 0
	for _, count := range skipReasons {
		totalSkipped += count
	}

	result := &pipeline.DiscoveryResult{
		Files:        resultFiles,
		IgnoredDirs:  ignoredDirs,
		TotalFound:   totalFound,
		TotalSkipped: totalSkipped,
		SkipReasons:  skipReasons,
	}

	w.logger.Info("discovery complete",
		"files", len(resultFiles),
		"total_found", totalFound,
		"total_skipped", totalSkipped,
	)

	return result, nil
}
