// Package orchestrator drives the full ctxpack run: enumerate, score and
// select, read, summarize, render, and tokenize. It is kept separate from
// internal/pipeline because pipeline holds the shared DTOs every stage
// package (discovery, scoring, reader, summarize, render, tokenizer)
// imports; an orchestrator living there would import all of them back and
// create an import cycle. This package sits one level up: it imports
// pipeline for the types and every stage package for the work.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/discovery"
	"github.com/ctxpack/ctxpack/internal/ner"
	"github.com/ctxpack/ctxpack/internal/pipeline"
	"github.com/ctxpack/ctxpack/internal/reader"
	"github.com/ctxpack/ctxpack/internal/render"
	"github.com/ctxpack/ctxpack/internal/scoring"
	"github.com/ctxpack/ctxpack/internal/summarize"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
)

// Run executes the state machine Idle -> Enumerating -> Scoring? -> Reading
// -> Summarizing? -> Tokenizing? -> Rendering -> Done, failing to Failed
// from any state. profile carries the fully resolved configuration (built
// by config.Resolve, layering defaults, config files, env vars, and CLI
// flags); fv carries the handful of run knobs that have no profile
// equivalent because they describe this invocation rather than reusable
// policy (Dir, Threads, Stdout, LineNumbers, GitTrackedOnly, SkipLargeFiles).
// progress may be nil; callers that want to poll run state (the --watch TUI,
// an MCP progress tool) pass their own handle instead.
//
// Cancellation and the run deadline do not abort empty-handed: whatever was
// read before the interruption is rendered to the output, marked truncated,
// and the Cancelled/Timeout error is returned alongside that summary.
func Run(ctx context.Context, profile *config.Profile, fv *config.FlagValues, progress *pipeline.ProgressHandle) (*pipeline.RunSummary, error) {
	if progress == nil {
		progress = pipeline.NewProgressHandle()
	}

	if profile.RunDeadlineSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(profile.RunDeadlineSeconds)*time.Second)
		defer cancel()
	}

	start := time.Now()
	phaseStart := start
	var timings []pipeline.PhaseTiming
	recordPhase := func(phase pipeline.Phase) {
		if !profile.ShowTiming {
			return
		}
		now := time.Now()
		timings = append(timings, pipeline.PhaseTiming{Phase: string(phase), Elapsed: now.Sub(phaseStart)})
		phaseStart = now
	}
	logf := func(msg string, args ...any) {
		if profile.Verbose {
			slog.Info(msg, args...)
		}
	}

	// interrupted flips when cancellation or the deadline fires mid-run.
	// Unlike an ordinary stage failure, an interrupted run still renders a
	// best-effort partial artifact before the Timeout/Cancelled error is
	// returned.
	var interrupted bool

	// ── Enumerate ──────────────────────────────────────────────────────────
	progress.SetPhase(pipeline.PhaseEnumerating)
	logf("pipeline: enumerating", "dir", fv.Dir)

	var files []pipeline.FileDescriptor
	var ignoredDirs []string
	discoveryResult, err := discoverFiles(ctx, fv, profile)
	if err != nil {
		if ctx.Err() == nil {
			progress.Fail(err)
			return nil, classifyErr(ctx, "discovery failed", err)
		}
		interrupted = true
	} else {
		files = discoveryResult.Files
		ignoredDirs = discoveryResult.IgnoredDirs
	}
	progress.SetCounts(0, len(files))
	recordPhase(pipeline.PhaseEnumerating)

	// ── Score / select ───────────────────────────────────────────────────────
	var scoringReport *pipeline.ScoringReport
	if !interrupted && pipeline.SelectionStrategy(profile.Selection) == pipeline.SelectionScoring {
		progress.SetPhase(pipeline.PhaseScoring)
		logf("pipeline: scoring", "files", len(files))

		scorer := scoring.NewFileScorer(profile.Scoring, files, time.Now())
		report := scoring.Report(scorer.ScoreAll(files))
		scoringReport = &report

		byPath := make(map[string]pipeline.FileDescriptor, len(files))
		for _, fd := range files {
			byPath[fd.Path] = fd
		}
		selected := make([]pipeline.FileDescriptor, 0, len(files))
		for _, sf := range report.Files {
			if sf.Included {
				selected = append(selected, byPath[sf.Path])
			}
		}
		files = selected
		recordPhase(pipeline.PhaseScoring)
	}

	// ── Read ───────────────────────────────────────────────────────────────
	progress.SetPhase(pipeline.PhaseReading)
	logf("pipeline: reading", "files", len(files))

	processed, err := reader.New(fv.Threads).ReadAll(ctx, files)
	if err != nil {
		if ctx.Err() == nil {
			progress.Fail(err)
			return nil, classifyErr(ctx, "reading failed", err)
		}
		// ReadAll returns the files completed before cancellation; keep
		// them for the partial artifact.
		interrupted = true
	}
	progress.SetCounts(len(processed), len(files))
	recordPhase(pipeline.PhaseReading)

	if scoringReport != nil {
		scoreByPath := make(map[string]pipeline.ScoredFile, len(scoringReport.Files))
		for _, sf := range scoringReport.Files {
			scoreByPath[sf.Path] = sf
		}
		for i := range processed {
			if sf, ok := scoreByPath[processed[i].Path]; ok {
				sfCopy := sf
				processed[i].Score = &sfCopy
			}
		}
	}

	// ── Summarize ──────────────────────────────────────────────────────────
	if !interrupted && profile.Summarization.Enabled {
		progress.SetPhase(pipeline.PhaseSummarizing)
		logf("pipeline: summarizing", "files", len(processed))

		summarizer := summarize.New(profile.Summarization, ner.New(profile.Summarization.NER))
		for i := range processed {
			if ctx.Err() != nil {
				interrupted = true
				break
			}
			progress.SetCurrentPath(processed[i].Path)
			processed[i] = summarizer.Summarize(ctx, processed[i])
		}
		recordPhase(pipeline.PhaseSummarizing)
	}

	// ── Tokenize ───────────────────────────────────────────────────────────
	// Tokenizing before rendering lets TokensOnly report counts without
	// paying for a full render, and lets a normal run embed TokenCount in
	// the rendered per-file metadata.
	var tokenizerMissing bool
	var tokenTotal int
	if profile.CountTokens {
		progress.SetPhase(pipeline.PhaseTokenizing)
		logf("pipeline: tokenizing", "encoding", profile.TokenEncoding)

		tok, err := tokenizer.NewTokenizer(profile.TokenEncoding)
		if err != nil {
			slog.Warn("tokenizer unavailable, continuing without token counts",
				"encoding", profile.TokenEncoding, "error", err)
			tokenizerMissing = true
		} else {
			ptrs := make([]*pipeline.ProcessedFile, len(processed))
			for i := range processed {
				ptrs[i] = &processed[i]
			}
			total, err := tokenizer.NewTokenCounter(tok).CountFiles(ctx, ptrs)
			if err != nil {
				if ctx.Err() == nil {
					progress.Fail(err)
					return nil, classifyErr(ctx, "tokenizing failed", err)
				}
				interrupted = true
			}
			tokenTotal = total
		}
		recordPhase(pipeline.PhaseTokenizing)
	}

	// ── Render ─────────────────────────────────────────────────────────────
	progress.SetPhase(pipeline.PhaseRendering)
	logf("pipeline: rendering", "format", profile.Format, "tokens_only", profile.TokensOnly)

	out, closeOut, err := openOutput(fv, profile)
	if err != nil {
		progress.Fail(err)
		return nil, pipeline.NewIOError("opening output", err)
	}
	defer closeOut()

	format, ok := pipeline.ParseOutputFormat(profile.Format)
	if !ok {
		format = pipeline.FormatPlain
	}

	renderFiles := processed
	if profile.TokensOnly {
		// TokensOnly: keep every bookkeeping field (path, size, line count,
		// token count) but drop the body, so the renderer still produces a
		// structurally complete document with no file content in it.
		renderFiles = make([]pipeline.ProcessedFile, len(processed))
		copy(renderFiles, processed)
		for i := range renderFiles {
			renderFiles[i].Content = ""
		}
	}

	runInput := &pipeline.RunInput{
		Files:          renderFiles,
		RootDir:        fv.Dir,
		Format:         format,
		Target:         pipeline.LLMTarget(profile.Target),
		LineNumbers:    fv.LineNumbers,
		MaxOutputBytes: profile.MaxOutputBytes,
		IgnoredDirs:    ignoredDirs,
		ElapsedMS:      time.Since(start).Milliseconds(),
		TokenCount:     tokenTotal,
		Truncated:      interrupted,
	}

	// Rendering always runs to completion, even when the run context is
	// already cancelled: timeout and cancellation still flush a best-effort
	// artifact, marked truncated.
	summary, err := render.New(format).Render(context.WithoutCancel(ctx), out, runInput)
	if err != nil {
		progress.Fail(err)
		return nil, classifyErr(ctx, "rendering failed", err)
	}
	recordPhase(pipeline.PhaseRendering)

	summary.Scoring = scoringReport
	summary.TokenizerMissing = tokenizerMissing
	summary.Truncated = summary.ContentTruncated || interrupted
	summary.ElapsedMS = time.Since(start).Milliseconds()
	if profile.ShowTiming {
		summary.PhaseTimings = timings
	}
	summary.TokenCount = tokenTotal

	if interrupted {
		// The artifact holds only what was read before the interruption;
		// report the full discovered count so processed < total is visible.
		summary.TotalFiles = len(files)
		err := classifyErr(ctx, "run interrupted", ctx.Err())
		progress.Fail(err)
		logf("pipeline: interrupted, partial artifact flushed",
			"processed_files", summary.ProcessedFiles, "total_files", len(files))
		return summary, err
	}

	progress.SetPhase(pipeline.PhaseDone)
	logf("pipeline: done", "elapsed_ms", summary.ElapsedMS, "processed_files", summary.ProcessedFiles)

	return summary, nil
}

// Preview runs discovery, optional scoring/selection, reading, and
// tokenizing without summarizing or rendering, backing `ctxpack preview`'s
// read-only token/heatmap reports.
func Preview(ctx context.Context, profile *config.Profile, fv *config.FlagValues, tokenizerName string) ([]*pipeline.ProcessedFile, error) {
	discoveryResult, err := discoverFiles(ctx, fv, profile)
	if err != nil {
		return nil, classifyErr(ctx, "discovery failed", err)
	}
	files := discoveryResult.Files

	if pipeline.SelectionStrategy(profile.Selection) == pipeline.SelectionScoring {
		scorer := scoring.NewFileScorer(profile.Scoring, files, time.Now())
		report := scoring.Report(scorer.ScoreAll(files))

		byPath := make(map[string]pipeline.FileDescriptor, len(files))
		for _, fd := range files {
			byPath[fd.Path] = fd
		}
		selected := make([]pipeline.FileDescriptor, 0, len(files))
		for _, sf := range report.Files {
			if sf.Included {
				selected = append(selected, byPath[sf.Path])
			}
		}
		files = selected
	}

	processed, err := reader.New(fv.Threads).ReadAll(ctx, files)
	if err != nil {
		return nil, classifyErr(ctx, "reading failed", err)
	}

	tok, err := tokenizer.NewTokenizer(tokenizerName)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer %q: %w", tokenizerName, err)
	}
	ptrs := make([]*pipeline.ProcessedFile, len(processed))
	for i := range processed {
		ptrs[i] = &processed[i]
	}
	if _, err := tokenizer.NewTokenCounter(tok).CountFiles(ctx, ptrs); err != nil {
		return nil, classifyErr(ctx, "tokenizing failed", err)
	}

	return ptrs, nil
}

// discoverFiles assembles a discovery.WalkerConfig from fv and profile and
// runs the walk. Missing .gitignore/.ctxpackignore files are not an error:
// NewGitignoreMatcher/NewCtxignoreMatcher only fail on a malformed pattern,
// and a repo with none of either file simply contributes no extra ignorer.
func discoverFiles(ctx context.Context, fv *config.FlagValues, profile *config.Profile) (*pipeline.DiscoveryResult, error) {
	var gitignoreMatcher discovery.Ignorer
	if m, err := discovery.NewGitignoreMatcher(fv.Dir); err != nil {
		slog.Debug("gitignore matcher unavailable", "error", err)
	} else {
		gitignoreMatcher = m
	}

	var ctxignoreMatcher discovery.Ignorer
	if m, err := discovery.NewCtxignoreMatcher(fv.Dir); err != nil {
		slog.Debug("ctxpackignore matcher unavailable", "error", err)
	} else {
		ctxignoreMatcher = m
	}

	patternFilter := discovery.NewPatternFilter(discovery.PatternFilterOptions{
		Includes: profile.Include,
		Excludes: profile.Exclude,
	})

	walker := discovery.NewWalker()
	return walker.Walk(ctx, discovery.WalkerConfig{
		Root:                 fv.Dir,
		GitignoreMatcher:     gitignoreMatcher,
		CtxpackignoreMatcher: ctxignoreMatcher,
		DefaultIgnorer:       discovery.NewDefaultIgnoreMatcher(),
		PatternFilter:        patternFilter,
		GitTrackedOnly:       fv.GitTrackedOnly,
		SkipLargeFiles:       fv.SkipLargeFiles,
	})
}

// openOutput returns the writer the render phase writes to and a closer the
// caller must always invoke. Stdout is never closed; a created file is.
func openOutput(fv *config.FlagValues, profile *config.Profile) (*os.File, func(), error) {
	if fv.Stdout {
		return os.Stdout, func() {}, nil
	}

	outPath := profile.Output
	if outPath == "" {
		outPath = config.DefaultOutput
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("creating output file %s: %w", outPath, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// classifyErr maps a stage failure to the CtxpackError kind the CLI's exit
// code mapping expects, distinguishing a deadline/cancellation from an
// ordinary I/O failure.
func classifyErr(ctx context.Context, msg string, err error) error {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return pipeline.NewTimeoutError(msg)
	case context.Canceled:
		return pipeline.NewCancelledError(msg)
	default:
		return pipeline.NewIOError(msg, err)
	}
}
