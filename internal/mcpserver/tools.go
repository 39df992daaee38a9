package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/orchestrator"
	"github.com/ctxpack/ctxpack/internal/pipeline"
)

// snippetBytes is how much of the rendered document a tokens_only response
// carries in contentSnippet.
const snippetBytes = 256

// inlineFile is one uploaded file in a process_files call.
type inlineFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// runRequest holds the pipeline options shared by process_files and
// process_repo. summarization_options and scoring_config arrive as flat
// snake_case maps and are forwarded to the config resolver's CLI-flags
// layer under their dotted profile key prefixes, so the same merge
// precedence applies to a service call as to a CLI invocation.
type runRequest struct {
	Format               string         `json:"format"`
	Include              []string       `json:"include"`
	Exclude              []string       `json:"exclude"`
	CountTokens          bool           `json:"count_tokens"`
	TokenEncoding        string         `json:"token_encoding"`
	TokensOnly           bool           `json:"tokens_only"`
	SelectionStrategy    string         `json:"file_selection_strategy"`
	SummarizationOptions map[string]any `json:"summarization_options"`
	ScoringConfig        map[string]any `json:"scoring_config"`
}

type processFilesParams struct {
	Files []inlineFile `json:"files"`
	runRequest
}

type processRepoParams struct {
	RepoURL   string `json:"repo_url"`
	LocalPath string `json:"local_path"`
	Token     string `json:"token"`
	runRequest
}

// processResult is the response shape shared by both process tools.
type processResult struct {
	Success        bool                    `json:"success"`
	JobID          string                  `json:"job_id"`
	Content        string                  `json:"content,omitempty"`
	ContentSnippet string                  `json:"contentSnippet,omitempty"`
	TokenCount     int                     `json:"tokenCount,omitempty"`
	Tokenizer      string                  `json:"tokenizer,omitempty"`
	ScoringReport  *pipeline.ScoringReport `json:"scoring_report,omitempty"`
	Summary        *pipeline.RunSummary    `json:"summary,omitempty"`
}

func (s *Server) handleProcessFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p processFilesParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("process_files", fmt.Errorf("invalid parameters: %w", err))
	}
	if len(p.Files) == 0 {
		return errorResult("process_files", fmt.Errorf("files must contain at least one {path, content} entry"))
	}

	dir, err := os.MkdirTemp("", "ctxpack-files-*")
	if err != nil {
		return errorResult("process_files", fmt.Errorf("creating scratch directory: %w", err))
	}
	defer os.RemoveAll(dir)

	if err := materialize(dir, p.Files); err != nil {
		return errorResult("process_files", err)
	}

	result, err := s.runPipeline(ctx, dir, p.runRequest)
	if err != nil {
		return errorResult("process_files", err)
	}
	return jsonResult(result)
}

func (s *Server) handleProcessRepo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p processRepoParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("process_repo", fmt.Errorf("invalid parameters: %w", err))
	}
	if p.LocalPath == "" {
		return errorResult("process_repo", fmt.Errorf("local_path is required: cloning is external, pass the materialized checkout directory"))
	}
	info, err := os.Stat(p.LocalPath)
	if err != nil {
		return errorResult("process_repo", fmt.Errorf("local_path: %w", err))
	}
	if !info.IsDir() {
		return errorResult("process_repo", fmt.Errorf("local_path %s is not a directory", p.LocalPath))
	}

	result, err := s.runPipeline(ctx, p.LocalPath, p.runRequest)
	if err != nil {
		return errorResult("process_repo", err)
	}
	return jsonResult(result)
}

// progressResult mirrors the service contract's progress response.
type progressResult struct {
	ID             string  `json:"id"`
	TotalFiles     int     `json:"totalFiles"`
	ProcessedFiles int     `json:"processedFiles"`
	SkippedFiles   int     `json:"skippedFiles"`
	ErrorFiles     int     `json:"errorFiles"`
	CurrentFile    string  `json:"currentFile"`
	IsComplete     bool    `json:"isComplete"`
	Percentage     float64 `json:"percentage"`
	ElapsedMs      int64   `json:"elapsedMs"`
	Error          string  `json:"error,omitempty"`
}

func (s *Server) handleProgress(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("progress", fmt.Errorf("invalid parameters: %w", err))
	}

	st, ok := s.jobs.status(p.ID)
	if !ok {
		return errorResult("progress", fmt.Errorf("unknown job id %q", p.ID))
	}

	out := progressResult{
		ID:             p.ID,
		TotalFiles:     st.snapshot.FilesTotal,
		ProcessedFiles: st.snapshot.FilesDone,
		CurrentFile:    st.snapshot.CurrentPath,
		IsComplete:     st.done,
		ElapsedMs:      time.Since(st.started).Milliseconds(),
	}
	if st.done && st.summary != nil {
		out.TotalFiles = st.summary.TotalFiles
		out.ProcessedFiles = st.summary.ProcessedFiles
		out.SkippedFiles = st.summary.SkippedFiles
		out.ErrorFiles = st.summary.ErroredFiles
		out.ElapsedMs = st.summary.ElapsedMS
	}
	if st.runErr != nil {
		out.Error = st.runErr.Error()
	}
	switch {
	case st.done:
		out.Percentage = 100
	case out.TotalFiles > 0:
		out.Percentage = float64(out.ProcessedFiles) / float64(out.TotalFiles) * 100
	}

	return jsonResult(out)
}

// runPipeline resolves configuration for dir, registers a job, runs the
// orchestrator, and shapes the response. The rendered artifact is written to
// a scratch file and read back; the service response is its only consumer.
func (s *Server) runPipeline(ctx context.Context, dir string, r runRequest) (*processResult, error) {
	out, err := os.CreateTemp("", "ctxpack-mcp-*.out")
	if err != nil {
		return nil, fmt.Errorf("creating scratch output: %w", err)
	}
	outPath := out.Name()
	_ = out.Close()
	defer os.Remove(outPath)

	resolved, err := config.Resolve(config.ResolveOptions{
		TargetDir: dir,
		CLIFlags:  r.cliFlags(outPath),
	})
	if err != nil {
		return nil, pipeline.NewInvalidOptions("resolving configuration", err)
	}

	fv := &config.FlagValues{
		Dir:            dir,
		SkipLargeFiles: config.DefaultSkipLargeFiles,
	}

	id := uuid.New().String()
	progress := pipeline.NewProgressHandle()
	s.jobs.insert(id, progress)

	summary, err := orchestrator.Run(ctx, resolved.Profile, fv, progress)
	s.jobs.complete(id, summary, err)
	if err != nil {
		return nil, err
	}

	rendered, err := os.ReadFile(outPath)
	if err != nil {
		return nil, pipeline.NewIOError("reading rendered artifact", err)
	}

	result := &processResult{
		Success:       true,
		JobID:         id,
		ScoringReport: summary.Scoring,
		Summary:       summary,
	}
	if r.TokensOnly {
		snippet := string(rendered)
		if len(snippet) > snippetBytes {
			snippet = snippet[:snippetBytes]
		}
		result.ContentSnippet = snippet
	} else {
		result.Content = string(rendered)
	}
	if (r.CountTokens || r.TokensOnly) && !summary.TokenizerMissing {
		result.TokenCount = summary.TokenCount
		result.Tokenizer = resolved.Profile.TokenEncoding
	}
	return result, nil
}

// cliFlags converts the request into the flat dotted-key overrides the
// config resolver's CLI-flags layer expects. Only keys the caller actually
// sent are included, so a repo's own ctxpack.toml under local_path keeps
// its say over everything the request leaves unset.
func (r runRequest) cliFlags(outPath string) map[string]any {
	flags := map[string]any{"output": outPath}

	if r.Format != "" {
		flags["format"] = r.Format
	}
	if len(r.Include) > 0 {
		flags["include"] = r.Include
	}
	if len(r.Exclude) > 0 {
		flags["exclude"] = r.Exclude
	}
	if r.CountTokens || r.TokensOnly {
		flags["count_tokens"] = true
	}
	if r.TokenEncoding != "" {
		flags["token_encoding"] = r.TokenEncoding
	}
	if r.TokensOnly {
		flags["tokens_only"] = true
	}
	if r.SelectionStrategy != "" {
		flags["selection"] = r.SelectionStrategy
	}
	for k, v := range r.SummarizationOptions {
		flags["summarization."+k] = v
	}
	for k, v := range r.ScoringConfig {
		flags["scoring."+k] = v
	}
	return flags
}

// materialize writes the uploaded file set under dir, rejecting any path
// that would escape it.
func materialize(dir string, files []inlineFile) error {
	for _, f := range files {
		rel := path.Clean(f.Path)
		if rel == "" || rel == "." || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
			return fmt.Errorf("invalid file path %q: must be relative and stay within the repository", f.Path)
		}
		dst := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}
	return nil
}
