// Package mcpserver exposes the ctxpack pipeline as a Model Context Protocol
// service over stdio. Four tools map one-to-one onto the service surface:
// process_files (an explicit file list materialized into a scratch directory),
// process_repo (an already-cloned local repository path), capabilities, and
// progress. Job progress is tracked through an explicit registry of
// pipeline.ProgressHandle values owned by the Server, inserted per run and
// pruned oldest-first; there is no module-level state.
package mcpserver

import (
	"context"
	"runtime"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ctxpack/ctxpack/internal/buildinfo"
)

// Server wraps an MCP server plus the job registry its tools share.
type Server struct {
	mcp  *mcp.Server
	jobs *jobRegistry
}

// New constructs a Server with all four tools registered.
func New() *Server {
	s := &Server{jobs: newJobRegistry()}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "ctxpack",
		Version: buildinfo.Version,
	}, nil)
	s.registerTools()
	return s
}

// Serve runs the server over stdin/stdout until the client disconnects or
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name: "process_files",
		Description: "Package an explicit set of files into a single LLM-ready context document. " +
			"Files are materialized into a scratch directory and run through the full ctxpack pipeline " +
			"(filter, score, read, summarize, render, tokenize).",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"files"},
			Properties: map[string]*jsonschema.Schema{
				"files": {
					Type:        "array",
					Description: "Files to process, each a {path, content} pair with a repo-relative path",
					Items: &jsonschema.Schema{
						Type:     "object",
						Required: []string{"path", "content"},
						Properties: map[string]*jsonschema.Schema{
							"path":    {Type: "string", Description: "Path relative to the repository root, forward-slash form"},
							"content": {Type: "string", Description: "Full text content of the file"},
						},
					},
				},
				"format":                  {Type: "string", Description: "Output format: plain, markdown, xml, claude_xml"},
				"include":                 {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Include glob patterns"},
				"exclude":                 {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Exclude glob patterns"},
				"count_tokens":            {Type: "boolean", Description: "Count tokens in the packed file contents"},
				"token_encoding":          {Type: "string", Description: "Tokenizer encoding: cl100k_base, p50k_base, p50k_edit, r50k_base, o200k_base"},
				"tokens_only":             {Type: "boolean", Description: "Return only the token count and a content snippet, not the full document"},
				"file_selection_strategy": {Type: "string", Description: "File selection strategy: all or scoring"},
				"summarization_options":   {Type: "object", Description: "Summarizer options as flat snake_case keys, e.g. {\"enabled\": true, \"first_n_lines\": 20}"},
				"scoring_config":          {Type: "object", Description: "Scorer weights and thresholds as flat snake_case keys, e.g. {\"inclusion_threshold\": 0.3}"},
			},
		},
	}, s.handleProcessFiles)

	s.mcp.AddTool(&mcp.Tool{
		Name: "process_repo",
		Description: "Package an already-materialized local repository into a single LLM-ready context document. " +
			"Cloning is external: pass the checkout directory as local_path (repo_url is recorded but never fetched).",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"local_path"},
			Properties: map[string]*jsonschema.Schema{
				"repo_url":                {Type: "string", Description: "Origin URL of the repository, informational only"},
				"local_path":              {Type: "string", Description: "Local directory holding the materialized repository"},
				"token":                   {Type: "string", Description: "Access token for the origin, unused because cloning is external"},
				"format":                  {Type: "string", Description: "Output format: plain, markdown, xml, claude_xml"},
				"include":                 {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Include glob patterns"},
				"exclude":                 {Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: "Exclude glob patterns"},
				"count_tokens":            {Type: "boolean", Description: "Count tokens in the packed file contents"},
				"token_encoding":          {Type: "string", Description: "Tokenizer encoding: cl100k_base, p50k_base, p50k_edit, r50k_base, o200k_base"},
				"tokens_only":             {Type: "boolean", Description: "Return only the token count and a content snippet, not the full document"},
				"file_selection_strategy": {Type: "string", Description: "File selection strategy: all or scoring"},
				"summarization_options":   {Type: "object", Description: "Summarizer options as flat snake_case keys"},
				"scoring_config":          {Type: "object", Description: "Scorer weights and thresholds as flat snake_case keys"},
			},
		},
	}, s.handleProcessRepo)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "capabilities",
		Description: "Report the server's version and concurrency capabilities.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleCapabilities)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "progress",
		Description: "Poll a running or completed job's progress by the job_id returned from process_files/process_repo.",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"id"},
			Properties: map[string]*jsonschema.Schema{
				"id": {Type: "string", Description: "Job identifier"},
			},
		},
	}, s.handleProgress)
}

// capabilitiesResult mirrors the service contract's capabilities response.
type capabilitiesResult struct {
	AvailableThreads       int    `json:"availableThreads"`
	ServerVersion          string `json:"serverVersion"`
	SupportsMultithreading bool   `json:"supportsMultithreading"`
}

func (s *Server) handleCapabilities(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(capabilitiesResult{
		AvailableThreads:       runtime.NumCPU(),
		ServerVersion:          buildinfo.Version,
		SupportsMultithreading: true,
	})
}
