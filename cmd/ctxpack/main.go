// Package main is the entry point for the ctxpack CLI tool.
package main

import (
	"os"

	"github.com/ctxpack/ctxpack/internal/buildinfo"
	"github.com/ctxpack/ctxpack/internal/cli"
)

// Build-time metadata injected via ldflags; mirrored into
// internal/buildinfo so the rest of the tree never imports main.
var (
	version   = "dev"
	commit    = "none"
	date      = "unknown"
	goVersion = "unknown"
)

func main() {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
	buildinfo.GoVersion = goVersion

	os.Exit(cli.Execute())
}
