// Copyright IBM Corp. 2023, 2025

package main

import (
	"context"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/alecthomas/kong"
	"github.com/mknecht/jtar"
	"github.com/mknecht/jtar/internal/bench"
)

var CLI struct {
	InputArchives []string `arg:"" name:"input-archives" required:"true" help:"tar.gz archives to extract."`
	Iterations    int      `short:"i" default:"1" help:"Number of iterations to repeat the extraction."`
	Jtar          bool     `short:"e" default:"false" help:"Use the jtar extraction."`
	Parallel      bool     `short:"P" default:"false" help:"Use both extractions in parallel and compare the results."`
	Profile       bool     `short:"p" default:"false" help:"Write a memory profile after the extractions."`
	ProfileOut    string   `short:"o" default:"mem.pprof" help:"Output file for the profile."`
	Slug          bool     `short:"s" default:"false" help:"Use the go-slug extraction."`
	SrcFromMem    bool     `short:"m" default:"false" help:"Read input files into memory before extraction."`
	Verbose       bool     `short:"v" help:"Enable verbose output."`
}

// main function
func main() {
	ctx := context.Background()
	_ = kong.Parse(&CLI, kong.Description("Compare the tar.gz extraction of jtar and go-slug."))
	lvl := slog.LevelInfo
	if CLI.Verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))

	// declare extraction methods
	var methods []string
	if CLI.Jtar {
		methods = append(methods, bench.MethodJtar)
	}
	if CLI.Slug {
		methods = append(methods, bench.MethodSlug)
	}
	if CLI.Parallel {
		methods = append(methods, bench.MethodParallel)
	}
	if len(methods) == 0 {
		logger.Info("no extraction method specified, using jtar")
		methods = append(methods, bench.MethodJtar)
	}

	result, err := bench.Run(ctx, logger, bench.Options{
		Archives:    CLI.InputArchives,
		Iterations:  CLI.Iterations,
		Methods:     methods,
		SourceInMem: CLI.SrcFromMem,
		JtarConfig:  jtar.NewConfig(jtar.WithLogger(logger)),
	})
	if err != nil {
		logger.Error("benchmark failed", "error", err)
		os.Exit(1)
	}

	// log average, min and max duration
	for _, key := range bench.SortedKeys(result) {
		s := bench.Summarize(result[key])
		logger.Info("extraction profiling results", "key", key, "iterations", len(result[key]), "average", s.Avg, "min", s.Min, "max", s.Max, "std", s.Std)
	}

	// store memory profile
	if CLI.Profile {
		logger.Debug("writing memory profile", "filename", CLI.ProfileOut)
		f, err := os.Create(CLI.ProfileOut)
		if err != nil {
			logger.Error("error creating memory profile", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			logger.Error("error writing memory profile", "error", err)
		}
	}
}
