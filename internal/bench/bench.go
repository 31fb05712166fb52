// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package bench compares the extraction of tar.gz archives by jtar with
// go-slug, the extraction that jtar replaces.
package bench

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	slug "github.com/hashicorp/go-slug"
	"github.com/mknecht/jtar"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// MethodJtar extracts with jtar
	MethodJtar = "jtar"

	// MethodSlug extracts with go-slug
	MethodSlug = "go-slug"

	// MethodParallel extracts with both from one stream and compares the results
	MethodParallel = "parallel"
)

// ExtractFunc extracts the tar.gz archive read from r into dst
type ExtractFunc func(ctx context.Context, r io.Reader, dst string) error

// Methods returns the extraction functions by name. cfg is used for jtar.
func Methods(cfg *jtar.Config) map[string]ExtractFunc {
	withJtar := func(ctx context.Context, r io.Reader, dst string) error {
		return jtar.UnpackTarGzFromStream(ctx, r, dst, cfg)
	}
	return map[string]ExtractFunc{
		MethodJtar: withJtar,
		MethodSlug: func(ctx context.Context, r io.Reader, dst string) error {
			return slug.Unpack(r, dst)
		},
		MethodParallel: func(ctx context.Context, r io.Reader, dst string) error {
			return unpackParallel(ctx, r, dst, withJtar)
		},
	}
}

// unpackParallel extracts r with go-slug into slugTarget and at the same time
// with extractor into a temporary directory, then compares both trees.
func unpackParallel(ctx context.Context, r io.Reader, slugTarget string, extractor ExtractFunc) error {
	// reading from the TeeReader writes to the pipe
	pipeRead, pipeWrite := io.Pipe()
	tee := io.TeeReader(r, pipeWrite)

	jtarTarget, err := os.MkdirTemp("", "jtar-*")
	if err != nil {
		return errors.Wrap(err, "cannot create temporary directory")
	}
	defer os.RemoveAll(jtarTarget)

	eg := &errgroup.Group{}
	eg.Go(func() error {
		err := slug.Unpack(tee, slugTarget)
		pipeWrite.CloseWithError(err)
		return errors.Wrap(err, "go-slug")
	})
	eg.Go(func() error {
		err := extractor(ctx, pipeRead, jtarTarget)

		// keep the other side going
		_, _ = io.Copy(io.Discard, pipeRead)
		return errors.Wrap(err, "jtar")
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	return CompareDirectories(slugTarget, jtarTarget)
}

// CompareDirectories returns an error if a file or directory below want is
// missing below got or differs in type or size.
func CompareDirectories(want string, got string) error {
	wantFiles, err := walk(want)
	if err != nil {
		return err
	}
	gotFiles, err := walk(got)
	if err != nil {
		return err
	}

	for _, path := range sortedKeys(wantFiles) {
		info := wantFiles[path]
		other, ok := gotFiles[path]
		if !ok {
			return fmt.Errorf("%s not found in %s", path, got)
		}
		if info.IsDir() != other.IsDir() {
			return fmt.Errorf("%s has a different type in %s", path, got)
		}
		if !info.IsDir() && info.Size() != other.Size() {
			return fmt.Errorf("%s has a different size in %s", path, got)
		}
	}
	return nil
}

// walk returns the file infos below root by relative path
func walk(root string) (map[string]os.FileInfo, error) {
	files := make(map[string]os.FileInfo)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrap(err, "error walking directory")
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = info
		return nil
	})
	return files, err
}

// Options control a benchmark run
type Options struct {
	Archives    []string
	Iterations  int
	Methods     []string
	SourceInMem bool
	JtarConfig  *jtar.Config
}

// Run extracts every archive with every method for the configured iterations
// and returns the durations by "<archive>-<method>". Failed extractions are
// logged and not part of the result.
func Run(ctx context.Context, logger *slog.Logger, opts Options) (map[string][]time.Duration, error) {
	methods := Methods(opts.JtarConfig)
	for _, name := range opts.Methods {
		if _, ok := methods[name]; !ok {
			return nil, errors.Errorf("unknown extraction method: %s", name)
		}
	}

	durations := make(map[string][]time.Duration)
	for i := 0; i < opts.Iterations; i++ {
		for _, archive := range opts.Archives {
			for _, name := range opts.Methods {
				d, err := Profile(ctx, archive, opts.SourceInMem, methods[name])
				if err != nil {
					logger.Error("error during extraction", "archive", archive, "method", name, "error", err)
					continue
				}
				logger.Debug("extraction finished", "archive", archive, "method", name, "duration", d)
				key := fmt.Sprintf("%s-%s", archive, name)
				durations[key] = append(durations[key], d)
			}
		}
	}
	return durations, nil
}

// Profile extracts archive with fn into a temporary directory and returns the duration
func Profile(ctx context.Context, archive string, fromMemory bool, fn ExtractFunc) (time.Duration, error) {
	dst, err := os.MkdirTemp("", "jtar-bench-*")
	if err != nil {
		return 0, errors.Wrap(err, "cannot create temporary directory")
	}
	defer os.RemoveAll(dst)

	var r io.Reader
	if fromMemory {
		b, err := os.ReadFile(archive)
		if err != nil {
			return 0, errors.Wrap(err, "cannot read archive")
		}
		r = bytes.NewReader(b)
	} else {
		f, err := os.Open(archive)
		if err != nil {
			return 0, errors.Wrap(err, "cannot open archive")
		}
		defer f.Close()
		r = f
	}

	start := time.Now()
	if err := fn(ctx, r, dst); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Stats summarizes durations
type Stats struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
	Std time.Duration
}

// Summarize returns the stats of durations, all zero if durations is empty
func Summarize(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	s := Stats{Min: time.Duration(math.MaxInt64), Max: time.Duration(math.MinInt64)}
	var sum time.Duration
	for _, d := range durations {
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
		sum += d
	}
	s.Avg = sum / time.Duration(len(durations))

	var variance float64
	for _, d := range durations {
		variance += math.Pow(float64(d-s.Avg), 2)
	}
	s.Std = time.Duration(math.Sqrt(variance / float64(len(durations))))
	return s
}

// sortedKeys returns the keys of m in sorted order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedKeys returns the keys of the result of [Run] in sorted order
func SortedKeys(m map[string][]time.Duration) []string {
	return sortedKeys(m)
}
