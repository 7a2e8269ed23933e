// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package build runs the dependency file generation: it scans module
// sources, expands their dependency edges and writes the deps file.
package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/veribetrkv/veridepend/buildconfig"
	"github.com/veribetrkv/veridepend/depsfile"
	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/rules"
	"github.com/veribetrkv/veridepend/scandeps"
	"github.com/veribetrkv/veridepend/ui"
)

// Options is builder options.
type Options struct {
	// Dir is the source root. Roots, the config's build dir and deps file
	// are relative to it. Empty means the current directory.
	Dir string

	// Config is the config. nil loads it from Dir.
	Config *buildconfig.Config

	// Concurrency is the number of sources scanned in parallel.
	Concurrency int
}

// Builder generates the dependency file.
type Builder struct {
	dir         string
	fsys        fs.FS
	config      *buildconfig.Config
	concurrency int

	// reloadConfig is set when config comes from the config file.
	reloadConfig bool
}

// New creates a builder.
func New(ctx context.Context, opts Options) (*Builder, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	fsys := os.DirFS(dir)
	cfg := opts.Config
	reload := cfg == nil
	if cfg == nil {
		var err error
		cfg, err = LoadConfig(ctx, dir)
		if err != nil {
			return nil, err
		}
	}
	return &Builder{
		dir:          dir,
		fsys:         fsys,
		config:       cfg,
		concurrency:  opts.Concurrency,
		reloadConfig: reload,
	}, nil
}

// LoadConfig loads the config file in dir, or $VERIDEPEND_CONFIG.
func LoadConfig(ctx context.Context, dir string) (*buildconfig.Config, error) {
	fname := buildconfig.Path()
	if filepath.IsAbs(fname) {
		return buildconfig.Load(ctx, os.DirFS(filepath.Dir(fname)), filepath.Base(fname))
	}
	return buildconfig.Load(ctx, os.DirFS(dir), filepath.ToSlash(filepath.Clean(fname)))
}

// Config returns the config used by the builder.
func (b *Builder) Config() *buildconfig.Config {
	return b.config
}

// DepsPath returns the path of the deps file.
func (b *Builder) DepsPath() string {
	return filepath.Join(b.dir, filepath.FromSlash(b.config.DepsFile))
}

// Result is a result of generation.
type Result struct {
	Graph  *graph.Static
	Blocks []rules.Block
	Data   []byte
}

// NumRules returns the number of cross-module rules.
func (r *Result) NumRules() int {
	n := 0
	for _, b := range r.Blocks {
		n += len(b.Rules)
	}
	return n
}

// Scan scans the module graph reachable from roots.
func (b *Builder) Scan(ctx context.Context, roots []string) (*graph.Static, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	return scandeps.Scan(ctx, b.fsys, roots, scandeps.Option{
		SourceExt:   b.config.SourceExt,
		Concurrency: b.concurrency,
	})
}

// Generate scans roots and renders the deps file in memory.
func (b *Builder) Generate(ctx context.Context, roots []string) (*Result, error) {
	g, err := b.Scan(ctx, roots)
	if err != nil {
		return nil, err
	}
	blocks, err := depsfile.Expand(g, b.config.Namer(), b.config.Expansion)
	if err != nil {
		return nil, err
	}
	return &Result{
		Graph:  g,
		Blocks: blocks,
		Data:   depsfile.Render(g, blocks, b.config.DepsFile),
	}, nil
}

// Build generates the deps file and writes it.
// On error, the previous deps file is left untouched.
func (b *Builder) Build(ctx context.Context, roots []string) (*Result, error) {
	started := time.Now()
	spin := ui.Default.NewSpinner()
	spin.Start("generating %s", b.config.DepsFile)
	r, err := b.Generate(ctx, roots)
	if err == nil {
		err = depsfile.Write(b.DepsPath(), r.Data)
	}
	if err != nil {
		spin.Stop(err)
		return nil, err
	}
	spin.Done("%d modules %d rules", r.Graph.Len(), r.NumRules())
	log.Debugf("build %s in %s", b.config.DepsFile, time.Since(started))
	return r, nil
}

// ErrStale is returned by Check when the deps file is out of date.
var ErrStale = errors.New("deps file is stale")

// StaleError describes how the deps file differs from the generated one.
type StaleError struct {
	Path string
	Diff string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s is stale (-on disk +generated):\n%s", e.Path, e.Diff)
}

func (e *StaleError) Unwrap() error { return ErrStale }
