// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps provides the module graph of Dafny sources.
//
// It only checks the following form of include, at the start of a line
//
//	include "path/to/file.dfy"
//
// where the path is relative to the including file. Lines in `//`
// comments and `/* ... */` comment blocks are ignored. Other
// declarations are not parsed, so an include after a declaration
// is still recorded.
package scandeps

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/runtimex"
	"github.com/veribetrkv/veridepend/sync/semaphore"
)

// DefaultSourceExt is the extension of Dafny sources.
const DefaultSourceExt = ".dfy"

var (
	// ErrMissingInclude is reported for an include of a file that doesn't exist.
	ErrMissingInclude = errors.New("missing include")

	// ErrBadPath is reported for a path that is not inside the scanned
	// tree, or that can't be written in a make rule.
	ErrBadPath = errors.New("bad source path")
)

// IncludeError is an error in an include directive.
type IncludeError struct {
	File    string
	Line    int
	Include string
	Err     error
}

func (e *IncludeError) Error() string {
	return fmt.Sprintf("%s:%d: include %q: %v", e.File, e.Line, e.Include, e.Err)
}

func (e *IncludeError) Unwrap() error { return e.Err }

// Option is an option of Scan.
type Option struct {
	// SourceExt is the extension of sources found in root directories.
	// Default to DefaultSourceExt.
	SourceExt string

	// Concurrency is the maximum number of files read at once.
	// Non-positive means runtimex.Parallelism's default.
	Concurrency int
}

// Scan returns the module graph reachable from roots in fsys.
// A root is a source file or a directory to walk for sources.
// Module identities and canonical paths are slash separated paths in fsys.
func Scan(ctx context.Context, fsys fs.FS, roots []string, opt Option) (*graph.Static, error) {
	if opt.SourceExt == "" {
		opt.SourceExt = DefaultSourceExt
	}
	opt.Concurrency = runtimex.Parallelism(opt.Concurrency)
	started := time.Now()
	frontier, err := expandRoots(fsys, roots, opt.SourceExt)
	if err != nil {
		return nil, err
	}
	s := &scanner{
		fsys:     fsys,
		sema:     semaphore.New("scandeps", opt.Concurrency),
		includes: make(map[string][]string),
		from:     make(map[string]include),
	}
	for len(frontier) > 0 {
		frontier, err = s.scanWave(ctx, frontier)
		if err != nil {
			return nil, err
		}
	}
	g := graph.NewStatic()
	files := make([]string, 0, len(s.includes))
	for f := range s.includes {
		files = append(files, f)
	}
	slices.Sort(files)
	for _, f := range files {
		deps := make([]graph.Module, 0, len(s.includes[f]))
		for _, inc := range s.includes[f] {
			deps = append(deps, graph.Module(inc))
		}
		err := g.Add(graph.Module(f), filepath.FromSlash(f), deps...)
		if err != nil {
			return nil, err
		}
	}
	log.Debugf("scanned %d files in %s (%d reads)", len(files), time.Since(started), s.sema.NumRequests())
	return g, nil
}

// include is an include directive.
type include struct {
	file string
	line int
	name string
	path string
}

type scanner struct {
	fsys fs.FS
	sema *semaphore.Semaphore

	// file -> resolved includes, in order.
	includes map[string][]string
	// file -> first directive that included it.
	from map[string]include
}

// scanWave scans files concurrently and returns the files newly included
// by them, sorted.
func (s *scanner) scanWave(ctx context.Context, files []string) ([]string, error) {
	results := make([][]include, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	for i, fname := range files {
		eg.Go(func() error {
			return s.sema.Do(ctx, func(ctx context.Context) error {
				buf, err := fs.ReadFile(s.fsys, fname)
				if err != nil {
					if inc, ok := s.from[fname]; ok && errors.Is(err, fs.ErrNotExist) {
						return &IncludeError{File: inc.file, Line: inc.line, Include: inc.name, Err: ErrMissingInclude}
					}
					return err
				}
				incs, err := parseIncludes(fname, buf)
				if err != nil {
					return err
				}
				results[i] = incs
				return nil
			})
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	var next []string
	for i, fname := range files {
		paths := make([]string, 0, len(results[i]))
		for _, inc := range results[i] {
			paths = append(paths, inc.path)
			if _, ok := s.includes[inc.path]; ok {
				continue
			}
			if _, ok := s.from[inc.path]; ok {
				continue
			}
			if slices.Contains(files, inc.path) {
				continue
			}
			s.from[inc.path] = inc
			next = append(next, inc.path)
		}
		s.includes[fname] = paths
		log.Debugf("%s includes %q", fname, paths)
	}
	slices.Sort(next)
	return next, nil
}

// makeSafe reports whether p can be written as a make target or
// prerequisite. Make has no escape for ':' in rule lines, and a newline
// ends the rule.
func makeSafe(p string) bool {
	return !strings.ContainsAny(p, ":\n\r")
}

// expandRoots returns source files of roots, sorted and deduplicated.
func expandRoots(fsys fs.FS, roots []string, ext string) ([]string, error) {
	var files []string
	for _, root := range roots {
		root = path.Clean(filepath.ToSlash(root))
		if !fs.ValidPath(root) || !makeSafe(root) {
			return nil, fmt.Errorf("root %q: %w", root, ErrBadPath)
		}
		fi, err := fs.Stat(fsys, root)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", root, err)
		}
		if !fi.IsDir() {
			files = append(files, root)
			continue
		}
		err = fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || path.Ext(p) != ext {
				return nil
			}
			if !makeSafe(p) {
				return fmt.Errorf("source %q: %w", p, ErrBadPath)
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", root, err)
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}
