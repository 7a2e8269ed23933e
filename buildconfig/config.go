// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildconfig loads the veridepend config written in Starlark.
//
// The config file is optional. It may set the following globals:
//
//	build_dir = "build"          # directory of build targets
//	deps_file = "build/deps"     # generated dependency file
//	source_ext = ".dfy"          # extension of module sources
//	expansion = default_expansion + [("completion-marker", "verification-report")]
//
// `default_expansion` is predeclared as the list of (from, to) stage pairs
// of the default expansion table.
package buildconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"

	"github.com/veribetrkv/veridepend/rules"
	"github.com/veribetrkv/veridepend/scandeps"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = ".veridepend.star"

	// EnvConfig overrides the config file location.
	EnvConfig = "VERIDEPEND_CONFIG"
)

// Config is a veridepend config.
type Config struct {
	// BuildDir is the directory build targets are named in.
	BuildDir string

	// DepsFile is the path of the generated dependency file.
	DepsFile string

	// SourceExt is the extension of module sources.
	SourceExt string

	// Expansion is the expansion table.
	Expansion rules.Table
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		BuildDir:  "build",
		DepsFile:  "build/deps",
		SourceExt: scandeps.DefaultSourceExt,
		Expansion: rules.DefaultTable(),
	}
}

// Namer returns the target namer of the config.
func (c *Config) Namer() rules.Namer {
	return rules.BuildDirNamer{
		BuildDir:  c.BuildDir,
		SourceExt: c.SourceExt,
	}
}

// Path returns the config file to load: $VERIDEPEND_CONFIG or DefaultFile.
func Path() string {
	if fname := os.Getenv(EnvConfig); fname != "" {
		return fname
	}
	return DefaultFile
}

// Load loads the config file fname in fsys.
// If fname doesn't exist, it returns the default config.
func Load(ctx context.Context, fsys fs.FS, fname string) (*Config, error) {
	cfg := Default()
	buf, err := fs.ReadFile(fsys, fname)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("no config %s: use default", fname)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", fname, err)
	}
	loader := &loader{
		fsys:        fsys,
		predeclared: predeclared(),
	}
	thread := &starlark.Thread{
		Name: "load",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: loader.Load,
	}
	thread.SetLocal("modulename", fname)
	globals, err := starlark.ExecFile(thread, fname, buf, loader.predeclared)
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, fmt.Errorf("failed to exec %s: %w", fname, err)
	}
	log.Debugf("config: %s", globals)
	if err := cfg.update(globals); err != nil {
		return nil, fmt.Errorf("bad config %s: %w", fname, err)
	}
	return cfg, nil
}

func (c *Config) update(globals starlark.StringDict) error {
	for name, dst := range map[string]*string{
		"build_dir":  &c.BuildDir,
		"deps_file":  &c.DepsFile,
		"source_ext": &c.SourceExt,
	} {
		v, ok := globals[name]
		if !ok {
			continue
		}
		s, ok := starlark.AsString(v)
		if !ok || s == "" {
			return fmt.Errorf("%s: want non-empty string, got %s", name, v.Type())
		}
		*dst = s
	}
	v, ok := globals["expansion"]
	if !ok {
		return nil
	}
	pairs, err := unpackPairs(v)
	if err != nil {
		return fmt.Errorf("expansion: %w", err)
	}
	table, err := rules.ParseTable(pairs)
	if err != nil {
		return fmt.Errorf("expansion: %w", err)
	}
	c.Expansion = table
	return nil
}

func unpackPairs(v starlark.Value) ([][2]string, error) {
	iterable, ok := v.(starlark.Iterable)
	if !ok {
		return nil, fmt.Errorf("want list of (from, to), got %s", v.Type())
	}
	var pairs [][2]string
	iter := iterable.Iterate()
	defer iter.Done()
	var elem starlark.Value
	for iter.Next(&elem) {
		t, ok := elem.(starlark.Tuple)
		if !ok || t.Len() != 2 {
			return nil, fmt.Errorf("want (from, to), got %s", elem)
		}
		from, ok1 := starlark.AsString(t[0])
		to, ok2 := starlark.AsString(t[1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("want pair of strings, got %s", elem)
		}
		pairs = append(pairs, [2]string{from, to})
	}
	return pairs, nil
}

func predeclared() starlark.StringDict {
	table := rules.DefaultTable()
	pairs := make([]starlark.Value, 0, len(table))
	for _, p := range table {
		pairs = append(pairs, starlark.Tuple{starlark.String(p.From), starlark.String(p.To)})
	}
	list := starlark.NewList(pairs)
	list.Freeze()
	return starlark.StringDict{
		"default_expansion": list,
	}
}
