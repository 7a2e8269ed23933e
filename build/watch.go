// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/veribetrkv/veridepend/buildconfig"
	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/ui"
)

// DefaultDebounce is the default quiet period before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions is an option of Watch.
type WatchOptions struct {
	// Debounce is the quiet period after the last change before rebuilding.
	// Default to DefaultDebounce.
	Debounce time.Duration

	// OnBuild is called after each build.
	OnBuild func(r *Result, err error)
}

// Watch builds roots, then rebuilds whenever a source or the config file
// changes, until ctx is done. The config file is reloaded before each
// rebuild unless the builder was given a config. Build failures are
// reported and watching continues; the previous deps file stays in place.
func (b *Builder) Watch(ctx context.Context, roots []string, opts WatchOptions) error {
	if len(roots) == 0 {
		return ErrNoRoots
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	watched := make(map[string]bool)

	build := func() {
		id := uuid.New().String()
		log.Infof("build %s start", id)
		r, err := b.Build(ctx, roots)
		if err != nil {
			log.Warnf("build %s failed: %v", id, err)
			ui.Default.Errorf("%v", err)
		} else {
			log.Infof("build %s done: %d modules %d rules", id, r.Graph.Len(), r.NumRules())
		}
		var g *graph.Static
		if r != nil {
			g = r.Graph
		}
		for _, dir := range b.watchDirs(roots, g) {
			if watched[dir] {
				continue
			}
			if err := w.Add(dir); err != nil {
				log.Warnf("failed to watch %s: %v", dir, err)
				continue
			}
			log.Debugf("watching %s", dir)
			watched[dir] = true
		}
		if opts.OnBuild != nil {
			opts.OnBuild(r, err)
		}
	}
	build()

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !b.relevant(ev) {
				continue
			}
			log.Debugf("change %s", ev)
			timer.Reset(opts.Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watcher error: %v", err)
		case <-timer.C:
			b.reload(ctx)
			build()
		}
	}
}

// reload reloads the config file, keeping the current config on error.
func (b *Builder) reload(ctx context.Context) {
	if !b.reloadConfig {
		return
	}
	cfg, err := LoadConfig(ctx, b.dir)
	if err != nil {
		log.Warnf("failed to reload config: %v", err)
		ui.Default.Warnf("%v; keep previous config", err)
		return
	}
	b.config = cfg
}

// relevant reports whether ev may change the generated deps file.
func (b *Builder) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if filepath.Base(ev.Name) == filepath.Base(buildconfig.Path()) {
		return true
	}
	return filepath.Ext(ev.Name) == b.config.SourceExt
}

// watchDirs returns directories to watch: the source root, directories
// under root directories, and directories of scanned modules.
func (b *Builder) watchDirs(roots []string, g *graph.Static) []string {
	dirs := []string{b.dir}
	add := func(dir string) {
		dirs = append(dirs, filepath.Join(b.dir, filepath.FromSlash(dir)))
	}
	for _, root := range roots {
		root = path.Clean(filepath.ToSlash(root))
		fi, err := fs.Stat(b.fsys, root)
		if err != nil {
			continue
		}
		if !fi.IsDir() {
			add(path.Dir(root))
			continue
		}
		err = fs.WalkDir(b.fsys, root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			log.Debugf("walk %s: %v", root, err)
		}
	}
	if g != nil {
		for _, m := range g.Modules() {
			add(path.Dir(string(m)))
		}
	}
	return dirs
}
