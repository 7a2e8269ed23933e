// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"context"
	"errors"
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/veribetrkv/veridepend/depsfile"
	"github.com/veribetrkv/veridepend/toolsupport/makeutil"
)

// Check regenerates the deps file in memory and compares its rules with
// the deps file on disk. Comments and line continuations are ignored.
// It returns *StaleError if they differ.
func (b *Builder) Check(ctx context.Context, roots []string) (*Result, error) {
	r, err := b.Generate(ctx, roots)
	if err != nil {
		return nil, err
	}
	fname := b.DepsPath()
	onDisk, err := depsfile.ReadRules(fname)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("%s doesn't exist", fname)
		onDisk = nil
	} else if err != nil {
		return nil, err
	}
	got := ruleLines(onDisk)
	want := ruleLines(makeutil.ParseRules(r.Data))
	if diff := cmp.Diff(got, want); diff != "" {
		return r, &StaleError{Path: fname, Diff: diff}
	}
	return r, nil
}

// ruleLines flattens rules into one "target: prereq" line per pair.
func ruleLines(rs []makeutil.Rule) []string {
	var lines []string
	for _, r := range rs {
		for _, t := range r.Targets {
			for _, p := range r.Prereqs {
				lines = append(lines, t+": "+p)
			}
		}
	}
	return lines
}
