// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rules

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/veribetrkv/veridepend/graph"
)

// Namer names build targets.
// TargetName must be injective per stage.
type Namer interface {
	TargetName(m graph.Module, s Stage) string
}

// NamerFunc adapts a function to Namer.
type NamerFunc func(m graph.Module, s Stage) string

// TargetName calls f(m, s).
func (f NamerFunc) TargetName(m graph.Module, s Stage) string {
	return f(m, s)
}

// BuildDirNamer names targets <BuildDir>/<module without SourceExt><stage suffix>.
type BuildDirNamer struct {
	BuildDir  string
	SourceExt string
}

// TargetName implements Namer.
func (n BuildDirNamer) TargetName(m graph.Module, s Stage) string {
	base := strings.TrimSuffix(string(m), n.SourceExt)
	return path.Join(n.BuildDir, base) + s.Suffix()
}

// ErrNamingCollision is the kind of NamingCollisionError.
var ErrNamingCollision = errors.New("target naming collision")

// NamingCollisionError is returned when two modules get the same target
// name for a stage.
type NamingCollisionError struct {
	Stage   Stage
	Name    string
	Modules [2]graph.Module
}

func (e *NamingCollisionError) Error() string {
	return fmt.Sprintf("%v: %s and %s are both named %q for %s", ErrNamingCollision, e.Modules[0], e.Modules[1], e.Name, e.Stage)
}

func (e *NamingCollisionError) Unwrap() error { return ErrNamingCollision }

// CheckNames verifies namer is injective over mods for each stage.
func CheckNames(namer Namer, mods []graph.Module, stages []Stage) error {
	for _, s := range stages {
		owner := make(map[string]graph.Module, len(mods))
		for _, m := range mods {
			name := namer.TargetName(m, s)
			if other, ok := owner[name]; ok && other != m {
				return &NamingCollisionError{
					Stage:   s,
					Name:    name,
					Modules: [2]graph.Module{other, m},
				}
			}
			owner[name] = m
		}
	}
	return nil
}
