// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package graph provides the module graph consumed by the rule expander
// and orders it for deterministic rule emission.
package graph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Module identifies a source module by its normalized source path.
type Module string

// Graph is a read-only module graph.
//
// Modules may be returned in any order; DirectDeps order is significant
// and is preserved in the emitted rules.
type Graph interface {
	// Modules returns the set of modules in the graph.
	Modules() []Module
	// DirectDeps returns direct dependencies of m, in declaration order.
	DirectDeps(m Module) []Module
	// CanonicalPath returns the source path of m used in freshness rules.
	CanonicalPath(m Module) string
}

var (
	// ErrCycle is the kind of CycleError.
	ErrCycle = errors.New("dependency cycle")

	// ErrUnknownModule is reported for a dependency that is not a module of the graph.
	ErrUnknownModule = errors.New("unknown module")

	// ErrDuplicateModule is reported when a module is added twice.
	ErrDuplicateModule = errors.New("duplicate module")
)

// CycleError is returned when the module graph contains a cycle.
// Path starts and ends with the same module.
type CycleError struct {
	Path []Module
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCycle.Error()
	}
	s := make([]string, 0, len(e.Path))
	for _, m := range e.Path {
		s = append(s, string(m))
	}
	return fmt.Sprintf("%v: %s", ErrCycle, strings.Join(s, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// InvalidGraphError is returned for a structurally malformed graph.
type InvalidGraphError struct {
	Kind   error
	Module Module
	Dep    Module
}

func (e *InvalidGraphError) Error() string {
	if e.Dep == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Module)
	}
	return fmt.Sprintf("%v: %s (dependency of %s)", e.Kind, e.Dep, e.Module)
}

func (e *InvalidGraphError) Unwrap() error { return e.Kind }

// Static is an in-memory Graph.
type Static struct {
	deps  map[Module][]Module
	paths map[Module]string
}

// NewStatic returns an empty graph.
func NewStatic() *Static {
	return &Static{
		deps:  make(map[Module][]Module),
		paths: make(map[Module]string),
	}
}

// Add adds module m with its canonical path and direct dependencies.
// Repeated dependencies collapse to their first occurrence.
func (g *Static) Add(m Module, canonicalPath string, deps ...Module) error {
	if _, ok := g.deps[m]; ok {
		return &InvalidGraphError{Kind: ErrDuplicateModule, Module: m}
	}
	g.deps[m] = dedup(deps)
	g.paths[m] = canonicalPath
	return nil
}

// Modules returns modules sorted by identity.
func (g *Static) Modules() []Module {
	mods := make([]Module, 0, len(g.deps))
	for m := range g.deps {
		mods = append(mods, m)
	}
	slices.Sort(mods)
	return mods
}

// DirectDeps returns direct dependencies of m.
func (g *Static) DirectDeps(m Module) []Module {
	return slices.Clone(g.deps[m])
}

// CanonicalPath returns the canonical path of m.
func (g *Static) CanonicalPath(m Module) string {
	return g.paths[m]
}

// Len returns the number of modules.
func (g *Static) Len() int {
	return len(g.deps)
}

func dedup(deps []Module) []Module {
	if len(deps) == 0 {
		return nil
	}
	seen := make(map[Module]bool, len(deps))
	out := make([]Module, 0, len(deps))
	for _, d := range deps {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
