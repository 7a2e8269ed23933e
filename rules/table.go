// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rules

import (
	"errors"
	"fmt"
)

// ErrDuplicatePair is reported when a table lists a stage pair twice.
var ErrDuplicatePair = errors.New("duplicate stage pair")

// Pair links stage From of a dependent module to stage To of its dependency.
type Pair struct {
	From Stage
	To   Stage
}

func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", p.From, p.To)
}

// Table is an expansion table. Order is the emission order within an edge.
type Table []Pair

// DefaultTable returns the pipeline's expansion table.
func DefaultTable() Table {
	return Table{
		// presence only: d merely needs to exist.
		{Marker, Marker},
		{SyntaxCheck, Marker},
		{VerificationCheck, Marker},
		{TranspiledCS, Marker},
		{CompileLogCheck, Marker},

		// same kind.
		{TranspiledSource, TranspiledSource},
		{VerificationReport, VerificationReport},
		{SyntaxReport, SyntaxReport},
		{CompletionMarker, CompletionMarker},
		{CompileLogReport, CompileLogReport},

		// compiled artifacts.
		{CompiledObject, CompiledObject},
		{TranspiledSource, CompiledObject},

		// reports depend on the dependency's own check.
		{VerificationReport, VerificationCheck},
		{SyntaxReport, SyntaxCheck},
		{CompileLogReport, CompileLogCheck},
	}
}

// Validate checks that t has no duplicate pair.
func (t Table) Validate() error {
	seen := make(map[Pair]bool, len(t))
	for _, p := range t {
		if p.From == "" || p.To == "" {
			return fmt.Errorf("empty stage in %s", p)
		}
		if seen[p] {
			return fmt.Errorf("%w: %s", ErrDuplicatePair, p)
		}
		seen[p] = true
	}
	return nil
}

// Stages returns stages used on either side of t, in first-use order.
func (t Table) Stages() []Stage {
	seen := make(map[Stage]bool)
	var stages []Stage
	add := func(s Stage) {
		if seen[s] {
			return
		}
		seen[s] = true
		stages = append(stages, s)
	}
	for _, p := range t {
		add(p.From)
		add(p.To)
	}
	return stages
}

// ParseTable builds a table from stage name pairs.
func ParseTable(pairs [][2]string) (Table, error) {
	t := make(Table, 0, len(pairs))
	for _, p := range pairs {
		t = append(t, Pair{From: Stage(p[0]), To: Stage(p[1])})
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
