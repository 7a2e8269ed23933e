// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rules

import (
	"github.com/charmbracelet/log"

	"github.com/veribetrkv/veridepend/graph"
)

// Rule means Target is not up to date until Prereq is.
type Rule struct {
	// Module owns the target; Dep owns the prerequisite.
	Module graph.Module
	Dep    graph.Module
	Pair   Pair

	Target string
	Prereq string
}

func (r Rule) String() string {
	return r.Target + ": " + r.Prereq
}

// Block holds the rules of one module, edge by edge.
type Block struct {
	Module graph.Module
	Rules  []Rule
}

// Expander expands each dependency edge by its table.
type Expander struct {
	Namer Namer
	Table Table
}

// Expand returns one block per module of order, in that order.
// order must contain every module of g with its deps placed first,
// as graph.Sequence returns.
func (e *Expander) Expand(g graph.Graph, order []graph.Module) ([]Block, error) {
	if err := e.Table.Validate(); err != nil {
		return nil, err
	}
	if err := CheckNames(e.Namer, order, e.Table.Stages()); err != nil {
		return nil, err
	}
	blocks := make([]Block, 0, len(order))
	nrules := 0
	for _, m := range order {
		b := Block{Module: m}
		seen := make(map[graph.Module]bool)
		for _, d := range g.DirectDeps(m) {
			if seen[d] {
				continue
			}
			seen[d] = true
			b.Rules = e.appendEdge(b.Rules, m, d)
		}
		nrules += len(b.Rules)
		blocks = append(blocks, b)
	}
	log.Debugf("expanded %d modules into %d rules with %d table pairs", len(order), nrules, len(e.Table))
	return blocks, nil
}

// appendEdge appends the rules for edge m -> d.
func (e *Expander) appendEdge(rules []Rule, m, d graph.Module) []Rule {
	for _, p := range e.Table {
		rules = append(rules, Rule{
			Module: m,
			Dep:    d,
			Pair:   p,
			Target: e.Namer.TargetName(m, p.From),
			Prereq: e.Namer.TargetName(d, p.To),
		})
	}
	return rules
}
