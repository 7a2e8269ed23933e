// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depsfile generates the make dependency file for the
// verification pipeline.
//
// The file holds, for each module in dependency order, a comment and the
// expanded rules of its dependency edges, followed by one line per module
// making the dependency file itself depend on the module's source:
//
//	# deps from lib/Maps.i.dfy
//	build/lib/Maps.i.dummydep: build/lib/Base.s.dummydep
//	...
//	build/deps: lib/Base.s.dfy
//	build/deps: lib/Maps.i.dfy
//
// The content is a pure function of the module graph, so an unchanged
// graph always produces identical bytes.
package depsfile

import (
	"bytes"

	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/rules"
	"github.com/veribetrkv/veridepend/toolsupport/makeutil"
)

// Generate sequences g, expands it with namer and table, and renders
// the dependency file named depsName.
func Generate(g graph.Graph, namer rules.Namer, table rules.Table, depsName string) ([]byte, error) {
	blocks, err := Expand(g, namer, table)
	if err != nil {
		return nil, err
	}
	return Render(g, blocks, depsName), nil
}

// Expand sequences g and expands every module's edges.
func Expand(g graph.Graph, namer rules.Namer, table rules.Table) ([]rules.Block, error) {
	order, err := graph.Sequence(g)
	if err != nil {
		return nil, err
	}
	e := &rules.Expander{
		Namer: namer,
		Table: table,
	}
	return e.Expand(g, order)
}

// Render renders blocks followed by one freshness rule per block's module.
func Render(g graph.Graph, blocks []rules.Block, depsName string) []byte {
	var buf bytes.Buffer
	for _, b := range blocks {
		buf.WriteString("\n# deps from ")
		buf.WriteString(string(b.Module))
		buf.WriteByte('\n')
		for _, r := range b.Rules {
			writeRule(&buf, r.Target, r.Prereq)
		}
	}
	for _, r := range Freshness(g, blocks, depsName) {
		writeRule(&buf, r.Target, r.Prereq)
	}
	return buf.Bytes()
}

// Freshness returns the rules binding depsName to each module's source.
func Freshness(g graph.Graph, blocks []rules.Block, depsName string) []rules.Rule {
	out := make([]rules.Rule, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, rules.Rule{
			Module: b.Module,
			Dep:    b.Module,
			Target: depsName,
			Prereq: g.CanonicalPath(b.Module),
		})
	}
	return out
}

func writeRule(buf *bytes.Buffer, target, prereq string) {
	buf.WriteString(makeutil.Escape(target))
	buf.WriteString(": ")
	buf.WriteString(makeutil.Escape(prereq))
	buf.WriteByte('\n')
}
