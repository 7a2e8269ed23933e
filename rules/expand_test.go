// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rules

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/veribetrkv/veridepend/graph"
)

func dotNamer(m graph.Module, s Stage) string {
	return string(m) + "." + string(s)
}

func mustGraph(t *testing.T, edges map[graph.Module][]graph.Module) (*graph.Static, []graph.Module) {
	t.Helper()
	g := graph.NewStatic()
	for m, deps := range edges {
		if err := g.Add(m, string(m)+".path", deps...); err != nil {
			t.Fatal(err)
		}
	}
	order, err := graph.Sequence(g)
	if err != nil {
		t.Fatalf("Sequence()=_, %v", err)
	}
	return g, order
}

func ruleStrings(blocks []Block) []string {
	var out []string
	for _, b := range blocks {
		for _, r := range b.Rules {
			out = append(out, r.String())
		}
	}
	return out
}

func TestExpandScenario(t *testing.T) {
	g, order := mustGraph(t, map[graph.Module][]graph.Module{
		"A": nil,
		"B": {"A"},
	})
	e := &Expander{
		Namer: NamerFunc(dotNamer),
		Table: Table{
			{"marker", "marker"},
			{"checked", "checked"},
		},
	}
	blocks, err := e.Expand(g, order)
	if err != nil {
		t.Fatalf("Expand()=_, %v; want nil err", err)
	}
	want := []string{
		"B.marker: A.marker",
		"B.checked: A.checked",
	}
	if diff := cmp.Diff(want, ruleStrings(blocks)); diff != "" {
		t.Errorf("Expand() diff -want +got:\n%s", diff)
	}
	if got := len(blocks); got != 2 {
		t.Errorf("len(blocks)=%d; want 2", got)
	}
	if len(blocks[0].Rules) != 0 {
		t.Errorf("block of %s has %d rules; want 0", blocks[0].Module, len(blocks[0].Rules))
	}
}

func TestExpandNoEdges(t *testing.T) {
	g, order := mustGraph(t, map[graph.Module][]graph.Module{
		"a": nil,
		"b": nil,
		"c": nil,
	})
	e := &Expander{Namer: NamerFunc(dotNamer), Table: DefaultTable()}
	blocks, err := e.Expand(g, order)
	if err != nil {
		t.Fatalf("Expand()=_, %v; want nil err", err)
	}
	if got := ruleStrings(blocks); len(got) != 0 {
		t.Errorf("Expand()=%q; want no rules", got)
	}
	if len(blocks) != 3 {
		t.Errorf("len(blocks)=%d; want 3", len(blocks))
	}
}

func TestExpandCompleteness(t *testing.T) {
	edges := map[graph.Module][]graph.Module{
		"lib/Base.s":     nil,
		"lib/Maps.i":     {"lib/Base.s"},
		"impl/Journal.i": {"lib/Base.s", "lib/Maps.i"},
		"Impl.i":         {"impl/Journal.i", "lib/Maps.i"},
	}
	g, order := mustGraph(t, edges)
	table := DefaultTable()
	e := &Expander{Namer: NamerFunc(dotNamer), Table: table}
	blocks, err := e.Expand(g, order)
	if err != nil {
		t.Fatalf("Expand()=_, %v; want nil err", err)
	}
	count := make(map[string]int)
	for _, s := range ruleStrings(blocks) {
		count[s]++
	}
	nedges := 0
	for m, deps := range edges {
		for _, d := range deps {
			nedges++
			for _, p := range table {
				r := Rule{Target: dotNamer(m, p.From), Prereq: dotNamer(d, p.To)}
				if count[r.String()] != 1 {
					t.Errorf("rule %q appears %d times; want 1", r, count[r.String()])
				}
			}
		}
	}
	if got, want := len(ruleStrings(blocks)), nedges*len(table); got != want {
		t.Errorf("number of rules=%d; want %d", got, want)
	}
}

func TestExpandNoFabrication(t *testing.T) {
	edges := map[graph.Module][]graph.Module{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
		"d": {"a", "c"},
		"e": nil,
	}
	g, order := mustGraph(t, edges)
	e := &Expander{Namer: NamerFunc(dotNamer), Table: DefaultTable()}
	blocks, err := e.Expand(g, order)
	if err != nil {
		t.Fatalf("Expand()=_, %v; want nil err", err)
	}
	for _, b := range blocks {
		direct := make(map[graph.Module]bool)
		for _, d := range g.DirectDeps(b.Module) {
			direct[d] = true
		}
		for _, r := range b.Rules {
			if r.Module != b.Module {
				t.Errorf("rule %q in block %s owned by %s", r, b.Module, r.Module)
			}
			if r.Dep != b.Module && !direct[r.Dep] {
				t.Errorf("rule %q: prerequisite module %s is not a dependency of %s", r, r.Dep, b.Module)
			}
			if want := dotNamer(r.Dep, r.Pair.To); r.Prereq != want {
				t.Errorf("rule %q: prerequisite=%q; want %q", r, r.Prereq, want)
			}
		}
	}
}

func TestExpandEdgeOrder(t *testing.T) {
	g, order := mustGraph(t, map[graph.Module][]graph.Module{
		"a": nil,
		"b": nil,
		"m": {"b", "a"},
	})
	e := &Expander{Namer: NamerFunc(dotNamer), Table: Table{{Marker, Marker}}}
	blocks, err := e.Expand(g, order)
	if err != nil {
		t.Fatalf("Expand()=_, %v; want nil err", err)
	}
	want := []string{
		"m.marker: b.marker",
		"m.marker: a.marker",
	}
	if diff := cmp.Diff(want, ruleStrings(blocks)); diff != "" {
		t.Errorf("Expand() diff -want +got:\n%s", diff)
	}
}

func TestExpandNamingCollision(t *testing.T) {
	g, order := mustGraph(t, map[graph.Module][]graph.Module{
		"lib/a.dfy": nil,
		"lib/a":     {"lib/a.dfy"},
	})
	e := &Expander{
		Namer: BuildDirNamer{BuildDir: "build", SourceExt: ".dfy"},
		Table: DefaultTable(),
	}
	_, err := e.Expand(g, order)
	if !errors.Is(err, ErrNamingCollision) {
		t.Fatalf("Expand()=_, %v; want %v", err, ErrNamingCollision)
	}
	var nerr *NamingCollisionError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expand()=_, %T; want *NamingCollisionError", err)
	}
	if got, want := nerr.Name, "build/lib/a.dummydep"; got != want {
		t.Errorf("collision name=%q; want %q", got, want)
	}
}

func TestExpandDuplicatePair(t *testing.T) {
	g, order := mustGraph(t, map[graph.Module][]graph.Module{"a": nil})
	e := &Expander{
		Namer: NamerFunc(dotNamer),
		Table: Table{{Marker, Marker}, {Marker, Marker}},
	}
	_, err := e.Expand(g, order)
	if !errors.Is(err, ErrDuplicatePair) {
		t.Errorf("Expand()=_, %v; want %v", err, ErrDuplicatePair)
	}
}
