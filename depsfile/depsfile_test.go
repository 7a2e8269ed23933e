// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depsfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/rules"
)

func newGraph(t *testing.T, edges map[graph.Module][]graph.Module) *graph.Static {
	t.Helper()
	g := graph.NewStatic()
	for m, deps := range edges {
		if err := g.Add(m, string(m)+".path", deps...); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

var dotNamer = rules.NamerFunc(func(m graph.Module, s rules.Stage) string {
	return string(m) + "." + string(s)
})

func TestGenerateScenario(t *testing.T) {
	g := newGraph(t, map[graph.Module][]graph.Module{
		"A": nil,
		"B": {"A"},
	})
	table := rules.Table{
		{From: "marker", To: "marker"},
		{From: "checked", To: "checked"},
	}
	got, err := Generate(g, dotNamer, table, "deps")
	if err != nil {
		t.Fatalf("Generate()=_, %v; want nil err", err)
	}
	want := `
# deps from A

# deps from B
B.marker: A.marker
B.checked: A.checked
deps: A.path
deps: B.path
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Generate() diff -want +got:\n%s", diff)
	}
}

func TestGenerateNoEdges(t *testing.T) {
	g := newGraph(t, map[graph.Module][]graph.Module{
		"x": nil,
		"y": nil,
		"z": nil,
	})
	got, err := Generate(g, dotNamer, rules.DefaultTable(), "deps")
	if err != nil {
		t.Fatalf("Generate()=_, %v; want nil err", err)
	}
	var ruleLines, freshLines []string
	for _, line := range strings.Split(string(got), "\n") {
		switch {
		case line == "", strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "deps: "):
			freshLines = append(freshLines, line)
		default:
			ruleLines = append(ruleLines, line)
		}
	}
	if len(ruleLines) != 0 {
		t.Errorf("rules=%q; want none", ruleLines)
	}
	want := []string{"deps: x.path", "deps: y.path", "deps: z.path"}
	if diff := cmp.Diff(want, freshLines); diff != "" {
		t.Errorf("freshness lines -want +got:\n%s", diff)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	edges := map[graph.Module][]graph.Module{
		"lib/Base.s.dfy":     nil,
		"lib/Maps.i.dfy":     {"lib/Base.s.dfy"},
		"lib/Sets.i.dfy":     {"lib/Base.s.dfy"},
		"impl/Journal.i.dfy": {"lib/Sets.i.dfy", "lib/Maps.i.dfy"},
		"Impl.i.dfy":         {"impl/Journal.i.dfy", "lib/Base.s.dfy"},
	}
	namer := rules.BuildDirNamer{BuildDir: "build", SourceExt: ".dfy"}
	first, err := Generate(newGraph(t, edges), namer, rules.DefaultTable(), "build/deps")
	if err != nil {
		t.Fatalf("Generate()=_, %v; want nil err", err)
	}
	for i := 0; i < 5; i++ {
		got, err := Generate(newGraph(t, edges), namer, rules.DefaultTable(), "build/deps")
		if err != nil {
			t.Fatalf("Generate()=_, %v; want nil err", err)
		}
		if !bytes.Equal(first, got) {
			t.Fatalf("Generate() run %d differs:\n%s", i, cmp.Diff(string(first), string(got)))
		}
	}
	for m := range edges {
		line := "build/deps: " + string(m) + ".path\n"
		if n := strings.Count(string(first), line); n != 1 {
			t.Errorf("freshness line %q appears %d times; want 1", line, n)
		}
	}
}

func TestGenerateCycleWritesNothing(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "deps")
	old := []byte("old content\n")
	if err := os.WriteFile(fname, old, 0644); err != nil {
		t.Fatal(err)
	}
	g := newGraph(t, map[graph.Module][]graph.Module{
		"A": {"B"},
		"B": {"A"},
	})
	got, err := Generate(g, dotNamer, rules.DefaultTable(), fname)
	if !errors.Is(err, graph.ErrCycle) {
		t.Fatalf("Generate()=_, %v; want %v", err, graph.ErrCycle)
	}
	if got != nil {
		t.Errorf("Generate()=%q; want nil", got)
	}
	b, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, old) {
		t.Errorf("deps file=%q; want %q", b, old)
	}
}

func TestGenerateEscapes(t *testing.T) {
	g := graph.NewStatic()
	if err := g.Add("my lib/a.dfy", "my lib/a.dfy"); err != nil {
		t.Fatal(err)
	}
	if err := g.Add("b.dfy", "b.dfy", "my lib/a.dfy"); err != nil {
		t.Fatal(err)
	}
	namer := rules.BuildDirNamer{BuildDir: "build", SourceExt: ".dfy"}
	got, err := Generate(g, namer, rules.Table{{From: rules.Marker, To: rules.Marker}}, "build/deps")
	if err != nil {
		t.Fatalf("Generate()=_, %v; want nil err", err)
	}
	want := `
# deps from my lib/a.dfy

# deps from b.dfy
build/b.dummydep: build/my\ lib/a.dummydep
build/deps: my\ lib/a.dfy
build/deps: b.dfy
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Generate() diff -want +got:\n%s", diff)
	}
}
