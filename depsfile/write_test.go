// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depsfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/veribetrkv/veridepend/toolsupport/makeutil"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "build", "deps")

	for _, content := range []string{"a: b\n", "a: c\nbuild/deps: a.dfy\n"} {
		if err := Write(fname, []byte(content)); err != nil {
			t.Fatalf("Write(%q)=%v; want nil", fname, err)
		}
		got, err := os.ReadFile(fname)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != content {
			t.Errorf("content=%q; want %q", got, content)
		}
	}
	fi, err := os.Stat(fname)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := fi.Mode().Perm(), os.FileMode(0644); got != want {
		t.Errorf("mode=%v; want %v", got, want)
	}
	assertNoTemp(t, filepath.Dir(fname), "deps")
}

func TestWriteFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	// a directory in place of the deps file makes rename fail.
	fname := filepath.Join(dir, "deps")
	if err := os.MkdirAll(filepath.Join(fname, "keep"), 0755); err != nil {
		t.Fatal(err)
	}
	err := Write(fname, []byte("a: b\n"))
	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("Write()=%v; want *WriteError", err)
	}
	if werr.Op != "rename" {
		t.Errorf("WriteError.Op=%q; want %q", werr.Op, "rename")
	}
	if _, err := os.Stat(filepath.Join(fname, "keep")); err != nil {
		t.Errorf("previous content was modified: %v", err)
	}
	assertNoTemp(t, dir, "deps")
}

func TestReadRules(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "deps")
	content := "\n# deps from a.dfy\n\n# deps from b.dfy\nbuild/b.okay: build/a.okay\ndeps: a.dfy\ndeps: b.dfy\n"
	if err := Write(fname, []byte(content)); err != nil {
		t.Fatal(err)
	}
	got, err := ReadRules(fname)
	if err != nil {
		t.Fatalf("ReadRules()=_, %v; want nil err", err)
	}
	want := []makeutil.Rule{
		{Targets: []string{"build/b.okay"}, Prereqs: []string{"build/a.okay"}},
		{Targets: []string{"deps"}, Prereqs: []string{"a.dfy"}},
		{Targets: []string{"deps"}, Prereqs: []string{"b.dfy"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRules() diff -want +got:\n%s", diff)
	}
}

func assertNoTemp(t *testing.T, dir, base string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, base+".tmp.*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Errorf("temporary files left: %q", matches)
	}
}
