// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depsfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/veribetrkv/veridepend/toolsupport/makeutil"
)

// WriteError is returned when the dependency file can't be written.
// The previous file, if any, is left in place.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write atomically replaces fname with data.
// It writes to a temporary file in the same directory and renames it over
// fname, so readers see either the old or the new content.
func Write(fname string, data []byte) error {
	dir := filepath.Dir(fname)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: fname, Op: "mkdir", Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(fname)+".tmp.*")
	if err != nil {
		return &WriteError{Path: fname, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if committed {
			return
		}
		tmp.Close()
		if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
			log.Warnf("failed to remove %s: %v", tmpName, rerr)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return &WriteError{Path: fname, Op: "write", Err: err}
	}
	if err := tmp.Chmod(0644); err != nil {
		return &WriteError{Path: fname, Op: "chmod", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &WriteError{Path: fname, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: fname, Op: "close", Err: err}
	}
	if err := os.Rename(tmpName, fname); err != nil {
		return &WriteError{Path: fname, Op: "rename", Err: err}
	}
	committed = true
	if err := syncDir(dir); err != nil {
		log.Warnf("failed to sync %s: %v", dir, err)
	}
	log.Debugf("wrote %s: %d bytes", fname, len(data))
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// ReadRules parses the rules of an existing dependency file.
func ReadRules(fname string) ([]makeutil.Rule, error) {
	b, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return makeutil.ParseRules(b), nil
}
