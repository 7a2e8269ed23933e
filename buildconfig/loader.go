// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package buildconfig

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
)

// loader is a Starlark module loader.
// A module is loaded relative to the directory of the loading module.
type loader struct {
	fsys        fs.FS
	predeclared starlark.StringDict
}

// Load loads a Starlark module.
func (l *loader) Load(thread *starlark.Thread, module string) (starlark.StringDict, error) {
	curname, _ := thread.Local("modulename").(string)
	fname := module
	if !path.IsAbs(fname) {
		fname = path.Join(path.Dir(curname), module)
	}
	log.Debugf("load %s from %s: %s", module, curname, fname)
	buf, err := fs.ReadFile(l.fsys, fname)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", fname, err)
	}
	t := &starlark.Thread{
		Name: "module " + module,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: l.Load,
	}
	t.SetLocal("modulename", fname)
	return starlark.ExecFile(t, fname, buf, l.predeclared)
}
