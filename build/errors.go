// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package build

import (
	"errors"
	"flag"
	"io/fs"

	"github.com/veribetrkv/veridepend/depsfile"
	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/rules"
)

// ErrNoRoots is returned when no source root is given.
var ErrNoRoots = errors.New("no source roots")

// Exit codes.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitUsage           = 2
	ExitCycle           = 3
	ExitNamingCollision = 4
	ExitIO              = 5
)

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	var (
		cycleErr     *graph.CycleError
		collisionErr *rules.NamingCollisionError
		writeErr     *depsfile.WriteError
		pathErr      *fs.PathError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cycleErr):
		return ExitCycle
	case errors.As(err, &collisionErr):
		return ExitNamingCollision
	case errors.As(err, &writeErr):
		return ExitIO
	case errors.Is(err, ErrNoRoots), errors.Is(err, flag.ErrHelp):
		return ExitUsage
	case errors.As(err, &pathErr):
		return ExitIO
	default:
		return ExitFailure
	}
}
