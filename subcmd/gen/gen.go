// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gen provides gen subcommand.
package gen

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/veribetrkv/veridepend/build"
	"github.com/veribetrkv/veridepend/ui"
)

const usage = `generate the deps file

 $ veridepend gen <roots>...

scans module sources under <roots> (files or directories), follows their
include directives and writes the deps file (default build/deps) with
the build rules between the modules' pipeline artifacts.

The deps file is replaced atomically; on error the previous deps file
is left untouched.

Settings are read from .veridepend.star, or the file named by
$VERIDEPEND_CONFIG.
`

// Cmd returns the Command for the `gen` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "gen <roots>...",
		ShortDesc: "generate the deps file",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			return &run{}
		},
	}
}

type run struct {
	subcommands.CommandRunBase
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp), errors.Is(err, build.ErrNoRoots):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			ui.Default.Errorf("%v", err)
		}
	}
	return build.ExitCode(err)
}

func (c *run) run(ctx context.Context, args []string) error {
	b, err := build.New(ctx, build.Options{})
	if err != nil {
		return err
	}
	_, err = b.Build(ctx, args)
	return err
}
