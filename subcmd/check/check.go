// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package check provides check subcommand.
package check

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/veribetrkv/veridepend/build"
)

const usage = `check the deps file is up to date

 $ veridepend check <roots>...

regenerates the deps file for <roots> in memory and compares its rules
with the deps file on disk. Prints the difference and exits with 1
if the deps file is stale. The deps file is not modified.
`

// Cmd returns the Command for the `check` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "check <roots>...",
		ShortDesc: "check the deps file is up to date",
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
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return build.ExitCode(err)
}

func (c *run) run(ctx context.Context, args []string) error {
	b, err := build.New(ctx, build.Options{})
	if err != nil {
		return err
	}
	r, err := b.Check(ctx, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s is up to date: %d modules %d rules\n", b.Config().DepsFile, r.Graph.Len(), r.NumRules())
	return nil
}
