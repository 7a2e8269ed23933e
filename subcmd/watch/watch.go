// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package watch provides watch subcommand.
package watch

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"github.com/veribetrkv/veridepend/build"
)

const usage = `regenerate the deps file on change

 $ veridepend watch [-debounce <duration>] <roots>...

generates the deps file as gen does, then watches the sources and the
config file and regenerates the deps file whenever they change.
A failed regeneration is reported and leaves the previous deps file in
place. Stops on interrupt.
`

// Cmd returns the Command for the `watch` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "watch [-debounce <duration>] <roots>...",
		ShortDesc: "regenerate the deps file on change",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	debounce time.Duration
}

func (c *run) init() {
	c.Flags.DurationVar(&c.debounce, "debounce", build.DefaultDebounce, "quiet period after a change before regenerating")
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
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()
	b, err := build.New(ctx, build.Options{})
	if err != nil {
		return err
	}
	return b.Watch(ctx, args, build.WatchOptions{
		Debounce: c.debounce,
	})
}
