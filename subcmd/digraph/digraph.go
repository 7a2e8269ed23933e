// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package digraph is digraph subcommand to show the digraph of the
// generated rules, for https://pkg.go.dev/golang.org/x/tools/cmd/digraph
package digraph

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/veribetrkv/veridepend/build"
	"github.com/veribetrkv/veridepend/graph"
	"github.com/veribetrkv/veridepend/rules"
)

const usage = `show digraph

 $ veridepend digraph [-modules] <roots>...

prints directed graph of the build rules generated for <roots>.
With -modules, prints the module include graph instead.
Each line contains one or more nodes, and the first node depends on
the rest of the nodes on the same line.

This output can be passed to digraph command, installed by
 $ go install golang.org/x/tools/cmd/digraph@latest

See https://pkg.go.dev/golang.org/x/tools/cmd/digraph
for digraph command.
`

// Cmd returns the Command for the `digraph` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "digraph [-modules] <roots>...",
		ShortDesc: "show digraph",
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

	modules bool
}

func (c *run) init() {
	c.Flags.BoolVar(&c.modules, "modules", false, "print module include graph instead of rule graph")
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
	if c.modules {
		g, err := b.Scan(ctx, args)
		if err != nil {
			return err
		}
		order, err := graph.Sequence(g)
		if err != nil {
			return err
		}
		return writeModules(os.Stdout, g, order)
	}
	r, err := b.Generate(ctx, args)
	if err != nil {
		return err
	}
	return writeRules(os.Stdout, r.Blocks)
}

// writeModules writes one line per module in order.
func writeModules(w io.Writer, g graph.Graph, order []graph.Module) error {
	for _, m := range order {
		fields := []string{string(m)}
		for _, d := range g.DirectDeps(m) {
			fields = append(fields, string(d))
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, " ")); err != nil {
			return err
		}
	}
	return nil
}

// writeRules writes one line per rule target, in first-seen order.
func writeRules(w io.Writer, blocks []rules.Block) error {
	var targets []string
	prereqs := make(map[string][]string)
	for _, b := range blocks {
		for _, r := range b.Rules {
			if _, ok := prereqs[r.Target]; !ok {
				targets = append(targets, r.Target)
			}
			prereqs[r.Target] = append(prereqs[r.Target], r.Prereq)
		}
	}
	for _, t := range targets {
		if _, err := fmt.Fprintf(w, "%s %s\n", t, strings.Join(prereqs[t], " ")); err != nil {
			return err
		}
	}
	return nil
}
