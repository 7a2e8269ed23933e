// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Veridepend generates the make dependency file of a verification
// pipeline from the include graph of its module sources.
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/cpuid/v2"
	"github.com/maruel/subcommands"

	"github.com/veribetrkv/veridepend/build"
	"github.com/veribetrkv/veridepend/buildconfig"
	"github.com/veribetrkv/veridepend/subcmd/check"
	"github.com/veribetrkv/veridepend/subcmd/digraph"
	"github.com/veribetrkv/veridepend/subcmd/gen"
	"github.com/veribetrkv/veridepend/subcmd/help"
	"github.com/veribetrkv/veridepend/subcmd/version"
	"github.com/veribetrkv/veridepend/subcmd/watch"
	"github.com/veribetrkv/veridepend/ui"
)

const versionID = "v0.3.0"

// envLog names the environment variable holding the log level.
const envLog = "VERIDEPEND_LOG"

func main() {
	os.Exit(veridependMain(os.Args[1:]))
}

func getApplication() *subcommands.DefaultApplication {
	return &subcommands.DefaultApplication{
		Name:  "veridepend",
		Title: "deps file generator for the verification pipeline",
		Commands: []*subcommands.Command{
			gen.Cmd(),
			check.Cmd(),
			digraph.Cmd(),
			watch.Cmd(),
			help.Cmd(),
			version.Cmd(versionID),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			envLog: {
				ShortDesc: "log level: debug, info, warn or error",
				Default:   "warn",
			},
			buildconfig.EnvConfig: {
				ShortDesc: "config file instead of " + buildconfig.DefaultFile,
			},
		},
	}
}

func veridependMain(args []string) (exitCode int) {
	setupLog()
	ui.Init()
	defer ui.Restore()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Errorf("panic: %v\n%s", r, buf)
			exitCode = build.ExitFailure
		}
	}()

	logBuildInfo()

	app := getApplication()
	if len(args) == 0 {
		subcommands.Usage(app.GetErr(), app, false)
		return build.ExitUsage
	}
	if !isCommand(app, args[0]) && !strings.HasPrefix(args[0], "-") {
		// `veridepend <roots>...` is `veridepend gen <roots>...`.
		args = append([]string{"gen"}, args...)
	}
	return subcommands.Run(app, args)
}

func isCommand(app subcommands.Application, name string) bool {
	for _, c := range app.GetCommands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

func setupLog() {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	v := os.Getenv(envLog)
	if v == "" {
		return
	}
	level, err := log.ParseLevel(v)
	if err != nil {
		log.Warnf("bad $%s=%q: %v", envLog, v, err)
		return
	}
	log.SetLevel(level)
}

func logBuildInfo() {
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Debugf("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		for _, m := range buildinfo.Deps {
			log.Debugf("deps module: %s", moduleInfo(m))
		}
	}
	log.Debugf("cpu family=%d model=%d brand=%q physicalCores=%d logicalCores=%d",
		cpuid.CPU.Family, cpuid.CPU.Model, cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
