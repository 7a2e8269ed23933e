// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package version provides version subcommand.
package version

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/cipd/version"
	"go.chromium.org/luci/hardcoded/chromeinfra"
)

// Cmd returns the Command for the `version` subcommand provided by this package.
func Cmd(ver string) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "version",
		ShortDesc: "prints the executable version",
		LongDesc:  "Prints the executable version and the CIPD package the executable was installed from (if it was installed via CIPD).",
		CommandRun: func() subcommands.CommandRun {
			return &versionRun{version: ver}
		},
	}
}

type versionRun struct {
	subcommands.CommandRunBase
	version string
}

func (c *versionRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	w := a.GetOut()
	fmt.Fprintln(w, c.version)
	switch ver, err := version.GetStartupVersion(); {
	case err != nil:
		// Note: this is some sort of catastrophic error. If the binary is not
		// installed via CIPD, err == nil && ver.InstanceID == "".
		fmt.Fprintf(os.Stderr, "cannot determine CIPD package version: %s\n", err)
		return 1
	case ver.InstanceID == "":
		buildInfo, ok := debug.ReadBuildInfo()
		if !ok {
			return 0
		}
		printBuildInfo(w, buildInfo)
		return 0
	default:
		fmt.Fprintln(w)
		fmt.Fprintf(w, "CIPD package name: %s\n", ver.PackageName)
		fmt.Fprintf(w, "CIPD instance ID:  %s\n", ver.InstanceID)
		fmt.Fprintf(w, "CIPD URL: %s/p/%s/+/%s\n", chromeinfra.CIPDServiceURL, ver.PackageName, ver.InstanceID)
		return 0
	}
}

func printBuildInfo(w io.Writer, buildInfo *debug.BuildInfo) {
	if buildInfo.GoVersion != "" {
		fmt.Fprintf(w, "go\t%s\n", buildInfo.GoVersion)
	}
	if buildInfo.Main.Path != "" {
		fmt.Fprintf(w, "mod\t%s\t%s\n", buildInfo.Main.Path, buildInfo.Main.Version)
	}
	for _, s := range buildInfo.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			fmt.Fprintf(w, "build\t%s=%s\n", s.Key, s.Value)
		}
	}
}
