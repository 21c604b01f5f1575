// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package recipes provides recipes subcommand.
package recipes

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/ndkpkg/recipe"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

// Cmd returns the Command for the `recipes` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "recipes",
		ShortDesc: "list built-in NDK recipes",
		LongDesc:  "Lists built-in NDK revisions with their compiler pins, API level range and hosts. The default revision is marked with *.",
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
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	err := c.run(ctx, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "Error:"), err)
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tCLANG\tGCC\tAPI\tBINUTILS\tSTANDALONE\tHOSTS")
	for _, v := range recipe.BuiltinVersions() {
		r, err := recipe.Builtin(ctx, v)
		if err != nil {
			return err
		}
		if v == recipe.DefaultVersion {
			v += " *"
		}
		gcc := r.GCCVersion
		if gcc == "" {
			gcc = "-"
		}
		hosts := make([]string, 0, len(r.Sources))
		for _, h := range r.Hosts() {
			hosts = append(hosts, string(h))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\t%s\t%s\t%s\n", v, r.ClangVersion, gcc, r.MinAPILevel, r.MaxAPILevel, r.Binutils, r.Standalone, strings.Join(hosts, ","))
	}
	return tw.Flush()
}
