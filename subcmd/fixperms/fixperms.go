// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fixperms provides fixperms subcommand.
package fixperms

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/ndkpkg/execbit"
	"go.chromium.org/infra/build/ndkpkg/osfs"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

const usage = `restore execute bits of scripts and binaries under <dir>.

 $ ndkpkg fixperms <dir>

Regular files starting with "#!", or with an ELF or Mach-O header
get execute permission for owner, group and other.
`

// Cmd returns the Command for the `fixperms` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "fixperms <dir>",
		ShortDesc: "restore execute bits",
		LongDesc:  usage,
		Advanced:  true,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			return c
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
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s", err, usage)
			return 2
		default:
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "Error:"), err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if len(args) != 1 {
		return fmt.Errorf("want one directory, got %d args: %w", len(args), flag.ErrHelp)
	}
	fi, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", args[0], flag.ErrHelp)
	}
	fsys := osfs.New("fs", osfs.Option{})
	st, err := execbit.Restore(ctx, fsys, args[0])
	if err != nil {
		return err
	}
	fmt.Println(st)
	return nil
}
