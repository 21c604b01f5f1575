// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package env provides env subcommand.
package env

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/ndkpkg/envpub"
	"go.chromium.org/infra/build/ndkpkg/target"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

const usage = `print the toolchain environment of an installed package.

 $ eval "$(ndkpkg env -profile android-armv8.toml -root out/android-ndk)"

<format> is
  sh: POSIX shell exports
  bat: cmd.exe set commands
  json: variables, conf and tool paths in JSON
`

// Cmd returns the Command for the `env` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "env -profile <profile> -root <dir> [-format <format>]",
		ShortDesc: "print toolchain environment variables",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	opts   target.Options
	root   string
	format string
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.Flags.StringVar(&c.root, "root", ".", "package folder the NDK is installed in")
	c.Flags.StringVar(&c.format, "format", string(envpub.Shell), `output format. "sh", "bat" or "json"`)
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	err := c.run(ctx, os.Stdout)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp), errors.Is(err, target.ErrNoProfile):
			fmt.Fprintf(os.Stderr, "%v\n%s", err, usage)
			return 2
		default:
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "Error:"), err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer) error {
	format, err := envpub.ParseFormat(c.format)
	if err != nil {
		return fmt.Errorf("%w: %w", err, flag.ErrHelp)
	}
	t, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	tc, err := t.Toolchain(c.root)
	if err != nil {
		return err
	}
	env, err := envpub.Publish(tc)
	if err != nil {
		return err
	}
	return env.Render(w, format)
}
