// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package validate provides validate subcommand.
package validate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/ndkpkg/settings"
	"go.chromium.org/infra/build/ndkpkg/target"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

const usage = `validate a profile against an NDK recipe.

 $ ndkpkg validate -profile android-armv8.toml [-ndk_version r25c]

Exits with 0 when the profile can be packaged, 1 otherwise.
`

// Cmd returns the Command for the `validate` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "validate -profile <profile>",
		ShortDesc: "validate settings of a profile",
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
	opts target.Options
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	err := c.run(ctx)
	if err != nil {
		var verr *settings.ValidationError
		var merr *settings.MissingSettingError
		switch {
		case errors.As(err, &verr):
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "invalid:"), verr.Kind)
			fmt.Fprintf(os.Stderr, "  %s=%q: %s\n", verr.Setting, verr.Value, verr.Reason)
		case errors.As(err, &merr):
			fmt.Fprintf(os.Stderr, "%s %s is not set (%s context)\n", ui.SGR(ui.BackgroundRed, "invalid:"), merr.Name, merr.Context)
		case errors.Is(err, target.ErrNoProfile):
			fmt.Fprintf(os.Stderr, "%v\n%s", err, usage)
			return 2
		default:
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "Error:"), err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context) error {
	t, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", ui.SGR(ui.Green, "ok:"), t.Spec)
	fmt.Printf("recipe: %s (%s context)\n", t.Recipe.Reference(), t.Context.Name())
	return nil
}
