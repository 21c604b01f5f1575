// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package names provides names subcommand.
package names

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	luciflag "go.chromium.org/luci/common/flag"

	"go.chromium.org/infra/build/ndkpkg/naming"
	"go.chromium.org/infra/build/ndkpkg/target"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

const usage = `print android platform names of a profile.

 $ ndkpkg names -profile android-armv7.toml -tool clang -tool ar
 android_arch=arm
 abi=armeabi-v7a
 ...
 tool.clang=armv7a-linux-androideabi24-clang
 tool.ar=arm-linux-androideabi-ar
`

var defaultTools = []string{"clang", "clang++", "ar", "strip"}

// Cmd returns the Command for the `names` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "names -profile <profile> [-tool <tool>]...",
		ShortDesc: "print platform names (abi, triplet, tool names)",
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
	tools  []string
	asJSON bool
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.Flags.Var(luciflag.StringSlice(&c.tools), "tool", "tool to print the toolchain file name of. can be repeated. clang, clang++, ar and strip if not set")
	c.Flags.BoolVar(&c.asJSON, "json", false, "print in JSON")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	err := c.run(ctx, os.Stdout)
	if err != nil {
		if errors.Is(err, target.ErrNoProfile) {
			fmt.Fprintf(os.Stderr, "%v\n%s", err, usage)
			return 2
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "Error:"), err)
		return 1
	}
	return 0
}

type entry struct {
	Key, Value string
}

// entries returns the names of t in printing order.
func entries(t *target.Target, tools []string) ([]entry, error) {
	ents := []entry{
		{"android_arch", t.Names.AndroidArch},
		{"abi", t.Names.ABI},
		{"short_arch", t.Names.ShortArch},
		{"abi_suffix", t.Names.ABISuffix},
		{"triplet", t.Names.Triplet},
		{"standalone_stdlib", t.Names.StandaloneStdlib},
		{"platform", t.Spec.Platform()},
	}
	for _, tool := range tools {
		name, ok := naming.ToolName(t.Spec, tool)
		if !ok {
			return nil, fmt.Errorf("no tool name for %s", tool)
		}
		ents = append(ents, entry{"tool." + tool, name})
	}
	return ents, nil
}

func (c *run) run(ctx context.Context, w io.Writer) error {
	t, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	tools := c.tools
	if len(tools) == 0 {
		tools = defaultTools
	}
	ents, err := entries(t, tools)
	if err != nil {
		return err
	}
	if c.asJSON {
		m := make(map[string]string)
		for _, e := range ents {
			m[e.Key] = e.Value
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}
	for _, e := range ents {
		fmt.Fprintf(w, "%s=%s\n", e.Key, e.Value)
	}
	return nil
}
