// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"
	"io"

	"github.com/maruel/subcommands"
)

const usage = `prints help about a command

 $ ndkpkg help [-advanced]
 $ ndkpkg help <command>

Without command, prints the commands and the global flags,
such as -log_level, that go before the command name.
-advanced also lists commands for debugging packages,
such as fixperms.
`

// Cmd returns the Command for the `help` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			r := &run{}
			r.Flags.BoolVar(&r.advanced, "advanced", false, "show advanced commands")
			return r
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	advanced bool
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) > 0 {
		return subcommands.CmdHelp.CommandRun().Run(a, args, env)
	}
	printHelp(a.GetOut(), a, flag.CommandLine, c.advanced)
	return 0
}

// printHelp prints commands of a and the global flags in fs.
func printHelp(w io.Writer, a subcommands.Application, fs *flag.FlagSet, advanced bool) {
	subcommands.Usage(w, a, advanced)
	n := 0
	fs.VisitAll(func(*flag.Flag) { n++ })
	if n == 0 {
		return
	}
	fmt.Fprintln(w, "Global flags (before <command>):")
	out := fs.Output()
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(out)
}
