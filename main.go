// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// ndkpkg packages the Android NDK for a build profile.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/ndkpkg/subcmd/env"
	"go.chromium.org/infra/build/ndkpkg/subcmd/fixperms"
	"go.chromium.org/infra/build/ndkpkg/subcmd/help"
	"go.chromium.org/infra/build/ndkpkg/subcmd/install"
	"go.chromium.org/infra/build/ndkpkg/subcmd/names"
	"go.chromium.org/infra/build/ndkpkg/subcmd/recipes"
	"go.chromium.org/infra/build/ndkpkg/subcmd/validate"
	"go.chromium.org/infra/build/ndkpkg/subcmd/version"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

const executableVersion = "v0.1.0"

var logLevel = flag.String("log_level", "warn", `log level. "debug", "info", "warn", "error" or "fatal"`)

func getApplication() *cli.Application {
	return &cli.Application{
		Name:  "ndkpkg",
		Title: "Android NDK packager",
		Commands: []*subcommands.Command{
			validate.Cmd(),
			names.Cmd(),
			install.Cmd(),
			env.Cmd(),
			recipes.Cmd(),
			fixperms.Cmd(),

			help.Cmd(),
			version.Cmd(executableVersion),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			"NDKPKG_PROFILE": {
				ShortDesc: "default profile TOML file",
			},
			"NDKPKG_DOWNLOAD_DIR": {
				ShortDesc: "directory for downloaded NDK archives",
			},
		},
	}
}

func main() {
	os.Exit(ndkpkgMain())
}

func ndkpkgMain() int {
	ui.Init()
	defer ui.Restore()

	flag.Parse()
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -log_level: %v\n", err)
		return 2
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(level)

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Infof("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		for _, m := range buildinfo.Deps {
			log.Debugf("deps module: %s", moduleInfo(m))
		}
	}
	return subcommands.Run(getApplication(), flag.Args())
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
