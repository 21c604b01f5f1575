// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package install provides install subcommand.
package install

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	luciflag "go.chromium.org/luci/common/flag"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/ndkpkg/archive"
	"go.chromium.org/infra/build/ndkpkg/envpub"
	"go.chromium.org/infra/build/ndkpkg/execbit"
	"go.chromium.org/infra/build/ndkpkg/osfs"
	"go.chromium.org/infra/build/ndkpkg/packager"
	"go.chromium.org/infra/build/ndkpkg/standalone"
	"go.chromium.org/infra/build/ndkpkg/target"
	"go.chromium.org/infra/build/ndkpkg/ui"
)

const usage = `download, extract and package the Android NDK.

 $ ndkpkg install -profile android-armv8.toml -o out/android-ndk \
          [-ndk_version r25c | -recipe ndk.star] \
          [-download_dir <dir>] [-standalone] \
          [-include <glob>]... [-exclude <glob>]...

It downloads the NDK archive of the recipe for the build host into
<download_dir>, extracts it, restores execute bits, copies it into the
package folder, optionally makes a standalone toolchain in
<package>/standalone-toolchain, and writes ndkenv.sh, ndkenv.bat and
ndkenv.json describing the toolchain.

-include and -exclude select the files copied into the package folder.
A glob matches the path relative to the NDK root or its base name,
e.g. -exclude "*.pdb" -exclude prebuilt/linux-x86_64/share.
`

// Cmd returns the Command for the `install` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "install -profile <profile> -o <dir>",
		ShortDesc: "install the NDK package",
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
	opts        target.Options
	fsopt       osfs.Option
	outDir      string
	downloadDir string
	python      string
	keepStaging bool
	copyOpts    packager.Options
}

func defaultDownloadDir() string {
	if dir := os.Getenv("NDKPKG_DOWNLOAD_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ndkpkg")
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.fsopt.RegisterFlags(&c.Flags)
	c.Flags.StringVar(&c.outDir, "o", "", "package folder to install the NDK into")
	c.Flags.StringVar(&c.downloadDir, "download_dir", defaultDownloadDir(), "directory for downloaded archives and staging. can set by $NDKPKG_DOWNLOAD_DIR")
	c.Flags.StringVar(&c.python, "python", "python3", "python interpreter to run make_standalone_toolchain.py")
	c.Flags.BoolVar(&c.keepStaging, "keep_staging", false, "keep the staging directory for debugging")
	c.Flags.Var(luciflag.StringSlice(&c.copyOpts.Patterns), "include", "glob of files to copy into the package folder. can be repeated. all files if not set")
	c.Flags.Var(luciflag.StringSlice(&c.copyOpts.Excludes), "exclude", "glob of files not to copy into the package folder. can be repeated")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 2
	}
	err := c.run(ctx)
	if err != nil {
		var serr *standalone.ExitError
		switch {
		case errors.Is(err, flag.ErrHelp), errors.Is(err, target.ErrNoProfile):
			fmt.Fprintf(os.Stderr, "%v\n%s", err, usage)
			return 2
		case errors.As(err, &serr):
			fmt.Fprintf(os.Stderr, "%s %v\n%s\n", ui.SGR(ui.BackgroundRed, "Error:"), err, serr.Stderr)
		case errors.Is(err, context.Canceled):
			fmt.Fprintf(os.Stderr, "interrupted\n")
		default:
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.SGR(ui.BackgroundRed, "Error:"), err)
		}
		return 1
	}
	return 0
}

// result is the result of an installation.
type result struct {
	Archive   string
	Extract   archive.Stats
	ExecBits  execbit.Stats
	Copy      packager.Stats
	EnvFiles  []string
	Duration  time.Duration
	Reference string
}

func (c *run) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if c.outDir == "" {
		return fmt.Errorf("no package folder: -o is required: %w", flag.ErrHelp)
	}
	if c.downloadDir == "" {
		return fmt.Errorf("no download directory: -download_dir is required: %w", flag.ErrHelp)
	}
	for _, p := range slices.Concat(c.copyOpts.Patterns, c.copyOpts.Excludes) {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("bad glob %q: %w: %w", p, err, flag.ErrHelp)
		}
	}
	t, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	fsys := osfs.New("fs", c.fsopt)
	res, err := c.install(ctx, fsys, t)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s for %s in %s\n", ui.SGR(ui.Green, "installed"), res.Reference, t.Spec.Platform(), ui.FormatDuration(res.Duration))
	fmt.Printf(" archive: %s\n", res.Archive)
	fmt.Printf(" extract: %s\n", res.Extract)
	fmt.Printf(" execbit: %s\n", res.ExecBits)
	fmt.Printf(" package: %s\n", res.Copy)
	for _, fname := range res.EnvFiles {
		fmt.Printf(" env: %s\n", fname)
	}
	log.Infof("fs: %s", fsys.Stats())
	return nil
}

func (c *run) install(ctx context.Context, fsys *osfs.OSFS, t *target.Target) (result, error) {
	started := time.Now()
	res := result{Reference: t.Recipe.Reference()}
	src, err := t.Recipe.Source(t.Spec.HostOS)
	if err != nil {
		return res, err
	}
	outDir, err := filepath.Abs(c.outDir)
	if err != nil {
		return res, err
	}
	// toolchain layout is checked before anything is downloaded.
	tc, err := t.Toolchain(outDir)
	if err != nil {
		return res, err
	}
	err = fsys.MkdirAll(ctx, c.downloadDir, 0755)
	if err != nil {
		return res, err
	}

	spin := ui.Default.NewSpinner()
	spin.Start("downloading %s", src.URL)
	fetcher := &archive.Fetcher{
		FS: fsys,
		Progress: func(written, total int64) {
			if total < 0 {
				spin.Progress("%s", ui.FormatBytes(written))
				return
			}
			spin.Progress("%s/%s", ui.FormatBytes(written), ui.FormatBytes(total))
		},
	}
	res.Archive, err = fetcher.Fetch(ctx, src.URL, src.SHA256, c.downloadDir)
	spin.Stop(err)
	if err != nil {
		return res, err
	}

	staging := filepath.Join(c.downloadDir, "staging-"+uuid.New().String())
	if !c.keepStaging {
		defer func() {
			err := fsys.RemoveAll(context.WithoutCancel(ctx), staging)
			if err != nil {
				log.Warnf("failed to remove staging %s: %v", staging, err)
			}
		}()
	}
	spin = ui.Default.NewSpinner()
	spin.Start("extracting %s", filepath.Base(res.Archive))
	res.Extract, err = archive.Extract(ctx, fsys, res.Archive, staging, src.Root)
	if err != nil {
		spin.Stop(err)
		return res, err
	}
	spin.Done("%d files %s", res.Extract.Files, ui.FormatBytes(res.Extract.Bytes))
	res.ExecBits, err = execbit.Restore(ctx, fsys, staging)
	if err != nil {
		return res, err
	}

	spin = ui.Default.NewSpinner()
	spin.Start("packaging into %s", outDir)
	res.Copy, err = packager.Copy(ctx, fsys, staging, outDir, c.copyOpts)
	if err != nil {
		spin.Stop(err)
		return res, err
	}
	spin.Done("%d files", res.Copy.Files)

	if t.Options.Standalone {
		sc := t.StandaloneConfig(outDir)
		sc.Python = c.python
		spin = ui.Default.NewSpinner()
		spin.Start("making standalone toolchain for %s", t.Names.AndroidArch)
		err = standalone.Make(ctx, sc)
		spin.Stop(err)
		if err != nil {
			return res, err
		}
	}

	env, err := envpub.Publish(tc)
	if err != nil {
		return res, err
	}
	res.EnvFiles, err = env.WriteFiles(ctx, fsys, outDir)
	if err != nil {
		return res, err
	}
	res.Duration = time.Since(started)
	log.Infof("installed %s for %s in %s", res.Reference, t.Spec, res.Duration)
	return res, nil
}
