// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package standalone makes a standalone toolchain from an installed NDK
// by running the NDK's make_standalone_toolchain.py.
package standalone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/ndkpkg/settings"
)

// DirName is the directory name of the standalone toolchain in a package.
const DirName = "standalone-toolchain"

// Script is the path of make_standalone_toolchain.py relative to the NDK root.
var Script = filepath.Join("build", "tools", "make_standalone_toolchain.py")

// Config is a standalone toolchain configuration.
type Config struct {
	// NDKRoot is the root of the installed NDK.
	NDKRoot string
	// InstallDir is the directory to install the toolchain in.
	InstallDir string
	// Arch is the android arch, e.g. "arm64".
	Arch string
	// APILevel is the android api level.
	APILevel int
	// Libcxx selects --stl.
	Libcxx settings.Libcxx
	// Python is the python interpreter. "python3" if empty.
	Python string
}

// STL returns the --stl value for libcxx.
func STL(libcxx settings.Libcxx) string {
	if libcxx == settings.LibStdCxx {
		return "gnustl"
	}
	return "libc++"
}

// Args returns the command line to make the standalone toolchain.
func (c Config) Args() []string {
	python := c.Python
	if python == "" {
		python = "python3"
	}
	return []string{
		python,
		filepath.Join(c.NDKRoot, Script),
		"--arch", c.Arch,
		"--api", strconv.Itoa(c.APILevel),
		"--stl", STL(c.Libcxx),
		"--install-dir", c.InstallDir,
		"--force",
	}
}

// ExitError is an error of the script exiting with non-zero code.
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("make_standalone_toolchain exit=%d: %s", e.ExitCode, e.Stderr)
}

// Make runs make_standalone_toolchain.py for c.
// The script is treated as a black box; only its exit code is checked.
func Make(ctx context.Context, c Config) error {
	args := c.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.NDKRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	started := time.Now()
	log.Infof("run %q", args)
	err := cmd.Run()
	log.Debugf("stdout:\n%s", stdout.String())
	if err != nil {
		var eerr *exec.ExitError
		if errors.As(err, &eerr) {
			return &ExitError{ExitCode: eerr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("failed to run %s: %w", args[0], err)
	}
	log.Infof("made standalone toolchain in %s in %s", c.InstallDir, time.Since(started))
	return nil
}
