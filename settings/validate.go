// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package settings

import (
	"fmt"
	"strconv"
)

// MinAPILevel is the lowest API level of any target.
// It is also the first API level with 64-bit ABIs.
const MinAPILevel = 21

// Constraints are the settings a package revision accepts.
type Constraints struct {
	MinAPILevel int
	MaxAPILevel int

	// ClangVersion is the only clang version accepted.
	ClangVersion string
	// GCCVersion is the only gcc version accepted.
	// gcc is rejected when it is empty.
	GCCVersion string

	// Standalone reports whether standalone toolchains can be made.
	Standalone bool
}

var clangLibcxx = map[Libcxx]bool{
	LibCxx:    true,
	CxxShared: true,
	CxxStatic: true,
}

var knownLibcxx = map[Libcxx]bool{
	LibCxx:    true,
	LibStdCxx: true,
	CxxShared: true,
	CxxStatic: true,
}

// Validate checks spec and opts against c.
// It returns a *ValidationError for the first rejected setting.
func Validate(spec TargetSpec, opts Options, c Constraints) error {
	if !spec.HostOS.IsHost() {
		return &ValidationError{
			Kind:    ErrInvalidHostPlatform,
			Setting: "os",
			Value:   string(spec.HostOS),
			Reason:  "only Linux, Macos and Windows hosts are supported",
		}
	}
	if spec.HostArch != X86_64 {
		return &ValidationError{
			Kind:    ErrInvalidHostPlatform,
			Setting: "arch",
			Value:   string(spec.HostArch),
			Reason:  "only x86_64 hosts are supported",
		}
	}
	if !spec.TargetArch.IsAndroidTarget() {
		return &ValidationError{
			Kind:    ErrInvalidTargetArch,
			Setting: "target arch",
			Value:   string(spec.TargetArch),
			Reason:  "must be one of armv7, armv8, x86, x86_64",
		}
	}
	level := strconv.Itoa(spec.APILevel)
	minLevel := max(MinAPILevel, c.MinAPILevel)
	if spec.APILevel < minLevel {
		return &ValidationError{
			Kind:    ErrInvalidAPILevel,
			Setting: "api_level",
			Value:   level,
			Reason:  fmt.Sprintf("minimum supported api level is %d", minLevel),
		}
	}
	if spec.APILevel > c.MaxAPILevel {
		return &ValidationError{
			Kind:    ErrInvalidAPILevel,
			Setting: "api_level",
			Value:   level,
			Reason:  fmt.Sprintf("maximum supported api level is %d", c.MaxAPILevel),
		}
	}
	switch spec.Compiler {
	case Clang:
		if !clangLibcxx[spec.Libcxx] {
			return &ValidationError{
				Kind:    ErrUnsupportedLibcxx,
				Setting: "compiler.libcxx",
				Value:   string(spec.Libcxx),
				Reason:  "clang supports libc++, c++_shared and c++_static",
			}
		}
		if spec.CompilerVersion != c.ClangVersion {
			return &ValidationError{
				Kind:    ErrUnsupportedCompilerVersion,
				Setting: "compiler.version",
				Value:   spec.CompilerVersion,
				Reason:  fmt.Sprintf("only clang %s is supported", c.ClangVersion),
			}
		}
	case GCC:
		if c.GCCVersion == "" {
			return &ValidationError{
				Kind:    ErrUnsupportedCompiler,
				Setting: "compiler",
				Value:   string(spec.Compiler),
				Reason:  "gcc is not shipped in this NDK revision",
			}
		}
		if !knownLibcxx[spec.Libcxx] {
			return &ValidationError{
				Kind:    ErrUnsupportedLibcxx,
				Setting: "compiler.libcxx",
				Value:   string(spec.Libcxx),
				Reason:  "unknown libcxx",
			}
		}
		if spec.CompilerVersion != c.GCCVersion {
			return &ValidationError{
				Kind:    ErrUnsupportedCompilerVersion,
				Setting: "compiler.version",
				Value:   spec.CompilerVersion,
				Reason:  fmt.Sprintf("only gcc %s is supported", c.GCCVersion),
			}
		}
		if !opts.Standalone {
			return &ValidationError{
				Kind:    ErrUnsupportedOption,
				Setting: "standalone",
				Value:   "false",
				Reason:  "gcc is only published as a standalone toolchain",
			}
		}
	default:
		return &ValidationError{
			Kind:    ErrUnsupportedCompiler,
			Setting: "compiler",
			Value:   string(spec.Compiler),
			Reason:  "must be clang or gcc",
		}
	}
	if opts.Standalone && !c.Standalone {
		return &ValidationError{
			Kind:    ErrUnsupportedOption,
			Setting: "standalone",
			Value:   "true",
			Reason:  "standalone toolchains are not supported by this NDK revision",
		}
	}
	return nil
}
