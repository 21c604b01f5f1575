// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package settings provides the target settings of an NDK package,
// the profile they are read from, and their validation.
package settings

import (
	"fmt"
	"strconv"
)

// OS is an operating system setting value.
type OS string

// Operating systems known to the profile.
const (
	Windows OS = "Windows"
	Macos   OS = "Macos"
	Linux   OS = "Linux"
	Android OS = "Android"
)

// IsHost reports whether os is one of the hosts the NDK is distributed for.
func (os OS) IsHost() bool {
	switch os {
	case Windows, Macos, Linux:
		return true
	}
	return false
}

// Arch is an architecture setting value.
type Arch string

// Architectures known to the profile.
const (
	ARMv7  Arch = "armv7"
	ARMv8  Arch = "armv8"
	X86    Arch = "x86"
	X86_64 Arch = "x86_64"
)

// IsAndroidTarget reports whether arch is an architecture the NDK can target.
func (arch Arch) IsAndroidTarget() bool {
	switch arch {
	case ARMv7, ARMv8, X86, X86_64:
		return true
	}
	return false
}

// Is64Bit reports whether arch is a 64-bit architecture.
func (arch Arch) Is64Bit() bool {
	return arch == ARMv8 || arch == X86_64
}

// Compiler is a compiler family.
type Compiler string

// Compiler families.
const (
	Clang Compiler = "clang"
	GCC   Compiler = "gcc"
)

// Libcxx is a C++ standard library flavor.
type Libcxx string

// C++ standard library flavors.
const (
	LibCxx    Libcxx = "libc++"
	LibStdCxx Libcxx = "libstdc++"
	CxxShared Libcxx = "c++_shared"
	CxxStatic Libcxx = "c++_static"
)

// TargetSpec is the resolved set of settings a toolchain is packaged for.
// It is immutable once validated.
type TargetSpec struct {
	HostOS          OS
	HostArch        Arch
	TargetArch      Arch
	Compiler        Compiler
	CompilerVersion string
	Libcxx          Libcxx
	APILevel        int
}

// Platform returns the android platform name, e.g. "android-24".
func (s TargetSpec) Platform() string {
	return "android-" + strconv.Itoa(s.APILevel)
}

func (s TargetSpec) String() string {
	return fmt.Sprintf("%s/%s -> android-%d/%s %s-%s %s", s.HostOS, s.HostArch, s.APILevel, s.TargetArch, s.Compiler, s.CompilerVersion, s.Libcxx)
}

// Options are the package options.
type Options struct {
	// Standalone requests repackaging as a standalone toolchain.
	Standalone bool
}
