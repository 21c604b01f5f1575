// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package naming derives Android platform names (ABI, triplet, toolchain
// binary names) from target settings.
package naming

import (
	"fmt"
	"strconv"
	"strings"

	"go.chromium.org/infra/build/ndkpkg/settings"
)

type archInfo struct {
	androidArch string
	abi         string
	shortArch   string
	cpu         string
}

var archTable = map[settings.Arch]archInfo{
	settings.ARMv7: {
		androidArch: "arm",
		abi:         "armeabi-v7a",
		shortArch:   "arm",
		cpu:         "arm",
	},
	settings.ARMv8: {
		androidArch: "arm64",
		abi:         "arm64-v8a",
		shortArch:   "arm",
		cpu:         "aarch64",
	},
	settings.X86: {
		androidArch: "x86",
		abi:         "x86",
		shortArch:   "x86",
		cpu:         "i686",
	},
	settings.X86_64: {
		androidArch: "x86_64",
		abi:         "x86_64",
		shortArch:   "x86",
		cpu:         "x86_64",
	},
}

var stdlibTable = map[settings.Libcxx]string{
	settings.LibCxx:    "c++_shared",
	settings.CxxShared: "c++_shared",
	settings.CxxStatic: "c++_static",
	settings.LibStdCxx: "gnustl_shared",
}

// AndroidArch returns the android arch name, e.g. "arm64" for armv8.
func AndroidArch(arch settings.Arch) (string, bool) {
	a, ok := archTable[arch]
	return a.androidArch, ok
}

// ABI returns the android ABI name, e.g. "arm64-v8a" for armv8.
func ABI(arch settings.Arch) (string, bool) {
	a, ok := archTable[arch]
	return a.abi, ok
}

// ShortArch returns the arch family, "arm" or "x86".
func ShortArch(arch settings.Arch) (string, bool) {
	a, ok := archTable[arch]
	return a.shortArch, ok
}

// ABISuffix returns the last triplet component,
// "androideabi" for 32-bit arm and "android" for others.
func ABISuffix(arch settings.Arch) (string, bool) {
	a, ok := archTable[arch]
	if !ok {
		return "", false
	}
	if a.androidArch == "arm" {
		return "androideabi", true
	}
	return "android", true
}

// Triplet returns the GNU target triplet, e.g. "aarch64-linux-android".
func Triplet(arch settings.Arch) (string, bool) {
	a, ok := archTable[arch]
	if !ok {
		return "", false
	}
	suffix, _ := ABISuffix(arch)
	return a.cpu + "-linux-" + suffix, true
}

// StandaloneStdlib returns the ANDROID_STL name for libcxx.
func StandaloneStdlib(libcxx settings.Libcxx) (string, bool) {
	s, ok := stdlibTable[libcxx]
	return s, ok
}

// Bundle is the set of names derived from a TargetSpec.
type Bundle struct {
	AndroidArch      string
	ABI              string
	ShortArch        string
	CPU              string
	ABISuffix        string
	Triplet          string
	StandaloneStdlib string
}

// New returns the naming bundle for spec.
// It fails for settings outside of the lookup tables.
func New(spec settings.TargetSpec) (Bundle, error) {
	a, ok := archTable[spec.TargetArch]
	if !ok {
		return Bundle{}, fmt.Errorf("no android names for arch %q", spec.TargetArch)
	}
	stdlib, ok := StandaloneStdlib(spec.Libcxx)
	if !ok {
		return Bundle{}, fmt.Errorf("no android stl for libcxx %q", spec.Libcxx)
	}
	suffix, _ := ABISuffix(spec.TargetArch)
	triplet, _ := Triplet(spec.TargetArch)
	return Bundle{
		AndroidArch:      a.androidArch,
		ABI:              a.abi,
		ShortArch:        a.shortArch,
		CPU:              a.cpu,
		ABISuffix:        suffix,
		Triplet:          triplet,
		StandaloneStdlib: stdlib,
	}, nil
}

// IsCompiler reports whether tool is a compiler front end.
// Compiler front ends are versioned per API level in the NDK.
func IsCompiler(tool string) bool {
	return strings.Contains(tool, "clang")
}

// ExeSuffix returns the executable suffix for tool on hostOS.
// Compiler front ends on Windows are .cmd wrappers and are named
// without suffix.
func ExeSuffix(hostOS settings.OS, tool string) string {
	if hostOS == settings.Windows && !IsCompiler(tool) {
		return ".exe"
	}
	return ""
}

// ToolName returns the file name of tool in the NDK llvm toolchain.
//
// Compiler front ends are named "<cpu>-linux-<abi><api>-<tool>" with
// "arm" spelled "armv7a", e.g. "armv7a-linux-androideabi24-clang".
// Other tools are "<triplet>-<tool>", e.g. "arm-linux-androideabi-ar".
func ToolName(spec settings.TargetSpec, tool string) (string, bool) {
	a, ok := archTable[spec.TargetArch]
	if !ok {
		return "", false
	}
	cpu := a.cpu
	suffix, _ := ABISuffix(spec.TargetArch)
	if IsCompiler(tool) {
		if cpu == "arm" {
			cpu = "armv7a"
		}
		suffix += strconv.Itoa(spec.APILevel)
	}
	return cpu + "-linux-" + suffix + "-" + tool + ExeSuffix(spec.HostOS, tool), true
}

// PrefixedToolName returns "<triplet>-<tool>", as used in standalone
// toolchains where compiler front ends are not versioned.
func PrefixedToolName(spec settings.TargetSpec, tool string) (string, bool) {
	triplet, ok := Triplet(spec.TargetArch)
	if !ok {
		return "", false
	}
	return triplet + "-" + tool + ExeSuffix(spec.HostOS, tool), true
}
