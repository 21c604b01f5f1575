// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package envpub computes the environment published for an installed
// NDK: tool paths, sysroot and the CMake integration variables.
package envpub

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.chromium.org/infra/build/ndkpkg/naming"
	"go.chromium.org/infra/build/ndkpkg/recipe"
	"go.chromium.org/infra/build/ndkpkg/settings"
)

// Action is how a variable is applied to the environment.
type Action int

const (
	// Set sets the variable.
	Set Action = iota
	// PrependPath prepends the value to the path list variable.
	PrependPath
)

func (a Action) String() string {
	if a == PrependPath {
		return "prepend_path"
	}
	return "set"
}

// Var is an environment variable binding.
type Var struct {
	Name   string
	Value  string
	Action Action
}

// Conf keys published with the environment.
const (
	ConfNDKPath              = "tools.android:ndk_path"
	ConfCMakeLegacyToolchain = "tools.android:cmake_legacy_toolchain"
)

// Environment is the published environment of a toolchain.
type Environment struct {
	Vars []Var
	Conf map[string]string
	// Tools maps tool variable (e.g. "CC") to its path.
	Tools map[string]string
}

// Lookup returns the value of the variable name.
func (e *Environment) Lookup(name string) (string, bool) {
	for _, v := range e.Vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Toolchain is an installed toolchain.
type Toolchain struct {
	// Root is the NDK root in the package folder.
	Root  string
	Spec  settings.TargetSpec
	Names naming.Bundle
	// Binutils is the binutils flavor of the NDK revision.
	Binutils recipe.Binutils
	// StandaloneRoot is the standalone toolchain directory.
	// When set, tools are published from it instead of the NDK layout.
	StandaloneRoot string
}

// HostTag returns the NDK prebuilt host tag, e.g. "linux-x86_64".
func HostTag(os settings.OS) (string, bool) {
	switch os {
	case settings.Linux:
		return "linux-x86_64", true
	case settings.Macos:
		return "darwin-x86_64", true
	case settings.Windows:
		return "windows-x86_64", true
	}
	return "", false
}

// prebuilt returns the llvm prebuilt dir of the NDK layout.
func (tc Toolchain) prebuilt() (string, error) {
	tag, ok := HostTag(tc.Spec.HostOS)
	if !ok {
		return "", fmt.Errorf("no NDK prebuilt for host %q", tc.Spec.HostOS)
	}
	return filepath.Join(tc.Root, "toolchains", "llvm", "prebuilt", tag), nil
}

// BinDir returns the directory of the toolchain binaries.
func (tc Toolchain) BinDir() (string, error) {
	if tc.StandaloneRoot != "" {
		return filepath.Join(tc.StandaloneRoot, "bin"), nil
	}
	dir, err := tc.prebuilt()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bin"), nil
}

// Sysroot returns the sysroot directory.
func (tc Toolchain) Sysroot() (string, error) {
	if tc.StandaloneRoot != "" {
		return filepath.Join(tc.StandaloneRoot, "sysroot"), nil
	}
	dir, err := tc.prebuilt()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sysroot"), nil
}

// CMakeToolchainFile returns the path of the NDK's CMake toolchain file.
func (tc Toolchain) CMakeToolchainFile() string {
	return filepath.Join(tc.Root, "build", "cmake", "android.toolchain.cmake")
}

type tool struct {
	env  string
	name string
}

// llvmTools are the binutils of llvm NDKs.
// llvm-as assembles LLVM IR, not target assembly; assemble .s files
// with $CC -c. AS stays distinct from CC so every tool has its own path.
var llvmTools = []tool{
	{"AS", "llvm-as"},
	{"LD", "ld.lld"},
	{"AR", "llvm-ar"},
	{"RANLIB", "llvm-ranlib"},
	{"STRIP", "llvm-strip"},
	{"NM", "llvm-nm"},
	{"OBJCOPY", "llvm-objcopy"},
	{"OBJDUMP", "llvm-objdump"},
	{"READELF", "llvm-readelf"},
}

var gnuTools = []tool{
	{"AS", "as"},
	{"LD", "ld"},
	{"AR", "ar"},
	{"RANLIB", "ranlib"},
	{"STRIP", "strip"},
	{"NM", "nm"},
	{"OBJCOPY", "objcopy"},
	{"OBJDUMP", "objdump"},
	{"READELF", "readelf"},
	{"ADDR2LINE", "addr2line"},
	{"ELFEDIT", "elfedit"},
}

// compilerSuffix is the suffix of clang wrapper scripts.
func compilerSuffix(spec settings.TargetSpec, tool string) string {
	if spec.HostOS == settings.Windows && naming.IsCompiler(tool) {
		return ".cmd"
	}
	return ""
}

// toolNames returns the tool file names in publishing order.
func (tc Toolchain) toolNames() ([]tool, error) {
	spec := tc.Spec
	var ret []tool
	name := func(env, t string, f func(settings.TargetSpec, string) (string, bool)) error {
		n, ok := f(spec, t)
		if !ok {
			return fmt.Errorf("no tool name of %s for arch %q", t, spec.TargetArch)
		}
		ret = append(ret, tool{env: env, name: n + compilerSuffix(spec, t)})
		return nil
	}
	if tc.StandaloneRoot != "" {
		cc, cxx := "clang", "clang++"
		if spec.Compiler == settings.GCC {
			cc, cxx = "gcc", "g++"
		}
		for _, t := range append([]tool{{"CC", cc}, {"CXX", cxx}}, gnuTools...) {
			err := name(t.env, t.name, naming.PrefixedToolName)
			if err != nil {
				return nil, err
			}
		}
		return ret, nil
	}
	if spec.Compiler != settings.Clang {
		return nil, fmt.Errorf("compiler %q needs a standalone toolchain", spec.Compiler)
	}
	for _, t := range []tool{{"CC", "clang"}, {"CXX", "clang++"}} {
		err := name(t.env, t.name, naming.ToolName)
		if err != nil {
			return nil, err
		}
	}
	switch tc.Binutils {
	case recipe.LLVMBinutils:
		for _, t := range llvmTools {
			ret = append(ret, tool{env: t.env, name: t.name + naming.ExeSuffix(spec.HostOS, t.name)})
		}
	case recipe.GNUBinutils:
		for _, t := range gnuTools {
			err := name(t.env, t.name, naming.PrefixedToolName)
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unknown binutils %q", tc.Binutils)
	}
	return ret, nil
}

// Publish computes the environment of tc.
// It does not check that the paths exist.
func Publish(tc Toolchain) (*Environment, error) {
	if !filepath.IsAbs(tc.Root) {
		return nil, fmt.Errorf("root %q is not absolute", tc.Root)
	}
	bin, err := tc.BinDir()
	if err != nil {
		return nil, err
	}
	sysroot, err := tc.Sysroot()
	if err != nil {
		return nil, err
	}
	tools, err := tc.toolNames()
	if err != nil {
		return nil, err
	}
	env := &Environment{
		Conf: map[string]string{
			ConfNDKPath:              tc.Root,
			ConfCMakeLegacyToolchain: "false",
		},
		Tools: make(map[string]string),
	}
	set := func(name, value string) {
		env.Vars = append(env.Vars, Var{Name: name, Value: value, Action: Set})
	}
	set("NDK_ROOT", tc.Root)
	set("ANDROID_NDK_ROOT", tc.Root)
	set("ANDROID_NDK_HOME", tc.Root)
	set("CHOST", tc.Names.Triplet)
	set("SYSROOT", sysroot)

	seen := make(map[string]string)
	for _, t := range tools {
		p := filepath.Join(bin, t.name)
		if prev, ok := seen[p]; ok {
			return nil, fmt.Errorf("%s and %s both use %s", prev, t.env, p)
		}
		if !under(tc.Root, p) {
			return nil, fmt.Errorf("%s=%s is not under %s", t.env, p, tc.Root)
		}
		seen[p] = t.env
		env.Tools[t.env] = p
		set(t.env, p)
	}

	set("CMAKE_TOOLCHAIN_FILE", tc.CMakeToolchainFile())
	set("ANDROID_ABI", tc.Names.ABI)
	set("ANDROID_PLATFORM", tc.Spec.Platform())
	set("ANDROID_STL", tc.Names.StandaloneStdlib)
	env.Vars = append(env.Vars, Var{Name: "PATH", Value: bin, Action: PrependPath})
	return env, nil
}

func under(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
