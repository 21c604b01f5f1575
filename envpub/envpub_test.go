// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package envpub

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/ndkpkg/naming"
	"go.chromium.org/infra/build/ndkpkg/recipe"
	"go.chromium.org/infra/build/ndkpkg/settings"
)

func toolchain(t *testing.T, spec settings.TargetSpec, binutils recipe.Binutils) Toolchain {
	t.Helper()
	names, err := naming.New(spec)
	if err != nil {
		t.Fatal(err)
	}
	return Toolchain{
		Root:     filepath.Join(t.TempDir(), "pkg"),
		Spec:     spec,
		Names:    names,
		Binutils: binutils,
	}
}

func clangSpec(host settings.OS, arch settings.Arch, api int) settings.TargetSpec {
	return settings.TargetSpec{
		HostOS:          host,
		HostArch:        settings.X86_64,
		TargetArch:      arch,
		Compiler:        settings.Clang,
		CompilerVersion: "14",
		Libcxx:          settings.LibCxx,
		APILevel:        api,
	}
}

func TestPublish_LLVM(t *testing.T) {
	tc := toolchain(t, clangSpec(settings.Linux, settings.ARMv7, 24), recipe.LLVMBinutils)
	env, err := Publish(tc)
	if err != nil {
		t.Fatalf("Publish=%v; want nil", err)
	}
	prebuilt := filepath.Join(tc.Root, "toolchains", "llvm", "prebuilt", "linux-x86_64")
	bin := filepath.Join(prebuilt, "bin")
	want := []Var{
		{Name: "NDK_ROOT", Value: tc.Root},
		{Name: "ANDROID_NDK_ROOT", Value: tc.Root},
		{Name: "ANDROID_NDK_HOME", Value: tc.Root},
		{Name: "CHOST", Value: "arm-linux-androideabi"},
		{Name: "SYSROOT", Value: filepath.Join(prebuilt, "sysroot")},
		{Name: "CC", Value: filepath.Join(bin, "armv7a-linux-androideabi24-clang")},
		{Name: "CXX", Value: filepath.Join(bin, "armv7a-linux-androideabi24-clang++")},
		{Name: "AS", Value: filepath.Join(bin, "llvm-as")},
		{Name: "LD", Value: filepath.Join(bin, "ld.lld")},
		{Name: "AR", Value: filepath.Join(bin, "llvm-ar")},
		{Name: "RANLIB", Value: filepath.Join(bin, "llvm-ranlib")},
		{Name: "STRIP", Value: filepath.Join(bin, "llvm-strip")},
		{Name: "NM", Value: filepath.Join(bin, "llvm-nm")},
		{Name: "OBJCOPY", Value: filepath.Join(bin, "llvm-objcopy")},
		{Name: "OBJDUMP", Value: filepath.Join(bin, "llvm-objdump")},
		{Name: "READELF", Value: filepath.Join(bin, "llvm-readelf")},
		{Name: "CMAKE_TOOLCHAIN_FILE", Value: filepath.Join(tc.Root, "build", "cmake", "android.toolchain.cmake")},
		{Name: "ANDROID_ABI", Value: "armeabi-v7a"},
		{Name: "ANDROID_PLATFORM", Value: "android-24"},
		{Name: "ANDROID_STL", Value: "c++_shared"},
		{Name: "PATH", Value: bin, Action: PrependPath},
	}
	if diff := cmp.Diff(want, env.Vars); diff != "" {
		t.Errorf("Vars diff -want +got:\n%s", diff)
	}
	wantConf := map[string]string{
		"tools.android:ndk_path":               tc.Root,
		"tools.android:cmake_legacy_toolchain": "false",
	}
	if diff := cmp.Diff(wantConf, env.Conf); diff != "" {
		t.Errorf("Conf diff -want +got:\n%s", diff)
	}
	if got, ok := env.Lookup("CC"); !ok || got != env.Tools["CC"] {
		t.Errorf("Lookup(CC)=%q, %t; want %q", got, ok, env.Tools["CC"])
	}
}

func TestPublish_Windows(t *testing.T) {
	tc := toolchain(t, clangSpec(settings.Windows, settings.ARMv8, 21), recipe.LLVMBinutils)
	env, err := Publish(tc)
	if err != nil {
		t.Fatalf("Publish=%v; want nil", err)
	}
	bin := filepath.Join(tc.Root, "toolchains", "llvm", "prebuilt", "windows-x86_64", "bin")
	for name, want := range map[string]string{
		"CC":  filepath.Join(bin, "aarch64-linux-android21-clang.cmd"),
		"CXX": filepath.Join(bin, "aarch64-linux-android21-clang++.cmd"),
		"AR":  filepath.Join(bin, "llvm-ar.exe"),
		"LD":  filepath.Join(bin, "ld.lld.exe"),
	} {
		if got := env.Tools[name]; got != want {
			t.Errorf("%s=%q; want %q", name, got, want)
		}
	}
}

func TestPublish_GNU(t *testing.T) {
	spec := clangSpec(settings.Macos, settings.X86_64, 28)
	spec.CompilerVersion = "9"
	tc := toolchain(t, spec, recipe.GNUBinutils)
	env, err := Publish(tc)
	if err != nil {
		t.Fatalf("Publish=%v; want nil", err)
	}
	bin := filepath.Join(tc.Root, "toolchains", "llvm", "prebuilt", "darwin-x86_64", "bin")
	want := map[string]string{
		"CC":        filepath.Join(bin, "x86_64-linux-android28-clang"),
		"CXX":       filepath.Join(bin, "x86_64-linux-android28-clang++"),
		"AS":        filepath.Join(bin, "x86_64-linux-android-as"),
		"LD":        filepath.Join(bin, "x86_64-linux-android-ld"),
		"AR":        filepath.Join(bin, "x86_64-linux-android-ar"),
		"RANLIB":    filepath.Join(bin, "x86_64-linux-android-ranlib"),
		"STRIP":     filepath.Join(bin, "x86_64-linux-android-strip"),
		"NM":        filepath.Join(bin, "x86_64-linux-android-nm"),
		"OBJCOPY":   filepath.Join(bin, "x86_64-linux-android-objcopy"),
		"OBJDUMP":   filepath.Join(bin, "x86_64-linux-android-objdump"),
		"READELF":   filepath.Join(bin, "x86_64-linux-android-readelf"),
		"ADDR2LINE": filepath.Join(bin, "x86_64-linux-android-addr2line"),
		"ELFEDIT":   filepath.Join(bin, "x86_64-linux-android-elfedit"),
	}
	if diff := cmp.Diff(want, env.Tools); diff != "" {
		t.Errorf("Tools diff -want +got:\n%s", diff)
	}
}

func TestPublish_StandaloneGCC(t *testing.T) {
	spec := settings.TargetSpec{
		HostOS:          settings.Linux,
		HostArch:        settings.X86_64,
		TargetArch:      settings.ARMv7,
		Compiler:        settings.GCC,
		CompilerVersion: "4.9",
		Libcxx:          settings.LibStdCxx,
		APILevel:        21,
	}
	tc := toolchain(t, spec, recipe.GNUBinutils)
	if _, err := Publish(tc); err == nil {
		t.Errorf("Publish(gcc without standalone)=nil; want error")
	}
	tc.StandaloneRoot = filepath.Join(tc.Root, "standalone-toolchain")
	env, err := Publish(tc)
	if err != nil {
		t.Fatalf("Publish=%v; want nil", err)
	}
	bin := filepath.Join(tc.StandaloneRoot, "bin")
	for name, want := range map[string]string{
		"CC":        filepath.Join(bin, "arm-linux-androideabi-gcc"),
		"CXX":       filepath.Join(bin, "arm-linux-androideabi-g++"),
		"AR":        filepath.Join(bin, "arm-linux-androideabi-ar"),
		"ADDR2LINE": filepath.Join(bin, "arm-linux-androideabi-addr2line"),
	} {
		if got := env.Tools[name]; got != want {
			t.Errorf("%s=%q; want %q", name, got, want)
		}
	}
	for name, want := range map[string]string{
		"SYSROOT":     filepath.Join(tc.StandaloneRoot, "sysroot"),
		"ANDROID_STL": "gnustl_shared",
		"PATH":        bin,
	} {
		if got, _ := env.Lookup(name); got != want {
			t.Errorf("%s=%q; want %q", name, got, want)
		}
	}
}

// Every documented tool has a path under the root, and no two tools
// share a path.
func TestPublish_ToolsUnderRoot(t *testing.T) {
	root := t.TempDir()
	for _, host := range []settings.OS{settings.Linux, settings.Macos, settings.Windows} {
		for _, arch := range []settings.Arch{settings.ARMv7, settings.ARMv8, settings.X86, settings.X86_64} {
			for _, layout := range []struct {
				name       string
				binutils   recipe.Binutils
				standalone bool
				tools      int
			}{
				{name: "llvm", binutils: recipe.LLVMBinutils, tools: 11},
				{name: "gnu", binutils: recipe.GNUBinutils, tools: 13},
				{name: "standalone", binutils: recipe.GNUBinutils, standalone: true, tools: 13},
			} {
				t.Run(strings.Join([]string{string(host), string(arch), layout.name}, "/"), func(t *testing.T) {
					spec := clangSpec(host, arch, 24)
					names, err := naming.New(spec)
					if err != nil {
						t.Fatal(err)
					}
					tc := Toolchain{
						Root:     root,
						Spec:     spec,
						Names:    names,
						Binutils: layout.binutils,
					}
					if layout.standalone {
						tc.StandaloneRoot = filepath.Join(root, "standalone-toolchain")
					}
					env, err := Publish(tc)
					if err != nil {
						t.Fatalf("Publish=%v; want nil", err)
					}
					if len(env.Tools) != layout.tools {
						t.Errorf("len(Tools)=%d; want %d", len(env.Tools), layout.tools)
					}
					seen := make(map[string]string)
					for name, p := range env.Tools {
						rel, err := filepath.Rel(root, p)
						if err != nil || strings.HasPrefix(rel, "..") {
							t.Errorf("%s=%q; not under %q", name, p, root)
						}
						if prev, ok := seen[p]; ok {
							t.Errorf("%s and %s share %q", prev, name, p)
						}
						seen[p] = name
					}
				})
			}
		}
	}
}

func TestPublish_Errors(t *testing.T) {
	tc := toolchain(t, clangSpec(settings.Linux, settings.X86, 24), recipe.LLVMBinutils)

	rel := tc
	rel.Root = "pkg"
	if _, err := Publish(rel); err == nil {
		t.Errorf("Publish(relative root)=nil; want error")
	}

	host := tc
	host.Spec.HostOS = settings.Android
	if _, err := Publish(host); err == nil {
		t.Errorf("Publish(android host)=nil; want error")
	}

	bu := tc
	bu.Binutils = "bfd"
	if _, err := Publish(bu); err == nil {
		t.Errorf("Publish(bfd)=nil; want error")
	}

	outside := tc
	outside.StandaloneRoot = filepath.Join(filepath.Dir(tc.Root), "elsewhere")
	if _, err := Publish(outside); err == nil {
		t.Errorf("Publish(standalone outside root)=nil; want error")
	}
}
