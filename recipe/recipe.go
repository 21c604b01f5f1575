// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package recipe provides the NDK package recipe: the pinned versions,
// API level bounds and archive sources of an NDK revision.
package recipe

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"go.chromium.org/infra/build/ndkpkg/settings"
)

// Binutils is the flavor of the binary utilities in the NDK.
type Binutils string

const (
	// LLVMBinutils are llvm-ar, llvm-strip etc. (NDK r23 and later).
	LLVMBinutils Binutils = "llvm"
	// GNUBinutils are <triplet>-ar, <triplet>-strip etc.
	GNUBinutils Binutils = "gnu"
)

// StandaloneSupport is the support level of standalone toolchains.
type StandaloneSupport string

const (
	StandaloneUnsupported StandaloneSupport = "unsupported"
	StandaloneDeprecated  StandaloneSupport = "deprecated"
	StandaloneSupported   StandaloneSupport = "supported"
)

// Source is an archive source for a host.
type Source struct {
	URL string
	// SHA256 is the expected hex digest. Empty skips verification.
	SHA256 string
	// Root is the top directory of the NDK in the archive.
	Root string
}

// Filename returns the file name of the archive.
func (s Source) Filename() string {
	u := s.URL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return path.Base(u)
}

// Recipe is an NDK package recipe. It is immutable after load.
type Recipe struct {
	Name        string
	Version     string
	User        string
	Channel     string
	Description string
	License     string
	Author      string
	Homepage    string
	URL         string
	Topics      []string

	ClangVersion string
	GCCVersion   string
	MinAPILevel  int
	MaxAPILevel  int

	Binutils   Binutils
	Standalone StandaloneSupport

	Sources map[settings.OS]Source
}

// Reference returns the package reference, e.g. "android-ndk/r25c@user/stable".
func (r *Recipe) Reference() string {
	ref := r.Name + "/" + r.Version
	if r.User != "" {
		ref += "@" + r.User + "/" + r.Channel
	}
	return ref
}

// Constraints returns the settings constraints of the recipe.
func (r *Recipe) Constraints() settings.Constraints {
	return settings.Constraints{
		MinAPILevel:  r.MinAPILevel,
		MaxAPILevel:  r.MaxAPILevel,
		ClangVersion: r.ClangVersion,
		GCCVersion:   r.GCCVersion,
		Standalone:   r.Standalone != StandaloneUnsupported,
	}
}

// Source returns the archive source for the host.
func (r *Recipe) Source(host settings.OS) (Source, error) {
	s, ok := r.Sources[host]
	if !ok {
		return Source{}, fmt.Errorf("%s: no source for host %s", r.Reference(), host)
	}
	return s, nil
}

// Hosts returns the hosts the recipe has sources for, sorted.
func (r *Recipe) Hosts() []settings.OS {
	hosts := make([]settings.OS, 0, len(r.Sources))
	for h := range r.Sources {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i] < hosts[j] })
	return hosts
}

func (r *Recipe) check() error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}
	if r.Version == "" {
		errs = append(errs, errors.New("version is empty"))
	}
	if r.ClangVersion == "" {
		errs = append(errs, errors.New("supported_clang_version is empty"))
	}
	if r.MinAPILevel < settings.MinAPILevel {
		errs = append(errs, fmt.Errorf("min_api_level %d < %d", r.MinAPILevel, settings.MinAPILevel))
	}
	if r.MaxAPILevel < r.MinAPILevel {
		errs = append(errs, fmt.Errorf("max_supported_api_level %d < min_api_level %d", r.MaxAPILevel, r.MinAPILevel))
	}
	switch r.Binutils {
	case LLVMBinutils, GNUBinutils:
	default:
		errs = append(errs, fmt.Errorf("unknown binutils %q", r.Binutils))
	}
	switch r.Standalone {
	case StandaloneUnsupported, StandaloneDeprecated, StandaloneSupported:
	default:
		errs = append(errs, fmt.Errorf("unknown standalone_toolchain %q", r.Standalone))
	}
	for host, src := range r.Sources {
		if !host.IsHost() {
			errs = append(errs, fmt.Errorf("source for unknown host %q", host))
		}
		if src.URL == "" {
			errs = append(errs, fmt.Errorf("source for %s has no url", host))
		}
		if src.Root == "" {
			errs = append(errs, fmt.Errorf("source for %s has no root", host))
		}
	}
	return errors.Join(errs...)
}
