// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package settings

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// Profile is a settings profile.
//
//	[settings]
//	os = "Linux"
//	arch = "x86_64"
//
//	[settings_target]
//	os = "Android"
//	arch = "armv8"
//	api_level = 24
//
//	[settings_target.compiler]
//	name = "clang"
//	version = "14"
//	libcxx = "c++_shared"
//
//	[options]
//	standalone = false
//
// When [settings_target] is present, the package is used as a build
// tool and [settings] describes the build machine. Otherwise [settings]
// describes the target and os_build/arch_build the build machine.
type Profile struct {
	Settings       ProfileSettings  `toml:"settings"`
	SettingsTarget *ProfileSettings `toml:"settings_target"`
	Options        ProfileOptions   `toml:"options"`
}

// ProfileSettings is a settings table of a profile.
// APILevel is nil when api_level is absent.
type ProfileSettings struct {
	OS        string          `toml:"os"`
	Arch      string          `toml:"arch"`
	OSBuild   string          `toml:"os_build"`
	ArchBuild string          `toml:"arch_build"`
	APILevel  *int            `toml:"api_level"`
	Compiler  ProfileCompiler `toml:"compiler"`
}

// ProfileCompiler is the compiler table of a settings table.
type ProfileCompiler struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Libcxx  string `toml:"libcxx"`
}

// ProfileOptions is the options table of a profile.
type ProfileOptions struct {
	Standalone bool `toml:"standalone"`
}

// LoadProfile loads a profile from the TOML file.
func LoadProfile(fname string) (*Profile, error) {
	p := &Profile{}
	meta, err := toml.DecodeFile(fname, p)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse profile: %w", fname, err)
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return p, nil
}

// ParseProfile parses a profile in TOML.
func ParseProfile(r io.Reader) (*Profile, error) {
	p := &Profile{}
	meta, err := toml.NewDecoder(r).Decode(p)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, err
	}
	return p, nil
}

func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	return fmt.Errorf("unknown profile keys: %s", strings.Join(keys, ", "))
}
