// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package settings

// Context gives access to the settings of a profile.
// The same logical setting comes from a different profile key depending
// on whether the package is a direct dependency (HostContext) or a
// build tool for another target (CrossBuildContext).
type Context interface {
	// Name returns the name of the context.
	Name() string

	HostOS() (OS, error)
	HostArch() (Arch, error)
	TargetArch() (Arch, error)
	Compiler() (Compiler, error)
	CompilerVersion() (string, error)
	Libcxx() (Libcxx, error)
	APILevel() (int, error)
}

// NewContext returns the context for the profile.
func NewContext(p *Profile) Context {
	if p.SettingsTarget != nil {
		return CrossBuildContext{build: p.Settings, target: *p.SettingsTarget}
	}
	return HostContext{settings: p.Settings}
}

// HostContext is a context where the package is a direct dependency.
// The target comes from [settings], the host from
// settings.os_build and settings.arch_build.
type HostContext struct {
	settings ProfileSettings
}

func (HostContext) Name() string { return "host" }

func (c HostContext) missing(name string) error {
	return &MissingSettingError{Context: c.Name(), Name: name}
}

func (c HostContext) HostOS() (OS, error) {
	if c.settings.OSBuild == "" {
		return "", c.missing("settings.os_build")
	}
	return OS(c.settings.OSBuild), nil
}

func (c HostContext) HostArch() (Arch, error) {
	if c.settings.ArchBuild == "" {
		return "", c.missing("settings.arch_build")
	}
	return Arch(c.settings.ArchBuild), nil
}

func (c HostContext) TargetArch() (Arch, error) {
	if c.settings.Arch == "" {
		return "", c.missing("settings.arch")
	}
	return Arch(c.settings.Arch), nil
}

func (c HostContext) Compiler() (Compiler, error) {
	if c.settings.Compiler.Name == "" {
		return "", c.missing("settings.compiler.name")
	}
	return Compiler(c.settings.Compiler.Name), nil
}

func (c HostContext) CompilerVersion() (string, error) {
	if c.settings.Compiler.Version == "" {
		return "", c.missing("settings.compiler.version")
	}
	return c.settings.Compiler.Version, nil
}

func (c HostContext) Libcxx() (Libcxx, error) {
	if c.settings.Compiler.Libcxx == "" {
		return "", c.missing("settings.compiler.libcxx")
	}
	return Libcxx(c.settings.Compiler.Libcxx), nil
}

func (c HostContext) APILevel() (int, error) {
	if c.settings.APILevel == nil {
		return 0, c.missing("settings.api_level")
	}
	return *c.settings.APILevel, nil
}

// CrossBuildContext is a context where the package is a build tool.
// The host comes from [settings], the target from [settings_target].
type CrossBuildContext struct {
	build  ProfileSettings
	target ProfileSettings
}

func (CrossBuildContext) Name() string { return "cross-build" }

func (c CrossBuildContext) missing(name string) error {
	return &MissingSettingError{Context: c.Name(), Name: name}
}

func (c CrossBuildContext) HostOS() (OS, error) {
	if c.build.OS == "" {
		return "", c.missing("settings.os")
	}
	return OS(c.build.OS), nil
}

func (c CrossBuildContext) HostArch() (Arch, error) {
	if c.build.Arch == "" {
		return "", c.missing("settings.arch")
	}
	return Arch(c.build.Arch), nil
}

func (c CrossBuildContext) TargetArch() (Arch, error) {
	if c.target.Arch == "" {
		return "", c.missing("settings_target.arch")
	}
	return Arch(c.target.Arch), nil
}

func (c CrossBuildContext) Compiler() (Compiler, error) {
	if c.target.Compiler.Name == "" {
		return "", c.missing("settings_target.compiler.name")
	}
	return Compiler(c.target.Compiler.Name), nil
}

func (c CrossBuildContext) CompilerVersion() (string, error) {
	if c.target.Compiler.Version == "" {
		return "", c.missing("settings_target.compiler.version")
	}
	return c.target.Compiler.Version, nil
}

func (c CrossBuildContext) Libcxx() (Libcxx, error) {
	if c.target.Compiler.Libcxx == "" {
		return "", c.missing("settings_target.compiler.libcxx")
	}
	return Libcxx(c.target.Compiler.Libcxx), nil
}

func (c CrossBuildContext) APILevel() (int, error) {
	if c.target.APILevel == nil {
		return 0, c.missing("settings_target.api_level")
	}
	return *c.target.APILevel, nil
}

// Resolve reads every setting from the context into a TargetSpec.
// It returns a MissingSettingError for the first absent setting.
func Resolve(c Context) (TargetSpec, error) {
	var spec TargetSpec
	var err error
	if spec.HostOS, err = c.HostOS(); err != nil {
		return TargetSpec{}, err
	}
	if spec.HostArch, err = c.HostArch(); err != nil {
		return TargetSpec{}, err
	}
	if spec.TargetArch, err = c.TargetArch(); err != nil {
		return TargetSpec{}, err
	}
	if spec.Compiler, err = c.Compiler(); err != nil {
		return TargetSpec{}, err
	}
	if spec.CompilerVersion, err = c.CompilerVersion(); err != nil {
		return TargetSpec{}, err
	}
	if spec.Libcxx, err = c.Libcxx(); err != nil {
		return TargetSpec{}, err
	}
	if spec.APILevel, err = c.APILevel(); err != nil {
		return TargetSpec{}, err
	}
	return spec, nil
}
