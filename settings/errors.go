// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package settings

import (
	"errors"
	"fmt"
)

// Validation error kinds. ValidationError and MissingSettingError
// unwrap to one of these.
var (
	ErrInvalidHostPlatform        = errors.New("invalid host platform")
	ErrInvalidTargetArch          = errors.New("invalid target architecture")
	ErrInvalidAPILevel            = errors.New("invalid api level")
	ErrUnsupportedLibcxx          = errors.New("unsupported libcxx")
	ErrUnsupportedCompiler        = errors.New("unsupported compiler")
	ErrUnsupportedCompilerVersion = errors.New("unsupported compiler version")
	ErrUnsupportedOption          = errors.New("unsupported option")
	ErrMissingSetting             = errors.New("missing setting")
)

// ValidationError is an error of a setting value rejected by Validate.
type ValidationError struct {
	// Kind is one of the Err* sentinel errors.
	Kind    error
	Setting string
	Value   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s=%q: %s", e.Kind, e.Setting, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// MissingSettingError is an error of a setting absent in the active context.
type MissingSettingError struct {
	// Context is the name of the context the setting was looked up in.
	Context string
	// Name is the profile key of the setting.
	Name string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("%v: %s is not set in %s context", ErrMissingSetting, e.Name, e.Context)
}

func (e *MissingSettingError) Unwrap() error {
	return ErrMissingSetting
}
