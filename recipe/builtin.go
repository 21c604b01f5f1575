// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package recipe

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// DefaultVersion is the NDK revision used when none is given.
const DefaultVersion = "r25c"

//go:embed builtin/*.star
var builtinFS embed.FS

func builtinRoot() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

// BuiltinVersions returns the NDK revisions of the built-in recipes.
func BuiltinVersions() []string {
	ents, err := fs.ReadDir(builtinRoot(), ".")
	if err != nil {
		panic(err)
	}
	var versions []string
	for _, ent := range ents {
		name := ent.Name()
		if name == "common.star" || !strings.HasSuffix(name, ".star") {
			continue
		}
		versions = append(versions, strings.TrimSuffix(name, ".star"))
	}
	sort.Strings(versions)
	return versions
}

// Builtin loads the built-in recipe of the NDK revision.
func Builtin(ctx context.Context, version string) (*Recipe, error) {
	for _, v := range BuiltinVersions() {
		if v == version {
			return Load(ctx, builtinRoot(), version+".star")
		}
	}
	return nil, fmt.Errorf("no built-in recipe for %q; available: %s", version, strings.Join(BuiltinVersions(), ", "))
}
