// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package recipe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"

	"go.chromium.org/infra/build/ndkpkg/settings"
)

// loader loads Starlark modules from a filesystem.
type loader struct {
	fsys    fs.FS
	modules map[string]*module
}

type module struct {
	globals starlark.StringDict
	err     error
}

func (l *loader) Load(thread *starlark.Thread, name string) (starlark.StringDict, error) {
	name = path.Clean(name)
	if m, ok := l.modules[name]; ok {
		if m == nil {
			return nil, fmt.Errorf("cycle in load graph: %s", name)
		}
		return m.globals, m.err
	}
	l.modules[name] = nil
	buf, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	t := &starlark.Thread{
		Name: "load " + name,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: l.Load,
	}
	globals, err := starlark.ExecFile(t, name, buf, nil)
	l.modules[name] = &module{globals: globals, err: err}
	return globals, err
}

// Load loads a recipe from the Starlark file name in fsys.
// The file may load() other files in fsys.
func Load(ctx context.Context, fsys fs.FS, name string) (*Recipe, error) {
	l := &loader{
		fsys:    fsys,
		modules: make(map[string]*module),
	}
	thread := &starlark.Thread{
		Name: "recipe",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: l.Load,
	}
	globals, err := l.Load(thread, name)
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, fmt.Errorf("failed to load recipe %s: %w", name, err)
	}
	r, err := fromGlobals(globals)
	if err != nil {
		return nil, fmt.Errorf("bad recipe %s: %w", name, err)
	}
	log.Debugf("recipe %s: %s", name, r.Reference())
	return r, nil
}

// LoadFile loads a recipe from a Starlark file on disk.
// load() resolves relative to the directory of the file.
func LoadFile(ctx context.Context, fname string) (*Recipe, error) {
	dir, base := filepath.Split(fname)
	if dir == "" {
		dir = "."
	}
	return Load(ctx, os.DirFS(dir), base)
}

type globalReader struct {
	globals starlark.StringDict
	errs    []error
}

func (g *globalReader) value(name string, required bool) (starlark.Value, bool) {
	v, ok := g.globals[name]
	if !ok || v == starlark.None {
		if required {
			g.errs = append(g.errs, fmt.Errorf("%s is not defined", name))
		}
		return nil, false
	}
	return v, true
}

func (g *globalReader) str(name string, required bool) string {
	v, ok := g.value(name, required)
	if !ok {
		return ""
	}
	s, ok := starlark.AsString(v)
	if !ok {
		g.errs = append(g.errs, fmt.Errorf("%s=%s, want string", name, v.Type()))
	}
	return s
}

func (g *globalReader) integer(name string, required bool) int {
	v, ok := g.value(name, required)
	if !ok {
		return 0
	}
	i, err := starlark.AsInt32(v)
	if err != nil {
		g.errs = append(g.errs, fmt.Errorf("%s: %w", name, err))
	}
	return i
}

func (g *globalReader) stringList(name string) []string {
	v, ok := g.value(name, false)
	if !ok {
		return nil
	}
	iter, ok := v.(starlark.Iterable)
	if !ok {
		g.errs = append(g.errs, fmt.Errorf("%s=%s, want list", name, v.Type()))
		return nil
	}
	var ret []string
	it := iter.Iterate()
	defer it.Done()
	var x starlark.Value
	for it.Next(&x) {
		s, ok := starlark.AsString(x)
		if !ok {
			g.errs = append(g.errs, fmt.Errorf("%s: element %s, want string", name, x.Type()))
			continue
		}
		ret = append(ret, s)
	}
	return ret
}

func (g *globalReader) sources(name string) map[settings.OS]Source {
	v, ok := g.value(name, true)
	if !ok {
		return nil
	}
	d, ok := v.(*starlark.Dict)
	if !ok {
		g.errs = append(g.errs, fmt.Errorf("%s=%s, want dict", name, v.Type()))
		return nil
	}
	ret := make(map[settings.OS]Source)
	for _, item := range d.Items() {
		host, ok := starlark.AsString(item[0])
		if !ok {
			g.errs = append(g.errs, fmt.Errorf("%s: key %s, want string", name, item[0].Type()))
			continue
		}
		sd, ok := item[1].(*starlark.Dict)
		if !ok {
			g.errs = append(g.errs, fmt.Errorf("%s[%q]=%s, want dict", name, host, item[1].Type()))
			continue
		}
		src := &globalReader{globals: make(starlark.StringDict)}
		for _, kv := range sd.Items() {
			k, ok := starlark.AsString(kv[0])
			if !ok {
				g.errs = append(g.errs, fmt.Errorf("%s[%q]: key %s, want string", name, host, kv[0].Type()))
				continue
			}
			src.globals[k] = kv[1]
		}
		ret[settings.OS(host)] = Source{
			URL:    src.str("url", true),
			SHA256: src.str("sha256", false),
			Root:   src.str("root", true),
		}
		for _, err := range src.errs {
			g.errs = append(g.errs, fmt.Errorf("%s[%q]: %w", name, host, err))
		}
	}
	return ret
}

func fromGlobals(globals starlark.StringDict) (*Recipe, error) {
	g := &globalReader{globals: globals}
	r := &Recipe{
		Name:        g.str("name", true),
		Version:     g.str("version", true),
		User:        g.str("user", false),
		Channel:     g.str("channel", false),
		Description: g.str("description", false),
		License:     g.str("license", false),
		Author:      g.str("author", false),
		Homepage:    g.str("homepage", false),
		URL:         g.str("url", false),
		Topics:      g.stringList("topics"),

		ClangVersion: g.str("supported_clang_version", true),
		GCCVersion:   g.str("supported_gcc_version", false),
		MinAPILevel:  g.integer("min_api_level", true),
		MaxAPILevel:  g.integer("max_supported_api_level", true),

		Binutils:   Binutils(g.str("binutils", true)),
		Standalone: StandaloneSupport(g.str("standalone_toolchain", false)),

		Sources: g.sources("sources"),
	}
	if r.Standalone == "" {
		r.Standalone = StandaloneUnsupported
	}
	if r.User != "" && r.Channel == "" {
		r.Channel = "stable"
	}
	if len(g.errs) > 0 {
		return nil, errors.Join(g.errs...)
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	return r, nil
}
