// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package envpub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

// Format is an environment file format.
type Format string

const (
	Shell Format = "sh"
	Batch Format = "bat"
	JSON  Format = "json"
)

// Formats are the supported formats.
var Formats = []Format{Shell, Batch, JSON}

// ParseFormat parses s as a Format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q: want sh, bat or json", s)
}

// Filename returns the environment file name for the format.
func (f Format) Filename() string {
	return "ndkenv." + string(f)
}

// Render writes the environment in format f to w.
func (e *Environment) Render(w io.Writer, f Format) error {
	switch f {
	case Shell:
		return e.renderShell(w)
	case Batch:
		return e.renderBatch(w)
	case JSON:
		return e.renderJSON(w)
	}
	return fmt.Errorf("unknown format %q", f)
}

// shellQuote quotes s for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (e *Environment) renderShell(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# Generated by ndkpkg. Source this file.")
	for _, v := range e.Vars {
		switch v.Action {
		case PrependPath:
			fmt.Fprintf(&buf, "export %s=%s${%s:+:${%s}}\n", v.Name, shellQuote(v.Value), v.Name, v.Name)
		default:
			fmt.Fprintf(&buf, "export %s=%s\n", v.Name, shellQuote(v.Value))
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (e *Environment) renderBatch(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "@echo off\r\nrem Generated by ndkpkg. Call this file.\r\n")
	for _, v := range e.Vars {
		// %% is a literal % in batch files.
		value := strings.ReplaceAll(v.Value, "%", "%%")
		switch v.Action {
		case PrependPath:
			fmt.Fprintf(&buf, "set \"%s=%s;%%%s%%\"\r\n", v.Name, value, v.Name)
		default:
			fmt.Fprintf(&buf, "set \"%s=%s\"\r\n", v.Name, value)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

type jsonVar struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Action string `json:"action"`
}

type jsonEnv struct {
	Vars  []jsonVar         `json:"vars"`
	Conf  map[string]string `json:"conf"`
	Tools map[string]string `json:"tools"`
}

func (e *Environment) renderJSON(w io.Writer) error {
	je := jsonEnv{
		Conf:  e.Conf,
		Tools: e.Tools,
	}
	for _, v := range e.Vars {
		je.Vars = append(je.Vars, jsonVar{Name: v.Name, Value: v.Value, Action: v.Action.String()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(je)
}

// WriteFiles writes the environment files of every format in dir and
// returns their paths. Each file is written to a temporary file and
// renamed, so readers never see a partial file.
func (e *Environment) WriteFiles(ctx context.Context, fsys *osfs.OSFS, dir string) ([]string, error) {
	var fnames []string
	for _, f := range Formats {
		var buf bytes.Buffer
		err := e.Render(&buf, f)
		if err != nil {
			return nil, err
		}
		fname := filepath.Join(dir, f.Filename())
		tmp := fname + ".tmp"
		err = fsys.WriteFile(ctx, tmp, buf.Bytes(), 0644)
		if err != nil {
			return nil, err
		}
		err = fsys.Rename(ctx, tmp, fname)
		if err != nil {
			return nil, err
		}
		log.Infof("wrote %s", fname)
		fnames = append(fnames, fname)
	}
	return fnames, nil
}
