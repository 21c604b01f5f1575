// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package packager copies an extracted NDK tree into a package folder.
package packager

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

// Options selects the files to copy.
type Options struct {
	// Patterns are glob patterns (path.Match) of files to copy.
	// A pattern matches either the slash-separated path relative to
	// the source or its base name. Empty copies every file.
	Patterns []string
	// Excludes are glob patterns of files not to copy, matched like
	// Patterns. A directory matching Excludes is not descended.
	Excludes []string
}

func matchAny(patterns []string, rel string) (bool, error) {
	base := path.Base(rel)
	for _, p := range patterns {
		ok, err := path.Match(p, rel)
		if err != nil {
			return false, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
		ok, _ = path.Match(p, base)
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Stats is the result of Copy.
type Stats struct {
	Files    int
	Symlinks int
	Bytes    int64
}

func (s Stats) String() string {
	return fmt.Sprintf("files=%d symlinks=%d bytes=%d", s.Files, s.Symlinks, s.Bytes)
}

// Copy copies the files under src into dst, keeping relative paths,
// permission bits and symlinks (copied as links, not followed).
// Existing files in dst are overwritten.
func Copy(ctx context.Context, fsys *osfs.OSFS, src, dst string, opts Options) (Stats, error) {
	var st Stats
	err := filepath.WalkDir(src, func(fname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, fname)
		if err != nil {
			return err
		}
		if rel == "." {
			return fsys.MkdirAll(ctx, dst, 0755)
		}
		slashRel := filepath.ToSlash(rel)
		excluded, err := matchAny(opts.Excludes, slashRel)
		if err != nil {
			return err
		}
		if excluded {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if len(opts.Patterns) > 0 {
			ok, err := matchAny(opts.Patterns, slashRel)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		target := filepath.Join(dst, rel)
		err = fsys.MkdirAll(ctx, filepath.Dir(target), 0755)
		if err != nil {
			return err
		}
		switch {
		case d.Type()&fs.ModeSymlink != 0:
			err = copySymlink(ctx, fsys, fname, target)
			if err == nil {
				st.Symlinks++
			}
		case d.Type().IsRegular():
			var n int64
			n, err = copyFile(ctx, fsys, fname, target)
			if err == nil {
				st.Files++
				st.Bytes += n
			}
		default:
			log.Debugf("skip %s: %s", fname, d.Type())
		}
		return err
	})
	if err != nil {
		return st, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	log.Infof("copied %s to %s: %s", src, dst, st)
	return st, nil
}

func copySymlink(ctx context.Context, fsys *osfs.OSFS, src, dst string) error {
	target, err := fsys.Readlink(ctx, src)
	if err != nil {
		return err
	}
	err = removeIfExists(ctx, fsys, dst)
	if err != nil {
		return err
	}
	return fsys.Symlink(ctx, target, dst)
}

func copyFile(ctx context.Context, fsys *osfs.OSFS, src, dst string) (int64, error) {
	fi, err := fsys.Lstat(ctx, src)
	if err != nil {
		return 0, err
	}
	r, err := fsys.Open(ctx, src)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	err = removeIfExists(ctx, fsys, dst)
	if err != nil {
		return 0, err
	}
	w, err := fsys.Create(ctx, dst, fi.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, r)
	cerr := w.Close()
	if err != nil {
		return n, err
	}
	if cerr != nil {
		return n, cerr
	}
	// Create is subject to umask.
	return n, fsys.Chmod(ctx, dst, fi.Mode().Perm())
}

func removeIfExists(ctx context.Context, fsys *osfs.OSFS, fname string) error {
	_, err := fsys.Lstat(ctx, fname)
	if err != nil {
		return nil
	}
	return fsys.Remove(ctx, fname)
}
