// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

func TestFormatOf(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Format
	}{
		{"android-ndk-r25c-linux.zip", Zip},
		{"NDK.ZIP", Zip},
		{"ndk.tar", Tar},
		{"ndk.tar.gz", TarGzip},
		{"ndk.tgz", TarGzip},
		{"ndk.tar.xz", TarXz},
		{"ndk.tar.zst", TarZstd},
		{"ndk.tar.bz2", TarBzip2},
		{"ndk.7z", UnknownFormat},
		{"ndk.dmg", UnknownFormat},
	} {
		if got := FormatOf(tc.name); got != tc.want {
			t.Errorf("FormatOf(%q)=%s; want %s", tc.name, got, tc.want)
		}
	}
}

type entry struct {
	name     string
	mode     fs.FileMode
	content  string
	linkname string
	hardlink bool
}

var ndkEntries = []entry{
	{name: "android-ndk-r25c/", mode: fs.ModeDir | 0755},
	{name: "android-ndk-r25c/source.properties", mode: 0644, content: "Pkg.Revision = 25.2.9519653\n"},
	{name: "android-ndk-r25c/bin/", mode: fs.ModeDir | 0755},
	{name: "android-ndk-r25c/bin/clang", mode: 0755, content: "\x7fELF"},
	{name: "android-ndk-r25c/bin/clang++", mode: fs.ModeSymlink | 0777, linkname: "clang"},
	{name: "__MACOSX/._clang", mode: 0644, content: "junk"},
}

func writeZip(t *testing.T, fname string, entries []entry) {
	t.Helper()
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		hdr.SetMode(e.mode)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatal(err)
		}
		content := e.content
		if e.mode&fs.ModeSymlink != 0 {
			content = e.linkname
		}
		_, err = io.WriteString(w, content)
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeTar(t *testing.T, fname string, format Format, entries []entry) {
	t.Helper()
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	var w io.WriteCloser
	switch format {
	case Tar:
		w = f
	case TarGzip:
		w = gzip.NewWriter(f)
	case TarXz:
		w, err = xz.NewWriter(f)
	case TarZstd:
		w, err = zstd.NewWriter(f)
	default:
		t.Fatalf("no writer for %s", format)
	}
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{
			Name: e.name,
			Mode: int64(e.mode.Perm()),
			Size: int64(len(e.content)),
		}
		switch {
		case e.mode.IsDir():
			hdr.Typeflag = tar.TypeDir
		case e.mode&fs.ModeSymlink != 0:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.linkname
		case e.hardlink:
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.linkname
			hdr.Size = 0
		default:
			hdr.Typeflag = tar.TypeReg
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := io.WriteString(tw, e.content); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if format != Tar {
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

type node struct {
	Mode    fs.FileMode
	Content string
	Link    string
}

func tree(t *testing.T, dir string) map[string]node {
	t.Helper()
	m := make(map[string]node)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		switch {
		case d.IsDir():
			m[rel] = node{Mode: fs.ModeDir}
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			m[rel] = node{Mode: fs.ModeSymlink, Link: target}
		default:
			fi, err := d.Info()
			if err != nil {
				return err
			}
			buf, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m[rel] = node{Mode: fi.Mode().Perm(), Content: string(buf)}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

var wantNDKTree = map[string]node{
	"source.properties": {Mode: 0644, Content: "Pkg.Revision = 25.2.9519653\n"},
	"bin":               {Mode: fs.ModeDir},
	"bin/clang":         {Mode: 0755, Content: "\x7fELF"},
	"bin/clang++":       {Mode: fs.ModeSymlink, Link: "clang"},
}

func TestExtract_Zip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privilege on windows")
	}
	ctx := context.Background()
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "android-ndk-r25c-linux.zip")
	writeZip(t, fname, ndkEntries)
	dst := filepath.Join(tmp, "out")

	st, err := Extract(ctx, osfs.New("test", osfs.Option{}), fname, dst, "android-ndk-r25c")
	if err != nil {
		t.Fatalf("Extract=%v; want nil", err)
	}
	if diff := cmp.Diff(wantNDKTree, tree(t, dst)); diff != "" {
		t.Errorf("tree diff -want +got:\n%s", diff)
	}
	wantStats := Stats{Files: 2, Dirs: 1, Symlinks: 1, Skipped: 1, Bytes: 32}
	if diff := cmp.Diff(wantStats, st); diff != "" {
		t.Errorf("stats diff -want +got:\n%s", diff)
	}
}

func TestExtract_Tar(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privilege on windows")
	}
	entries := append([]entry{}, ndkEntries...)
	entries = append(entries, entry{name: "android-ndk-r25c/bin/clang-14", linkname: "android-ndk-r25c/bin/clang", hardlink: true})
	want := make(map[string]node)
	for k, v := range wantNDKTree {
		want[k] = v
	}
	want["bin/clang-14"] = node{Mode: 0755, Content: "\x7fELF"}

	for _, format := range []Format{Tar, TarGzip, TarXz, TarZstd} {
		t.Run(format.String(), func(t *testing.T) {
			ctx := context.Background()
			tmp := t.TempDir()
			fname := filepath.Join(tmp, "android-ndk-r25c-linux."+format.String())
			writeTar(t, fname, format, entries)
			dst := filepath.Join(tmp, "out")

			st, err := Extract(ctx, osfs.New("test", osfs.Option{}), fname, dst, "android-ndk-r25c/")
			if err != nil {
				t.Fatalf("Extract=%v; want nil", err)
			}
			if diff := cmp.Diff(want, tree(t, dst)); diff != "" {
				t.Errorf("tree diff -want +got:\n%s", diff)
			}
			if st.Hardlinks != 1 || st.Symlinks != 1 || st.Files != 2 {
				t.Errorf("stats=%s; want 2 files, 1 symlink, 1 hardlink", st)
			}
		})
	}
}

func TestExtract_NoPrefix(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "a.tar.gz")
	writeTar(t, fname, TarGzip, []entry{
		{name: "./README", mode: 0644, content: "hi"},
	})
	dst := filepath.Join(tmp, "out")
	_, err := Extract(ctx, osfs.New("test", osfs.Option{}), fname, dst, "")
	if err != nil {
		t.Fatalf("Extract=%v; want nil", err)
	}
	buf, err := os.ReadFile(filepath.Join(dst, "README"))
	if err != nil || string(buf) != "hi" {
		t.Errorf("README=%q, %v; want hi", buf, err)
	}
}

func TestExtract_UnsafePath(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"../evil", "ndk/../../evil"} {
		t.Run(name, func(t *testing.T) {
			tmp := t.TempDir()
			fname := filepath.Join(tmp, "evil.zip")
			writeZip(t, fname, []entry{{name: name, mode: 0644, content: "x"}})
			_, err := Extract(ctx, osfs.New("test", osfs.Option{}), fname, filepath.Join(tmp, "out"), "")
			if err == nil {
				t.Errorf("Extract=nil; want unsafe path error")
			}
			if _, err := os.Lstat(filepath.Join(tmp, "evil")); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("evil file exists: %v", err)
			}
		})
	}
}

func TestExtract_UnsafeSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	ctx := context.Background()
	for _, tc := range []struct {
		name    string
		entries func(outside string) []entry
	}{
		{
			name: "absolute-target",
			entries: func(outside string) []entry {
				return []entry{
					{name: "ndk/link", mode: fs.ModeSymlink | 0777, linkname: outside},
					{name: "ndk/link/escaped.txt", mode: 0644, content: "escaped"},
				}
			},
		},
		{
			name: "relative-target",
			entries: func(string) []entry {
				return []entry{
					{name: "ndk/bin/link", mode: fs.ModeSymlink | 0777, linkname: "../../outside"},
					{name: "ndk/bin/link/escaped.txt", mode: 0644, content: "escaped"},
				}
			},
		},
		{
			name: "write-through-local-symlink",
			entries: func(string) []entry {
				return []entry{
					{name: "ndk/lib/", mode: fs.ModeDir | 0755},
					{name: "ndk/lib64", mode: fs.ModeSymlink | 0777, linkname: "lib"},
					{name: "ndk/lib64/libc++.so", mode: 0644, content: "escaped"},
				}
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tmp := t.TempDir()
			outside := filepath.Join(tmp, "outside")
			if err := os.Mkdir(outside, 0755); err != nil {
				t.Fatal(err)
			}
			fname := filepath.Join(tmp, "ndk.tar")
			writeTar(t, fname, Tar, tc.entries(outside))
			dst := filepath.Join(tmp, "out")
			_, err := Extract(ctx, osfs.New("test", osfs.Option{}), fname, dst, "ndk")
			var uerr *UnsafePathError
			if !errors.As(err, &uerr) {
				t.Errorf("Extract=%v; want UnsafePathError", err)
			}
			if _, err := os.Lstat(filepath.Join(outside, "escaped.txt")); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("outside/escaped.txt exists: %v", err)
			}
			if _, err := os.Lstat(filepath.Join(dst, "lib", "libc++.so")); !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("lib/libc++.so exists: %v", err)
			}
		})
	}
}

func TestExtract_UnknownFormat(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()
	fname := filepath.Join(tmp, "ndk.dmg")
	if err := os.WriteFile(fname, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Extract(ctx, osfs.New("test", osfs.Option{}), fname, filepath.Join(tmp, "out"), "")
	if err == nil {
		t.Errorf("Extract(%q)=nil; want error", fname)
	}
}

func TestExtractorTarget(t *testing.T) {
	x := &extractor{archive: "ndk.zip", dst: "/out", prefix: "android-ndk-r25c/"}
	for _, tc := range []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "android-ndk-r25c/", want: ""},
		{name: "android-ndk-r25c", want: ""},
		{name: "android-ndk-r25c/bin/clang", want: filepath.Join("/out", "bin", "clang")},
		{name: "./android-ndk-r25c/bin/", want: filepath.Join("/out", "bin")},
		{name: "other/bin/clang", want: ""},
		{name: "android-ndk-r25c/../../etc/passwd", wantErr: true},
	} {
		got, err := x.target(tc.name)
		if tc.wantErr {
			var uerr *UnsafePathError
			if !errors.As(err, &uerr) {
				t.Errorf("target(%q)=%q, %v; want UnsafePathError", tc.name, got, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("target(%q)=%q, %v; want %q, nil", tc.name, got, err, tc.want)
		}
	}
}
