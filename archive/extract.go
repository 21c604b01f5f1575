// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package archive

import (
	"archive/tar"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

// Format is an archive format.
type Format int

const (
	UnknownFormat Format = iota
	Zip
	Tar
	TarGzip
	TarXz
	TarZstd
	TarBzip2
)

func (f Format) String() string {
	switch f {
	case Zip:
		return "zip"
	case Tar:
		return "tar"
	case TarGzip:
		return "tar.gz"
	case TarXz:
		return "tar.xz"
	case TarZstd:
		return "tar.zst"
	case TarBzip2:
		return "tar.bz2"
	}
	return "unknown"
}

var suffixes = []struct {
	suffix string
	format Format
}{
	{".zip", Zip},
	{".tar.gz", TarGzip},
	{".tgz", TarGzip},
	{".tar.xz", TarXz},
	{".txz", TarXz},
	{".tar.zst", TarZstd},
	{".tar.bz2", TarBzip2},
	{".tbz2", TarBzip2},
	{".tar", Tar},
}

// FormatOf returns the format of the archive file name.
func FormatOf(name string) Format {
	name = strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.format
		}
	}
	return UnknownFormat
}

// UnsafePathError is an error of an archive entry that would be
// extracted outside of the destination directory, or that would
// make a later entry do so.
type UnsafePathError struct {
	Archive string
	Name    string
	// Reason is empty when Name itself is not local.
	Reason string
}

func (e *UnsafePathError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: unsafe path %q: %s", e.Archive, e.Name, e.Reason)
	}
	return fmt.Sprintf("%s: unsafe path %q", e.Archive, e.Name)
}

// Stats is the result of Extract.
type Stats struct {
	Files     int
	Dirs      int
	Symlinks  int
	Hardlinks int
	// Skipped counts entries outside of the strip prefix or of
	// unsupported types.
	Skipped int
	Bytes   int64
}

func (s Stats) String() string {
	return fmt.Sprintf("files=%d dirs=%d symlinks=%d hardlinks=%d skipped=%d bytes=%d", s.Files, s.Dirs, s.Symlinks, s.Hardlinks, s.Skipped, s.Bytes)
}

// Extract extracts the archive fname into dst.
//
// Entries are expected under stripPrefix, which is removed from their
// names; other entries are skipped. An empty stripPrefix extracts every
// entry as is. Symlinks and permission bits are preserved where the
// format carries them.
func Extract(ctx context.Context, fsys *osfs.OSFS, fname, dst, stripPrefix string) (Stats, error) {
	format := FormatOf(fname)
	if stripPrefix != "" {
		stripPrefix = path.Clean(stripPrefix) + "/"
	}
	x := &extractor{
		fs:      fsys,
		archive: fname,
		dst:     dst,
		prefix:  stripPrefix,
		dirs:    make(map[string]bool),
	}
	err := fsys.MkdirAll(ctx, dst, 0755)
	if err != nil {
		return x.stats, err
	}
	log.Infof("extract %s (%s) to %s", fname, format, dst)
	switch format {
	case Zip:
		err = x.zip(ctx)
	case UnknownFormat:
		err = fmt.Errorf("unknown archive format: %s", fname)
	default:
		err = x.tar(ctx, format)
	}
	if err != nil {
		return x.stats, fmt.Errorf("failed to extract %s: %w", fname, err)
	}
	log.Infof("extracted %s: %s", fname, x.stats)
	return x.stats, nil
}

type extractor struct {
	fs      *osfs.OSFS
	archive string
	dst     string
	prefix  string
	stats   Stats

	// dirs are the directories under dst known not to be symlinks.
	dirs map[string]bool
}

// target returns the destination path of the archive entry name.
// It returns "" for entries to skip.
func (x *extractor) target(name string) (string, error) {
	name = strings.TrimPrefix(name, "./")
	if x.prefix != "" {
		if name+"/" == x.prefix || name == x.prefix {
			return "", nil
		}
		if !strings.HasPrefix(name, x.prefix) {
			log.Debugf("skip %s: not under %s", name, x.prefix)
			x.stats.Skipped++
			return "", nil
		}
		name = strings.TrimPrefix(name, x.prefix)
	}
	name = strings.TrimSuffix(name, "/")
	if name == "" || name == "." {
		return "", nil
	}
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", &UnsafePathError{Archive: x.archive, Name: name}
	}
	return filepath.Join(x.dst, rel), nil
}

// rel returns fname relative to dst in slash form.
func (x *extractor) rel(fname string) string {
	rel, err := filepath.Rel(x.dst, fname)
	if err != nil {
		return fname
	}
	return filepath.ToSlash(rel)
}

// checkParents fails if any existing parent of fname under dst is a
// symlink, so no entry is written through a symlink extracted earlier.
func (x *extractor) checkParents(ctx context.Context, fname string) error {
	dir := filepath.Dir(fname)
	rel, err := filepath.Rel(x.dst, dir)
	if err != nil {
		return err
	}
	if rel == "." {
		return nil
	}
	p := x.dst
	for _, elem := range strings.Split(rel, string(filepath.Separator)) {
		p = filepath.Join(p, elem)
		if x.dirs[p] {
			continue
		}
		fi, err := x.fs.Lstat(ctx, p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			return &UnsafePathError{
				Archive: x.archive,
				Name:    x.rel(fname),
				Reason:  fmt.Sprintf("parent %s is a symlink", x.rel(p)),
			}
		}
		if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", p)
		}
		x.dirs[p] = true
	}
	return nil
}

// mkdirParent creates the parent directory of fname after checkParents.
func (x *extractor) mkdirParent(ctx context.Context, fname string) error {
	err := x.checkParents(ctx, fname)
	if err != nil {
		return err
	}
	return x.fs.MkdirAll(ctx, filepath.Dir(fname), 0755)
}

// clear removes a non-directory at fname, so a later entry replaces
// an earlier one and never writes through a symlink.
func (x *extractor) clear(ctx context.Context, fname string) error {
	fi, err := x.fs.Lstat(ctx, fname)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", fname)
	}
	return x.fs.Remove(ctx, fname)
}

func (x *extractor) dir(ctx context.Context, fname string) error {
	err := x.checkParents(ctx, fname)
	if err != nil {
		return err
	}
	fi, err := x.fs.Lstat(ctx, fname)
	if err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		return &UnsafePathError{
			Archive: x.archive,
			Name:    x.rel(fname),
			Reason:  "directory entry over a symlink",
		}
	}
	x.stats.Dirs++
	return x.fs.MkdirAll(ctx, fname, 0755)
}

func (x *extractor) file(ctx context.Context, fname string, mode fs.FileMode, r io.Reader) error {
	err := x.mkdirParent(ctx, fname)
	if err != nil {
		return err
	}
	err = x.clear(ctx, fname)
	if err != nil {
		return err
	}
	if mode == 0 {
		mode = 0644
	}
	w, err := x.fs.Create(ctx, fname, mode)
	if err != nil {
		return err
	}
	n, err := io.Copy(w, r)
	cerr := w.Close()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", fname, err)
	}
	if cerr != nil {
		return cerr
	}
	x.stats.Files++
	x.stats.Bytes += n
	return nil
}

func (x *extractor) symlink(ctx context.Context, fname, linkname string) error {
	if linkname == "" {
		return fmt.Errorf("empty symlink target for %s", fname)
	}
	link := filepath.FromSlash(linkname)
	if filepath.IsAbs(link) || strings.HasPrefix(linkname, "/") || !filepath.IsLocal(filepath.Join(filepath.Dir(x.rel(fname)), link)) {
		return &UnsafePathError{
			Archive: x.archive,
			Name:    x.rel(fname),
			Reason:  fmt.Sprintf("symlink to %s", linkname),
		}
	}
	err := x.mkdirParent(ctx, fname)
	if err != nil {
		return err
	}
	err = x.clear(ctx, fname)
	if err != nil {
		return err
	}
	err = x.fs.Symlink(ctx, linkname, fname)
	if err != nil {
		return err
	}
	x.stats.Symlinks++
	return nil
}

func (x *extractor) hardlink(ctx context.Context, fname, oldname string) error {
	err := x.checkParents(ctx, oldname)
	if err != nil {
		return err
	}
	err = x.mkdirParent(ctx, fname)
	if err != nil {
		return err
	}
	err = x.clear(ctx, fname)
	if err != nil {
		return err
	}
	err = x.fs.Link(ctx, oldname, fname)
	if err != nil {
		return err
	}
	x.stats.Hardlinks++
	return nil
}

func (x *extractor) zip(ctx context.Context) error {
	zr, err := zip.OpenReader(x.archive)
	if err != nil {
		return err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		fname, err := x.target(f.Name)
		if err != nil {
			return err
		}
		if fname == "" {
			continue
		}
		mode := f.Mode()
		switch {
		case mode.IsDir():
			err = x.dir(ctx, fname)
		case mode&fs.ModeSymlink != 0:
			err = x.zipSymlink(ctx, f, fname)
		case mode.IsRegular():
			err = x.zipFile(ctx, f, fname)
		default:
			log.Debugf("skip %s: mode %s", f.Name, mode)
			x.stats.Skipped++
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (x *extractor) zipFile(ctx context.Context, f *zip.File, fname string) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return x.file(ctx, fname, f.Mode().Perm(), r)
}

func (x *extractor) zipSymlink(ctx context.Context, f *zip.File, fname string) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return x.symlink(ctx, fname, string(buf))
}

func decompressor(format Format, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case Tar:
		return io.NopCloser(r), nil
	case TarGzip:
		return gzip.NewReader(r)
	case TarXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case TarZstd:
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case TarBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	}
	return nil, fmt.Errorf("not a tar format: %s", format)
}

func (x *extractor) tar(ctx context.Context, format Format) error {
	f, err := x.fs.Open(ctx, x.archive)
	if err != nil {
		return err
	}
	defer f.Close()
	r, err := decompressor(format, f)
	if err != nil {
		return err
	}
	defer r.Close()
	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fname, err := x.target(hdr.Name)
		if err != nil {
			return err
		}
		if fname == "" {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			err = x.dir(ctx, fname)
		case tar.TypeReg:
			err = x.file(ctx, fname, hdr.FileInfo().Mode().Perm(), tr)
		case tar.TypeSymlink:
			err = x.symlink(ctx, fname, hdr.Linkname)
		case tar.TypeLink:
			var oldname string
			oldname, err = x.target(hdr.Linkname)
			if err != nil {
				return err
			}
			if oldname == "" {
				return fmt.Errorf("hardlink %s to %s outside of %s", hdr.Name, hdr.Linkname, x.prefix)
			}
			err = x.hardlink(ctx, fname, oldname)
		default:
			log.Debugf("skip %s: type %c", hdr.Name, hdr.Typeflag)
			x.stats.Skipped++
		}
		if err != nil {
			return err
		}
	}
}
