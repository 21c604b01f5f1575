// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/xattr"

	"go.chromium.org/infra/build/ndkpkg/o11y/iometrics"
)

// defaultDigestXattr is default xattr for sha256 digest of downloaded archives.
const defaultDigestXattr = "user.ndkpkg.sha256"

const slowThreshold = 1 * time.Minute

// OSFS provides OS Filesystem access.
// It counts metrics by iometrics.
type OSFS struct {
	*iometrics.IOMetrics

	digestXattrName string
}

// Option is an option for osfs.
type Option struct {
	// DigestXattrName is xattr name for digest.
	// When it is set, digests of verified downloads are cached in the xattr.
	DigestXattrName string
}

// RegisterFlags registers flags for the option.
func (o *Option) RegisterFlags(flagSet *flag.FlagSet) {
	var xattrname string
	if xattr.XATTR_SUPPORTED {
		xattrname = defaultDigestXattr
	}
	flagSet.StringVar(&o.DigestXattrName, "fs_digest_xattr", xattrname, "xattr for sha256 digest of downloaded archives. empty disables the cache")
}

// New creates new OSFS.
func New(name string, opt Option) *OSFS {
	if !xattr.XATTR_SUPPORTED {
		opt.DigestXattrName = ""
	}
	if opt.DigestXattrName != "" {
		log.Debugf("use xattr %s for file digest", opt.DigestXattrName)
	}
	return &OSFS{
		IOMetrics:       iometrics.New(name),
		digestXattrName: opt.DigestXattrName,
	}
}

func logSlow(name string, dur time.Duration, err error) {
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	log.Warnf("slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

func checkSlow(name string, started time.Time, err error) {
	if dur := time.Since(started); dur > slowThreshold {
		logSlow(name, dur, err)
	}
}

// Chmod changes the mode of the named file to mode.
func (ofs *OSFS) Chmod(ctx context.Context, name string, mode fs.FileMode) error {
	started := time.Now()
	err := os.Chmod(name, mode)
	ofs.ChmodDone(err)
	checkSlow(name, started, err)
	return err
}

// Lstat returns a FileInfo describing the named file.
func (ofs *OSFS) Lstat(ctx context.Context, fname string) (fs.FileInfo, error) {
	started := time.Now()
	fi, err := os.Lstat(fname)
	ofs.OpsDone(err)
	checkSlow(fname, started, err)
	return fi, err
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (ofs *OSFS) MkdirAll(ctx context.Context, dirname string, perm fs.FileMode) error {
	started := time.Now()
	err := os.MkdirAll(dirname, perm)
	ofs.OpsDone(err)
	checkSlow(dirname, started, err)
	return err
}

// Readlink returns the destination of the named symbolic link.
func (ofs *OSFS) Readlink(ctx context.Context, name string) (string, error) {
	started := time.Now()
	target, err := os.Readlink(name)
	ofs.OpsDone(err)
	checkSlow(name, started, err)
	return target, err
}

// Symlink creates newname as a symbolic link to oldname.
func (ofs *OSFS) Symlink(ctx context.Context, oldname, newname string) error {
	started := time.Now()
	err := os.Symlink(oldname, newname)
	ofs.OpsDone(err)
	checkSlow(newname, started, err)
	return err
}

// Link creates newname as a hard link to oldname.
func (ofs *OSFS) Link(ctx context.Context, oldname, newname string) error {
	started := time.Now()
	err := os.Link(oldname, newname)
	ofs.OpsDone(err)
	checkSlow(newname, started, err)
	return err
}

// Rename renames oldpath to newpath.
func (ofs *OSFS) Rename(ctx context.Context, oldpath, newpath string) error {
	started := time.Now()
	err := os.Rename(oldpath, newpath)
	ofs.OpsDone(err)
	checkSlow(newpath, started, err)
	return err
}

// Remove removes the named file or empty directory.
func (ofs *OSFS) Remove(ctx context.Context, name string) error {
	started := time.Now()
	err := os.Remove(name)
	ofs.OpsDone(err)
	checkSlow(name, started, err)
	return err
}

// RemoveAll removes path and any children it contains.
func (ofs *OSFS) RemoveAll(ctx context.Context, path string) error {
	started := time.Now()
	err := os.RemoveAll(path)
	ofs.OpsDone(err)
	checkSlow(path, started, err)
	return err
}

// Open opens the named file for reading.
func (ofs *OSFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		ofs.ReadDone(0, err)
		return nil, err
	}
	return &file{file: f, started: time.Now(), fs: ofs}, nil
}

// Create creates or truncates the named file with perm for writing.
func (ofs *OSFS) Create(ctx context.Context, name string, perm fs.FileMode) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		ofs.WriteDone(0, err)
		return nil, err
	}
	return &file{file: f, started: time.Now(), fs: ofs, write: true}, nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (ofs *OSFS) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	started := time.Now()
	err := os.WriteFile(name, data, perm)
	ofs.WriteDone(len(data), err)
	checkSlow(name, started, err)
	return err
}

// ReadHeader reads up to n leading bytes of the named file.
// It returns fewer bytes for files shorter than n.
func (ofs *OSFS) ReadHeader(ctx context.Context, name string, n int) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		ofs.ReadDone(0, err)
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, n)
	m, err := io.ReadFull(f, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		err = nil
	}
	ofs.ReadDone(m, err)
	return buf[:m], err
}

// FileDigestFromXattr returns the sha256 digest cached in the file's xattr.
func (ofs *OSFS) FileDigestFromXattr(ctx context.Context, name string) (string, error) {
	if ofs.digestXattrName == "" {
		return "", errors.ErrUnsupported
	}
	d, err := xattr.Get(name, ofs.digestXattrName)
	ofs.OpsDone(err)
	if err != nil {
		return "", err
	}
	return string(d), nil
}

// SetFileDigestXattr caches the sha256 digest in the file's xattr.
func (ofs *OSFS) SetFileDigestXattr(ctx context.Context, name, digest string) error {
	if ofs.digestXattrName == "" {
		return nil
	}
	err := xattr.Set(name, ofs.digestXattrName, []byte(digest))
	ofs.OpsDone(err)
	if err != nil {
		return fmt.Errorf("failed to set xattr %s on %s: %w", ofs.digestXattrName, name, err)
	}
	return nil
}

type file struct {
	file    *os.File
	started time.Time
	fs      *OSFS
	write   bool
	n       int
}

func (f *file) Read(buf []byte) (int, error) {
	n, err := f.file.Read(buf)
	f.n += n
	return n, err
}

func (f *file) Write(buf []byte) (int, error) {
	n, err := f.file.Write(buf)
	f.n += n
	return n, err
}

func (f *file) Close() error {
	name := f.file.Name()
	err := f.file.Close()
	if f.write {
		f.fs.WriteDone(f.n, err)
	} else {
		f.fs.ReadDone(f.n, err)
	}
	checkSlow(name, f.started, err)
	return err
}
