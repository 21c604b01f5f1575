// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package archive downloads and extracts NDK archives.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

// DigestMismatchError is an error when a downloaded archive does not
// match the expected sha256 digest.
type DigestMismatchError struct {
	URL  string
	Want string
	Got  string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("sha256 mismatch for %s: want %s, got %s", e.URL, e.Want, e.Got)
}

// StatusError is an error of a non-200 HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to download %s: %s", e.URL, e.Status)
}

// Fetcher downloads archives into a local directory.
type Fetcher struct {
	// Client is the HTTP client. http.DefaultClient if nil.
	Client *http.Client
	// FS is used for file access and the digest cache.
	FS *osfs.OSFS
	// Progress is called with the number of bytes written so far and
	// the total size (-1 if unknown). It may be nil.
	Progress func(written, total int64)
}

// Fetch downloads url into dir and returns the path of the archive.
//
// When want (hex sha256) is not empty, the download is verified against
// it, and an existing file whose cached or computed digest matches is
// used without downloading. Without want, an existing file is used when
// its size matches the Content-Length of a HEAD request to url.
// The file is written as <name>.part and renamed once complete, so a
// failed download never leaves a file at the returned path.
func (f *Fetcher) Fetch(ctx context.Context, url, want, dir string) (string, error) {
	want = strings.ToLower(want)
	base := filenameOf(url)
	if base == "" || base == "." || base == ".." {
		return "", fmt.Errorf("no file name in url %q", url)
	}
	fname := filepath.Join(dir, base)
	if want != "" {
		ok, err := f.cached(ctx, fname, want)
		if err != nil {
			return "", err
		}
		if ok {
			log.Infof("use cached %s", fname)
			return fname, nil
		}
	} else {
		ok, err := f.sameSize(ctx, url, fname)
		if err != nil {
			log.Warnf("check %s: %v", fname, err)
		}
		if ok {
			log.Infof("use cached %s (no sha256 pinned, size matches)", fname)
			return fname, nil
		}
	}
	err := f.FS.MkdirAll(ctx, dir, 0755)
	if err != nil {
		return "", err
	}
	got, err := f.download(ctx, url, fname+".part")
	if err != nil {
		return "", err
	}
	if want != "" && got != want {
		rerr := f.FS.Remove(ctx, fname+".part")
		if rerr != nil {
			log.Warnf("failed to remove %s.part: %v", fname, rerr)
		}
		return "", &DigestMismatchError{URL: url, Want: want, Got: got}
	}
	err = f.FS.Rename(ctx, fname+".part", fname)
	if err != nil {
		return "", err
	}
	err = f.FS.SetFileDigestXattr(ctx, fname, got)
	if err != nil {
		log.Warnf("digest cache: %v", err)
	}
	log.Infof("downloaded %s sha256:%s", fname, got)
	return fname, nil
}

// filenameOf returns the last path element of url without query.
func filenameOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return url[strings.LastIndex(url, "/")+1:]
}

func (f *Fetcher) cached(ctx context.Context, fname, want string) (bool, error) {
	fi, err := f.FS.Lstat(ctx, fname)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !fi.Mode().IsRegular() {
		return false, nil
	}
	d, err := f.FS.FileDigestFromXattr(ctx, fname)
	if err == nil {
		return d == want, nil
	}
	log.Debugf("no digest cache for %s: %v", fname, err)
	d, err = f.digest(ctx, fname)
	if err != nil {
		return false, err
	}
	if d != want {
		log.Infof("%s sha256:%s; want %s. download again", fname, d, want)
		return false, nil
	}
	err = f.FS.SetFileDigestXattr(ctx, fname, d)
	if err != nil {
		log.Warnf("digest cache: %v", err)
	}
	return true, nil
}

// sameSize reports whether fname exists and has the size the server
// reports for url.
func (f *Fetcher) sameSize(ctx context.Context, url, fname string) (bool, error) {
	fi, err := f.FS.Lstat(ctx, fname)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !fi.Mode().IsRegular() {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := f.client().Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if resp.ContentLength < 0 {
		log.Infof("%s: unknown size. download again", url)
		return false, nil
	}
	if resp.ContentLength != fi.Size() {
		log.Infof("%s size=%d; want %d. download again", fname, fi.Size(), resp.ContentLength)
		return false, nil
	}
	return true, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func (f *Fetcher) digest(ctx context.Context, fname string) (string, error) {
	r, err := f.FS.Open(ctx, fname)
	if err != nil {
		return "", err
	}
	defer r.Close()
	h := sha256.New()
	_, err = io.Copy(h, r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", fname, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (f *Fetcher) download(ctx context.Context, url, fname string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	started := time.Now()
	resp, err := f.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	w, err := f.FS.Create(ctx, fname, 0644)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	pw := &progressWriter{total: resp.ContentLength, progress: f.Progress}
	n, err := io.Copy(io.MultiWriter(w, h, pw), resp.Body)
	f.FS.DownloadDone(n, err)
	cerr := w.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		rerr := f.FS.Remove(ctx, fname)
		if rerr != nil {
			log.Warnf("failed to remove %s: %v", fname, rerr)
		}
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	log.Infof("download %s: %d bytes in %s", url, n, time.Since(started))
	return hex.EncodeToString(h.Sum(nil)), nil
}

type progressWriter struct {
	written  int64
	total    int64
	progress func(written, total int64)
}

func (p *progressWriter) Write(buf []byte) (int, error) {
	p.written += int64(len(buf))
	if p.progress != nil {
		p.progress(p.written, p.total)
	}
	return len(buf), nil
}
