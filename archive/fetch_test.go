// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

func serve(t *testing.T, content []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/android-ndk-r25c-linux.zip" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		if r.Method == http.MethodHead {
			return
		}
		hits.Add(1)
		w.Write(content)
	}))
	t.Cleanup(s.Close)
	return s, &hits
}

func sha256hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	content := []byte("PK\x03\x04 pretend this is an ndk")
	s, hits := serve(t, content)
	dir := t.TempDir()

	var lastWritten, lastTotal int64
	f := &Fetcher{
		Client: s.Client(),
		FS:     osfs.New("test", osfs.Option{}),
		Progress: func(written, total int64) {
			lastWritten, lastTotal = written, total
		},
	}
	url := s.URL + "/android-ndk-r25c-linux.zip?download=1"
	fname, err := f.Fetch(ctx, url, sha256hex(content), dir)
	if err != nil {
		t.Fatalf("Fetch=%v; want nil", err)
	}
	if want := filepath.Join(dir, "android-ndk-r25c-linux.zip"); fname != want {
		t.Errorf("Fetch=%q; want %q", fname, want)
	}
	got, err := os.ReadFile(fname)
	if err != nil || string(got) != string(content) {
		t.Errorf("downloaded %q, %v; want %q", got, err, content)
	}
	if lastWritten != int64(len(content)) || lastTotal != int64(len(content)) {
		t.Errorf("progress=%d/%d; want %d/%d", lastWritten, lastTotal, len(content), len(content))
	}

	// verified file is reused.
	_, err = f.Fetch(ctx, url, sha256hex(content), dir)
	if err != nil {
		t.Fatalf("Fetch again=%v; want nil", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits=%d; want 1", n)
	}

	// without digest, a file of the served size is reused.
	_, err = f.Fetch(ctx, url, "", dir)
	if err != nil {
		t.Fatalf("Fetch without digest=%v; want nil", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits=%d; want 1", n)
	}

	// without digest, a file of another size is downloaded again.
	if err := os.WriteFile(fname, []byte("PK"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = f.Fetch(ctx, url, "", dir)
	if err != nil {
		t.Fatalf("Fetch truncated without digest=%v; want nil", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits=%d; want 2", n)
	}
	got, err = os.ReadFile(fname)
	if err != nil || string(got) != string(content) {
		t.Errorf("downloaded %q, %v; want %q", got, err, content)
	}
	st := f.FS.Stats()
	if st.Downloads != 2 || st.DownloadBytes != 2*int64(len(content)) {
		t.Errorf("downloads=%d/%dB; want 2/%dB", st.Downloads, st.DownloadBytes, 2*len(content))
	}
}

func TestFetch_DigestMismatch(t *testing.T) {
	ctx := context.Background()
	s, _ := serve(t, []byte("tampered"))
	dir := t.TempDir()
	f := &Fetcher{Client: s.Client(), FS: osfs.New("test", osfs.Option{})}
	want := sha256hex([]byte("original"))
	_, err := f.Fetch(ctx, s.URL+"/android-ndk-r25c-linux.zip", want, dir)
	var derr *DigestMismatchError
	if !errors.As(err, &derr) {
		t.Fatalf("Fetch=%v; want DigestMismatchError", err)
	}
	if derr.Want != want || derr.Got != sha256hex([]byte("tampered")) {
		t.Errorf("DigestMismatchError=%+v", derr)
	}
	for _, name := range []string{"android-ndk-r25c-linux.zip", "android-ndk-r25c-linux.zip.part"} {
		_, err := os.Lstat(filepath.Join(dir, name))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Lstat(%q)=%v; want not exist", name, err)
		}
	}
}

func TestFetch_NotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := serve(t, nil)
	f := &Fetcher{Client: s.Client(), FS: osfs.New("test", osfs.Option{})}
	_, err := f.Fetch(ctx, s.URL+"/android-ndk-r99-linux.zip", "", t.TempDir())
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusNotFound {
		t.Errorf("Fetch=%v; want StatusError 404", err)
	}
}

func TestFetch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := serve(t, []byte("x"))
	f := &Fetcher{Client: s.Client(), FS: osfs.New("test", osfs.Option{})}
	_, err := f.Fetch(ctx, s.URL+"/android-ndk-r25c-linux.zip", "", t.TempDir())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch=%v; want context.Canceled", err)
	}
}
