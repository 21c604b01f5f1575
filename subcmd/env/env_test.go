// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package env

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const profile = `
[settings]
os = "Linux"
arch = "x86_64"

[settings_target]
os = "Android"
arch = "x86_64"
api_level = 21

[settings_target.compiler]
name = "clang"
version = "14"
libcxx = "c++_shared"
`

func newRun(t *testing.T, args ...string) *run {
	t.Helper()
	t.Setenv("NDKPKG_PROFILE", "")
	fname := filepath.Join(t.TempDir(), "profile.toml")
	if err := os.WriteFile(fname, []byte(profile), 0644); err != nil {
		t.Fatal(err)
	}
	c := &run{}
	c.init()
	if err := c.Flags.Parse(append([]string{"-profile", fname}, args...)); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "android-ndk")
	for _, tc := range []struct {
		format string
		want   []string
	}{
		{
			format: "sh",
			want: []string{
				"export NDK_ROOT='" + root + "'\n",
				"export CHOST='x86_64-linux-android'\n",
				"export ANDROID_ABI='x86_64'\n",
				"export ANDROID_PLATFORM='android-21'\n",
			},
		},
		{
			format: "bat",
			want: []string{
				`set "NDK_ROOT=` + root + "\"\r\n",
				`set "ANDROID_STL=c++_shared"` + "\r\n",
			},
		},
		{
			format: "json",
			want: []string{
				`"NDK_ROOT"`,
				`"tools.android:ndk_path"`,
			},
		},
	} {
		t.Run(tc.format, func(t *testing.T) {
			c := newRun(t, "-root", root, "-format", tc.format)
			var buf bytes.Buffer
			err := c.run(ctx, &buf)
			if err != nil {
				t.Fatalf("run=%v; want nil", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output=%q; want to contain %q", buf.String(), w)
				}
			}
		})
	}
}

func TestRun_BadFormat(t *testing.T) {
	ctx := context.Background()
	c := newRun(t, "-format", "fish")
	var buf bytes.Buffer
	err := c.run(ctx, &buf)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("run=%v; want flag.ErrHelp", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output=%q; want empty", buf.String())
	}
}
