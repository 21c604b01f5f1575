// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui_test

import (
	"testing"

	"go.chromium.org/infra/build/ndkpkg/ui"
)

func TestStripANSIEscapeCodes(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want string
	}{
		{
			name: "truncated",
			in:   "extracting android-ndk-r25c-linux.zip\033[",
			want: "extracting android-ndk-r25c-linux.zip",
		},
		{
			name: "spinner-line",
			in:   "\r\033[K 1.23s downloading android-ndk-r25c-linux.zip 12.3MiB/531.2MiB",
			want: "\r 1.23s downloading android-ndk-r25c-linux.zip 12.3MiB/531.2MiB",
		},
		{
			name: "spinner-failed",
			in:   "\r\033[K 0.52s downloading android-ndk-r99-linux.zip " + ui.Red.String() + "failed" + ui.Reset.String() + " 404 Not Found",
			want: "\r 0.52s downloading android-ndk-r99-linux.zip failed 404 Not Found",
		},
		{
			name: "installed",
			in:   ui.Green.String() + "installed" + ui.Reset.String() + " android-ndk/r25c for android-armv8-24 in 1m02.50s",
			want: "installed android-ndk/r25c for android-armv8-24 in 1m02.50s",
		},
		{
			name: "error",
			in:   ui.BackgroundRed.String() + "Error:" + ui.Reset.String() + " invalid api level: api_level=\"19\": minimum supported api level is 21",
			want: "Error: invalid api level: api_level=\"19\": minimum supported api level is 21",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ui.StripANSIEscapeCodes(tc.in)
			if got != tc.want {
				t.Errorf("ui.StripANSIEscapeCodes(%q)=%q; want=%q", tc.in, got, tc.want)
			}
		})
	}
}
