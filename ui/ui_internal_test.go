// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import "testing"

func TestElideMiddle(t *testing.T) {
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{
			msg:   "downloading https://dl.google.com/android/repository/android-ndk-r25c-linux.zip",
			width: 40,
			want:  "downloading https:...ndk-r25c-linux.zip",
		},
		{
			msg:   "extract: files:\033[32m1234\033[0m symlinks:\033[32m56\033[0m",
			width: 80,
			want:  "extract: files:\033[32m1234\033[0m symlinks:\033[32m56\033[0m",
		},
		{
			msg:   "extract: files:\033[32m1234\033[0m symlinks:\033[32m56\033[0m",
			width: 20,
			want:  "extract:...links:\033[32m56\033[0m",
		},
	} {
		got := elideMiddle(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("elideMiddle(%q, %d)=%q; want %q", tc.msg, tc.width, got, tc.want)
		}
	}
}

func TestFitWidth(t *testing.T) {
	msg := "downloading https://dl.google.com/android/repository/android-ndk-r25c-linux.zip"
	for _, tc := range []struct {
		msg   string
		width int
		want  string
	}{
		{msg: msg, width: 0, want: msg},
		{msg: msg, width: 200, want: msg},
		{msg: msg, width: 40, want: "downloading https:...ndk-r25c-linux.zip"},
		{msg: "a\n" + msg, width: 40, want: "a\n" + msg},
	} {
		got := fitWidth(tc.msg, tc.width)
		if got != tc.want {
			t.Errorf("fitWidth(%q, %d)=%q; want %q", tc.msg, tc.width, got, tc.want)
		}
	}
}
