// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package iometrics

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIOMetrics(t *testing.T) {
	m := New("test")
	m.OpsDone(nil)
	m.OpsDone(errors.New("lstat"))
	m.ChmodDone(nil)
	m.ChmodDone(errors.New("chmod"))
	m.ReadDone(4, nil)
	m.WriteDone(10, nil)
	m.WriteDone(2, errors.New("write"))
	m.DownloadDone(1<<20, nil)

	want := Stats{
		Ops:     4,
		OpsErrs: 2,
		Chmods:  1,
		ROps:    1,
		RBytes:  4,
		WOps:    2,
		WBytes:  12,
		WErrs:   1,

		Downloads:     1,
		DownloadBytes: 1 << 20,
	}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Errorf("Stats diff -want +got:\n%s", diff)
	}
}

func TestIOMetrics_Nil(t *testing.T) {
	var m *IOMetrics
	m.OpsDone(nil)
	m.ChmodDone(nil)
	m.ReadDone(1, nil)
	m.WriteDone(1, nil)
	m.DownloadDone(1, nil)
	if got := m.Stats(); got != (Stats{}) {
		t.Errorf("nil Stats=%v; want zero", got)
	}
	if got := m.Name(); got != "<nil>" {
		t.Errorf("nil Name=%q; want <nil>", got)
	}
}

func TestIOMetrics_Concurrent(t *testing.T) {
	m := New("test")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.ReadDone(2, nil)
			}
		}()
	}
	wg.Wait()
	st := m.Stats()
	if st.ROps != 800 || st.RBytes != 1600 {
		t.Errorf("reads=%d/%dB; want 800/1600B", st.ROps, st.RBytes)
	}
}
