// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics counts filesystem and network I/O of an install.
package iometrics

import (
	"fmt"
	"sync/atomic"
)

type counter struct {
	ops   atomic.Int64
	bytes atomic.Int64
	errs  atomic.Int64
}

func (c *counter) done(n int64, err error) {
	c.ops.Add(1)
	c.bytes.Add(n)
	if err != nil {
		c.errs.Add(1)
	}
}

// IOMetrics holds I/O metrics. It is safe for concurrent use.
// A nil *IOMetrics is valid and counts nothing.
type IOMetrics struct {
	name string

	ops       counter
	chmods    atomic.Int64
	reads     counter
	writes    counter
	downloads counter
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// OpsDone counts a metadata operation such as lstat, mkdir or symlink.
func (m *IOMetrics) OpsDone(err error) {
	if m == nil {
		return
	}
	m.ops.done(0, err)
}

// ChmodDone counts a chmod. It is also counted as an op.
func (m *IOMetrics) ChmodDone(err error) {
	if m == nil {
		return
	}
	m.ops.done(0, err)
	if err == nil {
		m.chmods.Add(1)
	}
}

// ReadDone counts a read of n bytes.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.reads.done(int64(n), err)
}

// WriteDone counts a write of n bytes.
func (m *IOMetrics) WriteDone(n int, err error) {
	if m == nil {
		return
	}
	m.writes.done(int64(n), err)
}

// DownloadDone counts a download of n bytes.
func (m *IOMetrics) DownloadDone(n int64, err error) {
	if m == nil {
		return
	}
	m.downloads.done(n, err)
}

// Name returns the name of the iometrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}

// Stats is a snapshot of IOMetrics.
type Stats struct {
	Ops     int64
	OpsErrs int64
	// Chmods is the number of successful chmods.
	Chmods int64

	ROps   int64
	RBytes int64
	RErrs  int64

	WOps   int64
	WBytes int64
	WErrs  int64

	Downloads     int64
	DownloadBytes int64
	DownloadErrs  int64
}

func (s Stats) String() string {
	return fmt.Sprintf("ops=%d(err=%d) chmod=%d read=%d/%dB(err=%d) write=%d/%dB(err=%d) download=%d/%dB(err=%d)",
		s.Ops, s.OpsErrs, s.Chmods,
		s.ROps, s.RBytes, s.RErrs,
		s.WOps, s.WBytes, s.WErrs,
		s.Downloads, s.DownloadBytes, s.DownloadErrs)
}

// Stats returns the snapshot of the iometrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		Ops:           m.ops.ops.Load(),
		OpsErrs:       m.ops.errs.Load(),
		Chmods:        m.chmods.Load(),
		ROps:          m.reads.ops.Load(),
		RBytes:        m.reads.bytes.Load(),
		RErrs:         m.reads.errs.Load(),
		WOps:          m.writes.ops.Load(),
		WBytes:        m.writes.bytes.Load(),
		WErrs:         m.writes.errs.Load(),
		Downloads:     m.downloads.ops.Load(),
		DownloadBytes: m.downloads.bytes.Load(),
		DownloadErrs:  m.downloads.errs.Load(),
	}
}
