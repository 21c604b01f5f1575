// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

type termSpinner struct {
	width      int
	quit, done chan struct{}
	started    time.Time
	n          int
	msg        string

	mu       sync.Mutex
	progress string
}

// Start starts the spinner.
func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	fmt.Fprint(os.Stderr, fitWidth(s.msg+"... ", s.width))
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				const chars = `/-\|`
				s.mu.Lock()
				progress := s.progress
				s.mu.Unlock()
				line := fmt.Sprintf("%s... %c %s", s.msg, chars[s.n], progress)
				fmt.Fprintf(os.Stderr, "\r\033[K%s", fitWidth(line, s.width))
				s.n++
				if s.n >= len(chars) {
					s.n = 0
				}
			}
		}
	}()
}

// Progress updates the status shown after the spinner.
func (s *termSpinner) Progress(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = fmt.Sprintf(format, args...)
}

// Stop stops the spinner.
func (s *termSpinner) Stop(err error) {
	close(s.quit)
	<-s.done
	d := time.Since(s.started)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\r\033[K%6s %s %s %v\n", FormatDuration(d), s.msg, SGR(Red, "failed"), err)
		return
	}
	fmt.Fprintf(os.Stderr, "\r\033[K%6s %s\n", FormatDuration(d), s.msg)
}

// Done finishes the spinner with message.
func (s *termSpinner) Done(format string, args ...any) {
	close(s.quit)
	<-s.done
	msg := fmt.Sprintf(format, args...)
	d := time.Since(s.started)
	fmt.Fprintf(os.Stderr, "\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, msg)
}

// TermUI is a terminal-based UI.
type TermUI struct {
	width int
}

func (t *TermUI) init() {
	t.width, _, _ = term.GetSize(int(os.Stderr.Fd()))
}

// NewSpinner returns a terminal-based spinner.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{width: t.width}
}
