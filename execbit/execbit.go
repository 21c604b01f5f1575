// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execbit restores execute permission of files extracted from
// archives that did not keep it.
package execbit

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"

	"go.chromium.org/infra/build/ndkpkg/osfs"
)

// Kind is the kind of executable file.
type Kind int

const (
	// Unknown is not an executable file.
	Unknown Kind = iota
	// Script is a file starting with "#!".
	Script
	// ELF is an ELF binary.
	ELF
	// MachO is a Mach-O binary, thin or fat.
	MachO
)

func (k Kind) String() string {
	switch k {
	case Script:
		return "script"
	case ELF:
		return "elf"
	case MachO:
		return "mach-o"
	}
	return "unknown"
}

// HeaderSize is the number of leading bytes Classify needs.
const HeaderSize = 4

var (
	scriptMagic = []byte("#!")
	elfMagic    = []byte{0x7f, 'E', 'L', 'F'}

	machOMagics = [][]byte{
		{0xfe, 0xed, 0xfa, 0xce}, // MH_MAGIC
		{0xce, 0xfa, 0xed, 0xfe}, // MH_CIGAM
		{0xfe, 0xed, 0xfa, 0xcf}, // MH_MAGIC_64
		{0xcf, 0xfa, 0xed, 0xfe}, // MH_CIGAM_64
		{0xca, 0xfe, 0xba, 0xbe}, // FAT_MAGIC
		{0xbe, 0xba, 0xfe, 0xca}, // FAT_CIGAM
	}
)

// Classify classifies a file by its leading bytes.
func Classify(header []byte) Kind {
	if bytes.HasPrefix(header, scriptMagic) {
		return Script
	}
	if len(header) < HeaderSize {
		return Unknown
	}
	header = header[:HeaderSize]
	if bytes.Equal(header, elfMagic) {
		return ELF
	}
	for _, m := range machOMagics {
		if bytes.Equal(header, m) {
			return MachO
		}
	}
	return Unknown
}

// Stats is the result of Restore.
type Stats struct {
	// Files is the number of regular files inspected.
	Files int
	// Kinds counts classified files by kind.
	Kinds map[Kind]int
	// Changed is the number of files whose mode was changed.
	Changed int
	// Unreadable is the number of files left as is because their
	// header could not be read.
	Unreadable int
}

func (s Stats) String() string {
	return fmt.Sprintf("files=%d script=%d elf=%d mach-o=%d changed=%d unreadable=%d", s.Files, s.Kinds[Script], s.Kinds[ELF], s.Kinds[MachO], s.Changed, s.Unreadable)
}

// Restore walks root and adds the execute bits for owner, group and
// other to every regular file classified as script, ELF or Mach-O.
// Existing permission bits are kept. Symlinks are not followed.
// Files whose header can not be read are logged and left untouched.
func Restore(ctx context.Context, fsys *osfs.OSFS, root string) (Stats, error) {
	st := Stats{Kinds: make(map[Kind]int)}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		st.Files++
		header, err := fsys.ReadHeader(ctx, path, HeaderSize)
		if err != nil {
			log.Warnf("skip %s: failed to read header: %v", path, err)
			st.Unreadable++
			return nil
		}
		kind := Classify(header)
		if kind == Unknown {
			return nil
		}
		st.Kinds[kind]++
		fi, err := d.Info()
		if err != nil {
			return err
		}
		mode := fi.Mode().Perm()
		if mode&0111 == 0111 {
			return nil
		}
		log.Debugf("chmod +x %s (%s) %s", path, kind, mode)
		err = fsys.Chmod(ctx, path, fi.Mode()|0111)
		if err != nil {
			return fmt.Errorf("failed to chmod %s: %w", path, err)
		}
		st.Changed++
		return nil
	})
	if err != nil {
		return st, err
	}
	log.Infof("restored execute bits under %s: %s", root, st)
	return st, nil
}
