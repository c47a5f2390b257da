// Plugsync
// Copyright (c) 2026 The Plugsync Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Plugsync.
//
// Plugsync is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Plugsync is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Plugsync.  If not, see <http://www.gnu.org/licenses/>.

package volume

import (
	"errors"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// MarkerChecker tests whether a volume root carries the backup marker file.
type MarkerChecker struct {
	fs     afero.Fs
	file   string
	logger zerolog.Logger
}

func NewMarkerChecker(fsys afero.Fs, markerFile string, logger zerolog.Logger) *MarkerChecker {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &MarkerChecker{
		fs:     fsys,
		file:   markerFile,
		logger: logger,
	}
}

// File returns the marker file name this checker looks for.
func (m *MarkerChecker) File() string {
	return m.file
}

// Present reports whether a regular marker file exists at the root of the
// given volume. Any failure to stat the path counts as absent. Symlinks and
// directories are rejected.
func (m *MarkerChecker) Present(identifier string) bool {
	if identifier == "" {
		return false
	}
	path := MarkerPath(identifier, m.file)

	var info fs.FileInfo
	var err error
	if lst, ok := m.fs.(afero.Lstater); ok {
		info, _, err = lst.LstatIfPossible(path)
	} else {
		info, err = m.fs.Stat(path)
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug().Err(err).
				Str("marker", path).
				Msg("marker file unreadable, treating as absent")
		}
		return false
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		m.logger.Warn().
			Str("marker", path).
			Msg("marker file is a symlink, ignoring")
		return false
	}
	if !info.Mode().IsRegular() {
		m.logger.Debug().
			Str("marker", path).
			Msg("marker path is not a regular file")
		return false
	}

	return true
}
