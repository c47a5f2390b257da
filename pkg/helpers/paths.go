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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/plugsync/plugsync/pkg/config"
)

// ConfigDir is where config.toml lives.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, config.AppName)
}

// DataDir is where the rotating log file is written.
func DataDir() string {
	return filepath.Join(xdg.DataHome, config.AppName)
}

// EnsureDirectories creates the config and data directories if missing.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// RootPath returns a volume identifier with exactly one trailing path
// separator, so "E:" becomes "E:\" on Windows and "/media/usb" becomes
// "/media/usb/".
func RootPath(identifier string) string {
	if identifier == "" {
		return ""
	}
	for len(identifier) > 1 && os.IsPathSeparator(identifier[len(identifier)-1]) {
		identifier = identifier[:len(identifier)-1]
	}
	if os.IsPathSeparator(identifier[len(identifier)-1]) {
		return identifier
	}
	return identifier + string(os.PathSeparator)
}
