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
	"path/filepath"

	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/spf13/afero"
)

// DefaultMarker is the marker file name used by tests unless they need a
// different one.
const DefaultMarker = ".sync.ffs_batch"

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a filesystem helper using the real filesystem (for integration tests)
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// CreateVolumeRoot creates an empty directory standing in for a mounted
// volume.
func (h *FSHelper) CreateVolumeRoot(root string) error {
	if err := h.Fs.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create volume root %s: %w", root, err)
	}
	return nil
}

// CreateMarker creates a volume root with a marker file at the top level.
// The file holds a minimal batch job so sync programs that read it have
// something to parse.
func (h *FSHelper) CreateMarker(root, markerFile string) (string, error) {
	if err := h.CreateVolumeRoot(root); err != nil {
		return "", err
	}
	path := volume.MarkerPath(root, markerFile)
	content := []byte("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<FreeFileSync XmlType=\"BATCH\"/>\n")
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write marker %s: %w", path, err)
	}
	return path, nil
}

// CreateMarkerDir creates a directory where the marker file would be, which
// must not count as a marker.
func (h *FSHelper) CreateMarkerDir(root, markerFile string) error {
	path := volume.MarkerPath(root, markerFile)
	if err := h.Fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// RemoveMarker deletes a previously created marker.
func (h *FSHelper) RemoveMarker(root, markerFile string) error {
	path := volume.MarkerPath(root, markerFile)
	if err := h.Fs.Remove(path); err != nil {
		return fmt.Errorf("failed to remove marker %s: %w", path, err)
	}
	return nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// WriteFile writes content to a file
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// CleanupDir removes all contents from a directory
func (h *FSHelper) CleanupDir(path string) error {
	if err := h.Fs.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", path, err)
	}
	return nil
}
