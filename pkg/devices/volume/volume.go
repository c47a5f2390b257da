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

// Package volume models attached storage volumes and decides which of them
// are backup targets.
package volume

import "github.com/plugsync/plugsync/pkg/helpers"

// RawRecord is a single entry of an inventory snapshot, before
// classification.
type RawRecord struct {
	// Identifier addresses the volume root, e.g. "E:" or "/media/usb".
	Identifier string
	Label      string
	TypeCode   int
}

// Volume is a classified snapshot entry. Values are never updated in place;
// every scan builds new ones.
type Volume struct {
	Identifier     string
	Label          string
	Kind           Kind
	IsBackupTarget bool
}

func (v Volume) IsRemovable() bool {
	return v.Kind == KindRemovable
}

func (v Volume) IsFixed() bool {
	return v.Kind == KindFixed
}

// MarkerPath joins the normalized volume root with the marker file name.
func MarkerPath(identifier, markerFile string) string {
	return helpers.RootPath(identifier) + markerFile
}

// MarkerPath returns where the marker file for this volume would live.
func (v Volume) MarkerPath(markerFile string) string {
	return MarkerPath(v.Identifier, markerFile)
}
