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

// Kind is the drive type reported by the volume inventory. The numeric
// values follow the Win32_LogicalDisk DriveType codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoRootDirectory
	KindRemovable
	KindFixed
	KindNetwork
	KindCompactDisc
	KindRAMDisk
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindNoRootDirectory: "no_root_directory",
	KindRemovable:       "removable",
	KindFixed:           "fixed",
	KindNetwork:         "network",
	KindCompactDisc:     "compact_disc",
	KindRAMDisk:         "ram_disk",
}

var kindDescriptions = [...]string{
	KindUnknown:         "Unknown",
	KindNoRootDirectory: "No Root Directory",
	KindRemovable:       "Removable Disk",
	KindFixed:           "Local Disk",
	KindNetwork:         "Network Drive",
	KindCompactDisc:     "Compact Disc",
	KindRAMDisk:         "RAM Disk",
}

// KindFromCode maps a raw drive type code to a Kind. Codes outside the
// known range map to KindUnknown.
func KindFromCode(code int) Kind {
	if code < int(KindUnknown) || code > int(KindRAMDisk) {
		return KindUnknown
	}
	return Kind(code)
}

func (k Kind) valid() bool {
	return k >= KindUnknown && k <= KindRAMDisk
}

// String returns the identifier used in log fields.
func (k Kind) String() string {
	if !k.valid() {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Description returns the human-readable drive type name.
func (k Kind) Description() string {
	if !k.valid() {
		return kindDescriptions[KindUnknown]
	}
	return kindDescriptions[k]
}
