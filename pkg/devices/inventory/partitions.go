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

package inventory

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"
)

var (
	networkFstypes = map[string]struct{}{
		"nfs": {}, "nfs4": {}, "cifs": {}, "smb": {}, "smbfs": {}, "smb3": {},
		"afpfs": {}, "sshfs": {}, "fuse.sshfs": {}, "webdav": {}, "davfs": {},
	}
	opticalFstypes = map[string]struct{}{
		"iso9660": {}, "udf": {}, "cd9660": {}, "cddafs": {},
	}
	ramFstypes = map[string]struct{}{
		"tmpfs": {}, "ramfs": {}, "devtmpfs": {},
	}
	removableRoots = []string{"/media", "/run/media", "/Volumes"}
)

// PartitionsInventory lists mounted filesystems and derives a drive type
// from the filesystem type and mount location.
type PartitionsInventory struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	label      func(ctx context.Context, name string) (string, error)
	logger     zerolog.Logger
}

func NewPartitionsInventory(logger zerolog.Logger) *PartitionsInventory {
	return &PartitionsInventory{
		partitions: disk.PartitionsWithContext,
		label:      disk.LabelWithContext,
		logger:     logger,
	}
}

func (p *PartitionsInventory) List(ctx context.Context) ([]volume.RawRecord, error) {
	parts, err := p.partitions(ctx, false)
	if err != nil {
		return nil, unavailable("failed to list partitions: %v", err)
	}

	seen := make(map[string]struct{}, len(parts))
	records := make([]volume.RawRecord, 0, len(parts))
	for _, part := range parts {
		if part.Mountpoint == "" {
			continue
		}
		if _, dup := seen[part.Mountpoint]; dup {
			continue
		}
		seen[part.Mountpoint] = struct{}{}

		records = append(records, volume.RawRecord{
			Identifier: part.Mountpoint,
			Label:      p.labelFor(ctx, part),
			TypeCode:   int(DriveTypeFor(part)),
		})
	}

	p.logger.Trace().Int("count", len(records)).Msg("enumerated partitions")
	return records, nil
}

func (p *PartitionsInventory) labelFor(ctx context.Context, part disk.PartitionStat) string {
	if strings.HasPrefix(part.Device, "/dev/") {
		if label, err := p.label(ctx, filepath.Base(part.Device)); err == nil && label != "" {
			return label
		}
	}
	if isUnder(part.Mountpoint, removableRoots) {
		return filepath.Base(part.Mountpoint)
	}
	return ""
}

// DriveTypeFor maps a mounted partition to a drive type.
func DriveTypeFor(part disk.PartitionStat) volume.Kind {
	fstype := strings.ToLower(part.Fstype)
	switch {
	case has(networkFstypes, fstype):
		return volume.KindNetwork
	case has(opticalFstypes, fstype):
		return volume.KindCompactDisc
	case has(ramFstypes, fstype):
		return volume.KindRAMDisk
	case isUnder(part.Mountpoint, removableRoots):
		return volume.KindRemovable
	case part.Device == "" && fstype == "":
		return volume.KindUnknown
	default:
		return volume.KindFixed
	}
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func isUnder(path string, roots []string) bool {
	for _, root := range roots {
		if strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}
