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
	"errors"
	"testing"

	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveTypeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		part disk.PartitionStat
		want volume.Kind
	}{
		{"root ext4", disk.PartitionStat{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"}, volume.KindFixed},
		{"usb stick", disk.PartitionStat{Device: "/dev/sdb1", Mountpoint: "/media/alex/BACKUP", Fstype: "vfat"}, volume.KindRemovable},
		{"run media", disk.PartitionStat{Device: "/dev/sdc1", Mountpoint: "/run/media/alex/SD", Fstype: "exfat"}, volume.KindRemovable},
		{"mac volume", disk.PartitionStat{Device: "/dev/disk4s1", Mountpoint: "/Volumes/USB", Fstype: "msdos"}, volume.KindRemovable},
		{"nfs share", disk.PartitionStat{Device: "nas:/srv", Mountpoint: "/mnt/nas", Fstype: "nfs4"}, volume.KindNetwork},
		{"cifs under media", disk.PartitionStat{Device: "//nas/x", Mountpoint: "/media/share", Fstype: "CIFS"}, volume.KindNetwork},
		{"dvd", disk.PartitionStat{Device: "/dev/sr0", Mountpoint: "/media/alex/DVD", Fstype: "iso9660"}, volume.KindCompactDisc},
		{"tmpfs", disk.PartitionStat{Device: "tmpfs", Mountpoint: "/tmp", Fstype: "tmpfs"}, volume.KindRAMDisk},
		{"nothing known", disk.PartitionStat{Mountpoint: "/weird"}, volume.KindUnknown},
		{"media root itself", disk.PartitionStat{Device: "/dev/sda3", Mountpoint: "/media", Fstype: "ext4"}, volume.KindFixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DriveTypeFor(tt.part))
		})
	}
}

func TestPartitionsInventoryList(t *testing.T) {
	t.Parallel()

	inv := NewPartitionsInventory(zerolog.Nop())
	inv.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"},
			{Device: "/dev/sdb1", Mountpoint: "/media/alex/BACKUP", Fstype: "vfat"},
			{Device: "/dev/sdb1", Mountpoint: "/media/alex/BACKUP", Fstype: "vfat"},
			{Device: "/dev/sdc1", Mountpoint: "/media/alex/CARD", Fstype: "exfat"},
			{Device: "none", Mountpoint: "", Fstype: "swap"},
		}, nil
	}
	inv.label = func(_ context.Context, name string) (string, error) {
		if name == "sdc1" {
			return "PHOTOS", nil
		}
		return "", errors.New("no label")
	}

	got, err := inv.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []volume.RawRecord{
		{Identifier: "/", TypeCode: int(volume.KindFixed)},
		{Identifier: "/media/alex/BACKUP", Label: "BACKUP", TypeCode: int(volume.KindRemovable)},
		{Identifier: "/media/alex/CARD", Label: "PHOTOS", TypeCode: int(volume.KindRemovable)},
	}, got)
}

func TestPartitionsInventoryFailsClosed(t *testing.T) {
	t.Parallel()

	inv := NewPartitionsInventory(zerolog.Nop())
	inv.partitions = func(context.Context, bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{{Mountpoint: "/"}}, errors.New("permission denied")
	}

	got, err := inv.List(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, got)
}
