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
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	powershellExe    = "powershell"
	logicalDiskQuery = "Get-CimInstance -ClassName Win32_LogicalDisk | " +
		"Select-Object DeviceID,VolumeName,DriveType | ConvertTo-Json -Compress"
)

// PowerShellInventory queries Win32_LogicalDisk through a PowerShell
// subprocess and parses its JSON output.
type PowerShellInventory struct {
	exec   command.Executor
	logger zerolog.Logger
}

func NewPowerShellInventory(exec command.Executor, logger zerolog.Logger) *PowerShellInventory {
	return &PowerShellInventory{
		exec:   exec,
		logger: logger,
	}
}

func (p *PowerShellInventory) List(ctx context.Context) ([]volume.RawRecord, error) {
	out, err := p.exec.Output(ctx, powershellExe,
		"-NoProfile", "-NonInteractive", "-Command", logicalDiskQuery)
	if err != nil {
		return nil, unavailable("powershell exited with status %d: %v", command.ExitCode(err), err)
	}

	records, err := ParseLogicalDisks(out)
	if err != nil {
		return nil, err
	}
	p.logger.Trace().Int("count", len(records)).Msg("enumerated logical disks")
	return records, nil
}

// logicalDisk is one Win32_LogicalDisk row. Missing or null fields decode
// to their zero values.
type logicalDisk struct {
	VolumeName *string `json:"VolumeName"`
	DeviceID   string  `json:"DeviceID"`
	DriveType  int     `json:"DriveType"`
}

// ParseLogicalDisks decodes ConvertTo-Json output. PowerShell emits a bare
// object instead of an array when there is exactly one row, and may write
// UTF-16 with a byte order mark when its output is redirected.
func ParseLogicalDisks(data []byte) ([]volume.RawRecord, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, unavailable("cannot decode inventory output: %v", err)
	}
	decoded = bytes.TrimSpace(decoded)
	if len(decoded) == 0 {
		return nil, unavailable("inventory output is empty")
	}

	var rows []logicalDisk
	switch decoded[0] {
	case '[':
		if err := json.Unmarshal(decoded, &rows); err != nil {
			return nil, unavailable("cannot parse inventory output: %v", err)
		}
	case '{':
		var row logicalDisk
		if err := json.Unmarshal(decoded, &row); err != nil {
			return nil, unavailable("cannot parse inventory output: %v", err)
		}
		rows = []logicalDisk{row}
	default:
		return nil, unavailable("unexpected inventory output %q", truncate(decoded, 32))
	}

	records := make([]volume.RawRecord, 0, len(rows))
	for i, row := range rows {
		if row.DeviceID == "" {
			return nil, unavailable("inventory row %d has no device id", i)
		}
		rec := volume.RawRecord{
			Identifier: row.DeviceID,
			TypeCode:   row.DriveType,
		}
		if row.VolumeName != nil {
			rec.Label = *row.VolumeName
		}
		records = append(records, rec)
	}
	return records, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s...", b[:n])
}
