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

//go:build windows

package inventory

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/rs/zerolog"
)

const wmiLogicalDiskQuery = "SELECT DeviceID, VolumeName, DriveType FROM Win32_LogicalDisk"

// WMIInventory runs the Win32_LogicalDisk query in-process over COM.
type WMIInventory struct {
	logger zerolog.Logger
}

func newWMIInventory(logger zerolog.Logger) (Inventory, error) {
	return &WMIInventory{logger: logger}, nil
}

func (w *WMIInventory) List(ctx context.Context) ([]volume.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("%v", err)
	}

	// COM initialization is per thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE means COM was already initialized on this thread.
		if !errors.As(err, &oleErr) || oleErr.Code() != 1 {
			return nil, unavailable("failed to initialize COM: %v", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, unavailable("failed to create WMI locator: %v", err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, unavailable("failed to query WMI interface: %v", err)
	}
	defer locator.Release()

	serviceRaw, err := oleutil.CallMethod(locator, "ConnectServer")
	if err != nil {
		return nil, unavailable("failed to connect to WMI service: %v", err)
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery", wmiLogicalDiskQuery)
	if err != nil {
		return nil, unavailable("failed to execute WMI query: %v", err)
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	var records []volume.RawRecord
	err = oleutil.ForEach(result, func(v *ole.VARIANT) error {
		item := v.ToIDispatch()
		defer item.Release()

		rec, err := logicalDiskFromDispatch(item)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, unavailable("failed to read WMI results: %v", err)
	}

	w.logger.Trace().Int("count", len(records)).Msg("enumerated logical disks over WMI")
	return records, nil
}

func logicalDiskFromDispatch(item *ole.IDispatch) (volume.RawRecord, error) {
	id, err := oleutil.GetProperty(item, "DeviceID")
	if err != nil {
		return volume.RawRecord{}, fmt.Errorf("failed to read DeviceID: %w", err)
	}
	defer func() { _ = id.Clear() }()

	rec := volume.RawRecord{Identifier: id.ToString()}
	if rec.Identifier == "" {
		return volume.RawRecord{}, errors.New("logical disk without DeviceID")
	}

	if label, err := oleutil.GetProperty(item, "VolumeName"); err == nil {
		if label.VT != ole.VT_NULL {
			rec.Label = label.ToString()
		}
		_ = label.Clear()
	}

	if dt, err := oleutil.GetProperty(item, "DriveType"); err == nil {
		if n, ok := dt.Value().(int32); ok {
			rec.TypeCode = int(n)
		}
		_ = dt.Clear()
	}

	return rec, nil
}
