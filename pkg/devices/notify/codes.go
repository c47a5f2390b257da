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

// Package notify receives raw device-change notifications from the host and
// decides which of them warrant a volume rescan.
package notify

import "fmt"

// Device-change event codes, as carried in the wParam of WM_DEVICECHANGE.
// Non-Windows sources translate their native events to the same codes.
const (
	DevNodesChanged       uint32 = 0x0007
	QueryChangeConfig     uint32 = 0x0017
	ConfigChanged         uint32 = 0x0018
	ConfigChangeCanceled  uint32 = 0x0019
	DeviceArrival         uint32 = 0x8000
	DeviceQueryRemove     uint32 = 0x8001
	DeviceQueryRemoveFail uint32 = 0x8002
	DeviceRemovePending   uint32 = 0x8003
	DeviceRemoveComplete  uint32 = 0x8004
	DeviceTypeSpecific    uint32 = 0x8005
	CustomEvent           uint32 = 0x8006
	UserDefined           uint32 = 0xFFFF
)

// CodeInfo describes a known notification code.
type CodeInfo struct {
	Name        string
	Description string
	Code        uint32
}

var knownCodes = map[uint32]CodeInfo{
	DevNodesChanged: {
		Code: DevNodesChanged, Name: "DBT_DEVNODES_CHANGED",
		Description: "a device has been added to or removed from the system",
	},
	QueryChangeConfig: {
		Code: QueryChangeConfig, Name: "DBT_QUERYCHANGECONFIG",
		Description: "permission is requested to change the current configuration",
	},
	ConfigChanged: {
		Code: ConfigChanged, Name: "DBT_CONFIGCHANGED",
		Description: "the current configuration has changed, due to a dock or undock",
	},
	ConfigChangeCanceled: {
		Code: ConfigChangeCanceled, Name: "DBT_CONFIGCHANGECANCELED",
		Description: "a request to change the current configuration has been canceled",
	},
	DeviceArrival: {
		Code: DeviceArrival, Name: "DBT_DEVICEARRIVAL",
		Description: "a device or piece of media has been inserted and is now available",
	},
	DeviceQueryRemove: {
		Code: DeviceQueryRemove, Name: "DBT_DEVICEQUERYREMOVE",
		Description: "permission is requested to remove a device or piece of media",
	},
	DeviceQueryRemoveFail: {
		Code: DeviceQueryRemoveFail, Name: "DBT_DEVICEQUERYREMOVEFAILED",
		Description: "a request to remove a device or piece of media has been canceled",
	},
	DeviceRemovePending: {
		Code: DeviceRemovePending, Name: "DBT_DEVICEREMOVEPENDING",
		Description: "a device or piece of media is about to be removed",
	},
	DeviceRemoveComplete: {
		Code: DeviceRemoveComplete, Name: "DBT_DEVICEREMOVECOMPLETE",
		Description: "a device or piece of media has been removed",
	},
	DeviceTypeSpecific: {
		Code: DeviceTypeSpecific, Name: "DBT_DEVICETYPESPECIFIC",
		Description: "a device-specific event has occurred",
	},
	CustomEvent: {
		Code: CustomEvent, Name: "DBT_CUSTOMEVENT",
		Description: "a driver-defined custom event has occurred",
	},
	UserDefined: {
		Code: UserDefined, Name: "DBT_USERDEFINED",
		Description: "the meaning of this message is user-defined",
	},
}

// Lookup returns the table entry for a code.
func Lookup(code uint32) (CodeInfo, bool) {
	info, ok := knownCodes[code]
	return info, ok
}

// KnownCodes returns every code in the table.
func KnownCodes() []uint32 {
	codes := make([]uint32, 0, len(knownCodes))
	for code := range knownCodes {
		codes = append(codes, code)
	}
	return codes
}

// CodeName returns the symbolic name of a code, or its hex value when the
// code is not in the table.
func CodeName(code uint32) string {
	if info, ok := knownCodes[code]; ok {
		return info.Name
	}
	return fmt.Sprintf("0x%04X", code)
}
