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

package mocks

import (
	"context"

	"github.com/plugsync/plugsync/pkg/devices/inventory"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/stretchr/testify/mock"
)

// MockInventory is a testify mock for inventory.Inventory.
type MockInventory struct {
	mock.Mock
}

func (m *MockInventory) List(ctx context.Context) ([]volume.RawRecord, error) {
	args := m.Called(ctx)
	if records, ok := args.Get(0).([]volume.RawRecord); ok {
		//nolint:wrapcheck // Mock returns are already wrapped by caller
		return records, args.Error(1)
	}
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return nil, args.Error(1)
}

var _ inventory.Inventory = (*MockInventory)(nil)
