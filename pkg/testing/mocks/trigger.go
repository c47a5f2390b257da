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

	"github.com/plugsync/plugsync/pkg/backup"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/stretchr/testify/mock"
)

// MockTrigger is a testify mock for backup.Trigger.
//
// Example:
//
//	trig := &MockTrigger{}
//	trig.On("Run", mock.Anything, mock.MatchedBy(func(v volume.Volume) bool {
//		return v.Identifier == "E:"
//	})).Return(backup.Result{})
type MockTrigger struct {
	mock.Mock
}

func (m *MockTrigger) Run(ctx context.Context, vol volume.Volume) backup.Result {
	args := m.Called(ctx, vol)
	if res, ok := args.Get(0).(backup.Result); ok {
		return res
	}
	return backup.Result{}
}

var _ backup.Trigger = (*MockTrigger)(nil)
