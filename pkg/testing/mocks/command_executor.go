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

	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
// It allows testing code that executes system commands without actually running them.
type MockCommandExecutor struct {
	mock.Mock
}

// Output mocks a command whose stdout is consumed.
//
// Example:
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Output", mock.Anything, "powershell", mock.Anything).Return([]byte("[]"), nil)
func (m *MockCommandExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	if out, ok := called.Get(0).([]byte); ok {
		//nolint:wrapcheck // Mock returns are already wrapped by caller
		return out, called.Error(1)
	}
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return nil, called.Error(1)
}

// Capture mocks a command run to completion with stdout, stderr and the
// exit code collected.
func (m *MockCommandExecutor) Capture(
	ctx context.Context,
	opts command.Options,
	name string,
	args ...string,
) (command.Result, error) {
	called := m.Called(ctx, opts, name, args)
	res, _ := called.Get(0).(command.Result)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return res, called.Error(1)
}

var _ command.Executor = (*MockCommandExecutor)(nil)
