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

	"github.com/plugsync/plugsync/pkg/devices/notify"
	"github.com/stretchr/testify/mock"
)

// MockSource is a testify mock for notify.Source. The handler passed to
// Subscribe is kept so tests can push codes through it.
type MockSource struct {
	mock.Mock
	Handler notify.Handler
}

func (m *MockSource) Subscribe(ctx context.Context, handler notify.Handler) (notify.Subscription, error) {
	m.Handler = handler
	args := m.Called(ctx, handler)
	if sub, ok := args.Get(0).(notify.Subscription); ok {
		//nolint:wrapcheck // Mock returns are already wrapped by caller
		return sub, args.Error(1)
	}
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return nil, args.Error(1)
}

// MockSubscription is a testify mock for notify.Subscription.
type MockSubscription struct {
	mock.Mock
}

func (m *MockSubscription) Close() error {
	args := m.Called()
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return args.Error(0)
}

var (
	_ notify.Source       = (*MockSource)(nil)
	_ notify.Subscription = (*MockSubscription)(nil)
)
