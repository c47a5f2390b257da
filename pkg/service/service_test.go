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

package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plugsync/plugsync/pkg/devices/notify"
	"github.com/plugsync/plugsync/pkg/testing/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T, src notify.Source, scanner Scanner, initial bool) (context.CancelFunc, <-chan error) {
	t.Helper()

	w := NewWorker(scanner, WorkerOptions{InitialScan: initial}, zerolog.Nop())
	svc := New(src, notify.NewRouter(zerolog.Nop()), w, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()
	return cancel, done
}

func TestServiceInitialScanAndTopologyChanges(t *testing.T) {
	t.Parallel()

	src := notify.NewManualSource()
	scanner := &countingScanner{}
	cancel, done := startService(t, src, scanner, true)

	assert.Eventually(t, func() bool { return scanner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return src.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	src.Emit(notify.DevNodesChanged)
	src.Emit(notify.DeviceQueryRemove)
	src.Emit(0x4242)
	assert.Never(t, func() bool { return scanner.calls.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	src.Emit(notify.DeviceArrival)
	assert.Eventually(t, func() bool { return scanner.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	src.Emit(notify.DeviceRemoveComplete)
	assert.Eventually(t, func() bool { return scanner.calls.Load() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, src.Subscribers())
}

func TestServiceNoInitialScan(t *testing.T) {
	t.Parallel()

	src := notify.NewManualSource()
	scanner := &countingScanner{}
	cancel, done := startService(t, src, scanner, false)

	assert.Eventually(t, func() bool { return src.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return scanner.calls.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestServiceBurstDuringScan(t *testing.T) {
	t.Parallel()

	src := notify.NewManualSource()
	scanner := newBlockingScanner()
	cancel, done := startService(t, src, scanner, true)

	<-scanner.started
	assert.Eventually(t, func() bool { return src.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	for range 10 {
		src.Emit(notify.DeviceArrival)
		src.Emit(notify.DeviceRemoveComplete)
	}
	scanner.release <- struct{}{}

	<-scanner.started
	assert.Equal(t, int32(1), scanner.maxActive.Load())
	scanner.release <- struct{}{}

	assert.Never(t, func() bool { return scanner.calls.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestServiceSubscribeFailure(t *testing.T) {
	t.Parallel()

	src := &mocks.MockSource{}
	src.On("Subscribe", mock.Anything, mock.Anything).Return(nil, errors.New("RegisterClassExW failed"))

	var scans atomic.Int32
	scanner := &countingScanner{}
	w := NewWorker(scanner, WorkerOptions{InitialScan: true, OnScan: func(ScanResult) { scans.Add(1) }}, zerolog.Nop())
	svc := New(src, notify.NewRouter(zerolog.Nop()), w, zerolog.Nop())

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to subscribe")
	assert.Equal(t, int32(0), scans.Load())
}

func TestServiceCloseError(t *testing.T) {
	t.Parallel()

	sub := &mocks.MockSubscription{}
	sub.On("Close").Return(errors.New("already gone")).Once()
	src := &mocks.MockSource{}
	src.On("Subscribe", mock.Anything, mock.Anything).Return(sub, nil)

	cancel, done := startService(t, src, &countingScanner{}, false)
	cancel()

	err := <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already gone")
	sub.AssertExpectations(t)
}
