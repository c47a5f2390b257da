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

//go:build linux

package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/deniswernert/udev"
	"github.com/rs/zerolog"
)

const ueventBufferSize = 64

// UdevSource reads kernel uevents from the netlink socket and reports
// block device add and remove actions.
type UdevSource struct {
	logger zerolog.Logger
}

func NewUdevSource(logger zerolog.Logger) *UdevSource {
	return &UdevSource{logger: logger}
}

func (s *UdevSource) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	mon, err := udev.NewMonitor()
	if err != nil {
		return nil, fmt.Errorf("failed to open uevent netlink socket: %w", err)
	}

	// The monitor goroutine blocks in recvfrom and only notices shutdown
	// after the next uevent, so the channel is buffered to let it exit.
	events := make(chan *udev.UEvent, ueventBufferSize)
	shutdown := mon.Monitor(events)

	sub := &udevSubscription{
		mon:      mon,
		shutdown: shutdown,
		stop:     make(chan struct{}),
	}
	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.stop:
				return
			case ev := <-events:
				if ev == nil {
					continue
				}
				if code, ok := translateUEvent(ev); ok {
					s.logger.Trace().
						Str("action", ev.Action).
						Str("devpath", ev.Devpath).
						Msg("uevent")
					handler(code)
				}
			}
		}
	}()

	s.logger.Debug().Msg("subscribed to kernel uevents")
	return sub, nil
}

// translateUEvent maps a block subsystem uevent to a device-change code.
func translateUEvent(ev *udev.UEvent) (uint32, bool) {
	if ev.Env["SUBSYSTEM"] != "block" {
		return 0, false
	}
	switch ev.Action {
	case "add":
		return DeviceArrival, true
	case "remove":
		return DeviceRemoveComplete, true
	case "change":
		return DevNodesChanged, true
	default:
		return 0, false
	}
}

type udevSubscription struct {
	mon       *udev.UDevMonitor
	shutdown  chan bool
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (s *udevSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		close(s.shutdown)
		err = s.mon.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to close uevent socket: %w", err)
	}
	return nil
}
