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
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/plugsync/plugsync/pkg/config"
	"github.com/rs/zerolog"
)

const (
	udisks2Service      = "org.freedesktop.UDisks2"
	udisks2Path         = "/org/freedesktop/UDisks2"
	udisks2BlockDevices = "/org/freedesktop/UDisks2/block_devices"
	udisks2FSInterface  = "org.freedesktop.UDisks2.Filesystem"
	dbusObjectManager   = "org.freedesktop.DBus.ObjectManager"
	dbusPropertiesIface = "org.freedesktop.DBus.Properties"
	udisksProbeTimeout  = 3 * time.Second
	signalBufferSize    = 16
)

func platformSource(backend string, logger zerolog.Logger) (Source, error) {
	switch backend {
	case config.BackendAuto:
		if isUDisksAvailable() {
			logger.Debug().Msg("using D-Bus/UDisks2 for device notifications")
			return NewUDisksSource(logger), nil
		}
		logger.Debug().Msg("UDisks2 unavailable, using kernel uevents for device notifications")
		return newUdevWithMounts(logger), nil
	case config.BackendUDisks:
		return NewUDisksSource(logger), nil
	case config.BackendUdev:
		return newUdevWithMounts(logger), nil
	case config.BackendVolumes:
		return NewVolumesSource(linuxMountDirs(), 0, logger), nil
	default:
		return nil, ErrUnsupported
	}
}

// newUdevWithMounts pairs block uevents with a watch on the automount
// directories. A block add arrives before the volume is mounted, so the
// mount point appearing is what reports a volume that mounts late.
func newUdevWithMounts(logger zerolog.Logger) *CombinedSource {
	return Combine(logger, NewUdevSource(logger), NewVolumesSource(linuxMountDirs(), 0, logger))
}

func linuxMountDirs() []string {
	dirs := []string{"/media", "/mnt"}
	if user := os.Getenv("USER"); user != "" {
		dirs = append(dirs, filepath.Join("/media", user), filepath.Join("/run/media", user))
	}
	return dirs
}

// isUDisksAvailable checks whether the system bus is reachable and the
// UDisks2 service is registered on it.
func isUDisksAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), udisksProbeTimeout)
	defer cancel()

	done := make(chan bool, 1)
	go func() {
		conn, err := dbus.SystemBusPrivate()
		if err != nil {
			done <- false
			return
		}
		defer func() { _ = conn.Close() }()

		if err := conn.Auth(nil); err != nil {
			done <- false
			return
		}
		if err := conn.Hello(); err != nil {
			done <- false
			return
		}

		var names []string
		obj := conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")
		if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
			done <- false
			return
		}
		for _, name := range names {
			if name == udisks2Service {
				done <- true
				return
			}
		}
		done <- false
	}()

	select {
	case available := <-done:
		return available
	case <-ctx.Done():
		return false
	}
}

// UDisksSource listens to UDisks2 on the system bus. A filesystem gaining
// its first mount point is an arrival; losing its last one is a removal.
// Block objects appearing or disappearing are reported as node changes.
type UDisksSource struct {
	logger zerolog.Logger
}

func NewUDisksSource(logger zerolog.Logger) *UDisksSource {
	return &UDisksSource{logger: logger}
}

func (s *UDisksSource) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	conn, err := dbus.SystemBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system D-Bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to authenticate with system D-Bus: %w", err)
	}
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to complete D-Bus handshake: %w", err)
	}

	matches := [][]dbus.MatchOption{
		{
			dbus.WithMatchObjectPath(udisks2Path),
			dbus.WithMatchInterface(dbusObjectManager),
			dbus.WithMatchMember("InterfacesAdded"),
		},
		{
			dbus.WithMatchObjectPath(udisks2Path),
			dbus.WithMatchInterface(dbusObjectManager),
			dbus.WithMatchMember("InterfacesRemoved"),
		},
		{
			dbus.WithMatchPathNamespace(udisks2BlockDevices),
			dbus.WithMatchInterface(dbusPropertiesIface),
			dbus.WithMatchMember("PropertiesChanged"),
			dbus.WithMatchArg(0, udisks2FSInterface),
		},
	}
	for _, opts := range matches {
		if err := conn.AddMatchSignal(opts...); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to add D-Bus signal match: %w", err)
		}
	}

	signals := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(signals)

	sub := &udisksSubscription{
		conn: conn,
		stop: make(chan struct{}),
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
			case sig, ok := <-signals:
				if !ok || sig == nil {
					return
				}
				if code, ok := translateSignal(sig); ok {
					s.logger.Trace().
						Str("signal", sig.Name).
						Str("path", string(sig.Path)).
						Msg("udisks signal")
					handler(code)
				}
			}
		}
	}()

	s.logger.Debug().Msg("subscribed to UDisks2 signals")
	return sub, nil
}

// translateSignal maps a UDisks2 signal to a device-change code.
func translateSignal(sig *dbus.Signal) (uint32, bool) {
	switch sig.Name {
	case dbusObjectManager + ".InterfacesAdded", dbusObjectManager + ".InterfacesRemoved":
		return DevNodesChanged, true
	case dbusPropertiesIface + ".PropertiesChanged":
		if len(sig.Body) < 2 {
			return 0, false
		}
		iface, ok := sig.Body[0].(string)
		if !ok || iface != udisks2FSInterface {
			return 0, false
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			return 0, false
		}
		mp, ok := changed["MountPoints"]
		if !ok {
			return 0, false
		}
		points, ok := mp.Value().([][]byte)
		if !ok {
			return 0, false
		}
		if len(points) > 0 {
			return DeviceArrival, true
		}
		return DeviceRemoveComplete, true
	default:
		return 0, false
	}
}

type udisksSubscription struct {
	conn      *dbus.Conn
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (s *udisksSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		err = s.conn.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to close D-Bus connection: %w", err)
	}
	return nil
}
