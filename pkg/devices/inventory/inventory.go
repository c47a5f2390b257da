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

// Package inventory enumerates the volumes currently attached to the host.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/plugsync/plugsync/pkg/config"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable wraps every enumeration failure. A failed List never
	// returns partial data.
	ErrUnavailable = errors.New("volume inventory unavailable")

	// ErrUnsupported is returned for a backend that cannot run on this
	// platform.
	ErrUnsupported = errors.New("inventory backend not supported on this platform")
)

// Inventory produces a snapshot of the attached volumes.
type Inventory interface {
	List(ctx context.Context) ([]volume.RawRecord, error)
}

// New returns the inventory for a configured backend name.
func New(backend string, exec command.Executor, logger zerolog.Logger) (Inventory, error) {
	logger = logger.With().Str("component", "inventory").Logger()
	if exec == nil {
		exec = &command.RealExecutor{}
	}

	if backend == "" || backend == config.BackendAuto {
		backend = defaultBackend()
	}

	switch backend {
	case config.BackendPowerShell:
		return NewPowerShellInventory(exec, logger), nil
	case config.BackendWMI:
		return newWMIInventory(logger)
	case config.BackendPartitions:
		return NewPartitionsInventory(logger), nil
	default:
		return nil, fmt.Errorf("inventory backend %q: %w", backend, ErrUnsupported)
	}
}

func defaultBackend() string {
	if runtime.GOOS == "windows" {
		return config.BackendPowerShell
	}
	return config.BackendPartitions
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}
