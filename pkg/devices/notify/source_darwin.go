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

//go:build darwin

package notify

import (
	"github.com/plugsync/plugsync/pkg/config"
	"github.com/rs/zerolog"
)

const volumesPath = "/Volumes"

func platformSource(backend string, logger zerolog.Logger) (Source, error) {
	switch backend {
	case config.BackendAuto, config.BackendVolumes:
		return NewVolumesSource([]string{volumesPath}, 0, logger), nil
	default:
		return nil, ErrUnsupported
	}
}
