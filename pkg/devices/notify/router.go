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

package notify

import "github.com/rs/zerolog"

// Decision is the outcome of routing a notification code.
type Decision int

const (
	Ignore Decision = iota
	Rescan
)

func (d Decision) String() string {
	if d == Rescan {
		return "rescan"
	}
	return "ignore"
}

// IsTopologyChange reports whether a code means the set of attached volumes
// changed. Only a completed arrival or a completed removal count.
func IsTopologyChange(code uint32) bool {
	return code == DeviceArrival || code == DeviceRemoveComplete
}

// Router filters raw notification codes. Route is safe to call from any
// goroutine, including an OS callback thread.
type Router struct {
	logger zerolog.Logger
}

func NewRouter(logger zerolog.Logger) *Router {
	return &Router{logger: logger}
}

// Route never blocks and never fails.
func (r *Router) Route(code uint32) Decision {
	decision := Ignore
	if IsTopologyChange(code) {
		decision = Rescan
	}

	if info, ok := Lookup(code); ok {
		r.logger.Debug().
			Str("event", info.Name).
			Uint32("code", code).
			Stringer("decision", decision).
			Msg(info.Description)
	} else {
		r.logger.Debug().
			Str("event", CodeName(code)).
			Uint32("code", code).
			Msg("unknown device change code")
	}

	return decision
}
