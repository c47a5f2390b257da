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

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code uint32
		want Decision
	}{
		{name: "devnodes changed", code: 0x0007, want: Ignore},
		{name: "query change config", code: 0x0017, want: Ignore},
		{name: "config changed", code: 0x0018, want: Ignore},
		{name: "config change canceled", code: 0x0019, want: Ignore},
		{name: "device arrival", code: 0x8000, want: Rescan},
		{name: "query remove", code: 0x8001, want: Ignore},
		{name: "query remove failed", code: 0x8002, want: Ignore},
		{name: "remove pending", code: 0x8003, want: Ignore},
		{name: "remove complete", code: 0x8004, want: Rescan},
		{name: "type specific", code: 0x8005, want: Ignore},
		{name: "custom event", code: 0x8006, want: Ignore},
		{name: "user defined", code: 0xFFFF, want: Ignore},
		{name: "unknown", code: 0x1234, want: Ignore},
		{name: "zero", code: 0, want: Ignore},
	}

	r := NewRouter(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Route(tt.code))
		})
	}
}

func TestRouteLogsSymbolicName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRouter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	r.Route(DeviceArrival)
	assert.Contains(t, buf.String(), `"event":"DBT_DEVICEARRIVAL"`)
	assert.Contains(t, buf.String(), `"decision":"rescan"`)

	buf.Reset()
	r.Route(0xBEEF)
	assert.Contains(t, buf.String(), `"event":"0xBEEF"`)
	assert.Contains(t, buf.String(), "unknown device change code")
}

func TestCodeTable(t *testing.T) {
	t.Parallel()

	codes := KnownCodes()
	require.Len(t, codes, 12)

	rescans := 0
	for _, code := range codes {
		info, ok := Lookup(code)
		require.True(t, ok)
		assert.Equal(t, code, info.Code)
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Description)
		assert.Equal(t, info.Name, CodeName(code))
		if IsTopologyChange(code) {
			rescans++
		}
	}
	assert.Equal(t, 2, rescans)

	_, ok := Lookup(0x9999)
	assert.False(t, ok)
	assert.Equal(t, "0x9999", CodeName(0x9999))
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ignore", Ignore.String())
	assert.Equal(t, "rescan", Rescan.String())
}

// TestPropertyRouteOnlyTopologyCodesRescan verifies that across the whole
// code space exactly the arrival and removal-complete codes rescan.
func TestPropertyRouteOnlyTopologyCodesRescan(t *testing.T) {
	t.Parallel()

	r := NewRouter(zerolog.Nop())
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.Uint32().Draw(t, "code")
		got := r.Route(code)

		want := Ignore
		if code == 0x8000 || code == 0x8004 {
			want = Rescan
		}
		if got != want {
			t.Fatalf("Route(0x%X) = %v, want %v", code, got, want)
		}
	})
}

// TestPropertyRouteKnownCodes draws only from the table so the ten
// non-topology entries are exercised densely.
func TestPropertyRouteKnownCodes(t *testing.T) {
	t.Parallel()

	r := NewRouter(zerolog.Nop())
	codes := KnownCodes()
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.SampledFrom(codes).Draw(t, "code")
		if (r.Route(code) == Rescan) != IsTopologyChange(code) {
			t.Fatalf("unexpected decision for %s", CodeName(code))
		}
	})
}
