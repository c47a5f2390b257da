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

package helpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugsync/plugsync/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // mutates the global logger
func TestInitLogging(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	dir := filepath.Join(t.TempDir(), "logs", "nested")
	var console bytes.Buffer

	require.NoError(t, InitLogging(dir, []io.Writer{&console}))

	log.Info().Str("volume", "E:").Msg("scan finished")

	_, err := os.Stat(filepath.Join(dir, config.LogFile))
	require.NoError(t, err)
	assert.Contains(t, console.String(), "scan finished")
	assert.Contains(t, console.String(), `"volume":"E:"`)
	assert.NotNil(t, LogWriter())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{input: "debug", expected: zerolog.DebugLevel},
		{input: "INFO", expected: zerolog.InfoLevel},
		{input: "warn", expected: zerolog.WarnLevel},
		{input: "error", expected: zerolog.ErrorLevel},
		{input: "trace", expected: zerolog.TraceLevel},
		{input: "", expected: zerolog.InfoLevel},
		{input: "chatty", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}
