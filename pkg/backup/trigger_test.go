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

package backup_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/plugsync/plugsync/pkg/backup"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/plugsync/plugsync/pkg/testing/helpers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var usb = volume.Volume{
	Identifier:     "/media/usb",
	Label:          "BACKUP",
	Kind:           volume.KindRemovable,
	IsBackupTarget: true,
}

func markerFor(v volume.Volume) string {
	return v.Identifier + string(os.PathSeparator) + helpers.DefaultMarker
}

func newTrigger(exec command.Executor, opts backup.Options) *backup.ProgramTrigger {
	if opts.Program == "" {
		opts.Program = "FreeFileSync"
	}
	if opts.MarkerFile == "" {
		opts.MarkerFile = helpers.DefaultMarker
	}
	return backup.NewProgramTrigger(exec, opts, zerolog.Nop())
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	cmd := helpers.NewMockCommandExecutor()
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, command.Options{HideWindow: true}, "FreeFileSync",
		[]string{markerFor(usb)}).
		Return(command.Result{Stdout: []byte("done"), ExitCode: 0, Started: true}, nil).Once()

	res := newTrigger(cmd, backup.Options{}).Run(context.Background(), usb)

	assert.True(t, res.OK())
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, markerFor(usb), res.Marker)
	cmd.AssertExpectations(t)
}

func TestRunExtraArgsPrecedeMarker(t *testing.T) {
	t.Parallel()

	cmd := helpers.NewMockCommandExecutor()
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, "ffs",
		[]string{"-silent", "-edit", markerFor(usb)}).
		Return(command.Result{}, nil).Once()

	args := []string{"-silent", "-edit"}
	trigger := newTrigger(cmd, backup.Options{Program: "ffs", Args: args})
	args[0] = "mutated"

	assert.True(t, trigger.Run(context.Background(), usb).OK())
	cmd.AssertNumberOfCalls(t, "Capture", 1)
}

func TestRunNonZeroExit(t *testing.T) {
	t.Parallel()

	cmd := helpers.NewMockCommandExecutor()
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(command.Result{Stderr: []byte("target folder not found"), ExitCode: 2, Started: true},
			errors.New("exit status 2"))

	res := newTrigger(cmd, backup.Options{}).Run(context.Background(), usb)

	assert.False(t, res.OK())
	require.ErrorIs(t, res.Err, backup.ErrNonZero)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "target folder not found", res.Stderr)
}

func TestRunLaunchFailure(t *testing.T) {
	t.Parallel()

	cmd := helpers.NewMockCommandExecutor()
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(command.Result{ExitCode: command.NoExitCode}, errors.New(`exec: "FreeFileSync": not found`))

	res := newTrigger(cmd, backup.Options{}).Run(context.Background(), usb)

	require.ErrorIs(t, res.Err, backup.ErrLaunch)
	assert.Equal(t, command.NoExitCode, res.ExitCode)
	assert.Empty(t, res.Stderr)
}

func TestRunStderrTruncated(t *testing.T) {
	t.Parallel()

	stderr := strings.Repeat("x", 100) + "the actual reason"
	cmd := helpers.NewMockCommandExecutor()
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(command.Result{Stderr: []byte(stderr), ExitCode: 1, Started: true}, errors.New("exit status 1"))

	res := newTrigger(cmd, backup.Options{StderrLimit: 17}).Run(context.Background(), usb)

	assert.Equal(t, "the actual reason", res.Stderr)
	assert.Equal(t, 1, res.ExitCode)
}

func TestRunRealProcess(t *testing.T) {
	t.Parallel()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}

	trigger := backup.NewProgramTrigger(&command.RealExecutor{}, backup.Options{
		Program:    "/bin/sh",
		MarkerFile: helpers.DefaultMarker,
		Args:       []string{"-c", `echo "bad batch $0" >&2; exit 3`},
	}, zerolog.Nop())

	res := trigger.Run(context.Background(), usb)
	require.ErrorIs(t, res.Err, backup.ErrNonZero)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "bad batch "+markerFor(usb))
}

func TestRunKilledBySignal(t *testing.T) {
	t.Parallel()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}

	trigger := backup.NewProgramTrigger(&command.RealExecutor{}, backup.Options{
		Program:    "/bin/sh",
		MarkerFile: helpers.DefaultMarker,
		Args:       []string{"-c", "kill -9 $$"},
	}, zerolog.Nop())

	res := trigger.Run(context.Background(), usb)
	require.ErrorIs(t, res.Err, backup.ErrNonZero)
	assert.NotErrorIs(t, res.Err, backup.ErrLaunch)
	assert.Equal(t, command.NoExitCode, res.ExitCode)
}

func TestRunSignalledMockIsNotLaunchFailure(t *testing.T) {
	t.Parallel()

	cmd := helpers.NewMockCommandExecutor()
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(command.Result{ExitCode: command.NoExitCode, Started: true}, errors.New("signal: killed"))

	res := newTrigger(cmd, backup.Options{}).Run(context.Background(), usb)
	require.ErrorIs(t, res.Err, backup.ErrNonZero)
}
