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

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plugsync/plugsync/pkg/config"
	"github.com/plugsync/plugsync/pkg/devices/inventory"
	"github.com/plugsync/plugsync/pkg/devices/notify"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/plugsync/plugsync/pkg/testing/helpers"
	"github.com/plugsync/plugsync/pkg/testing/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Instance {
	t.Helper()
	vals := config.BaseDefaults
	vals.Scan.Settle = 0
	cfg, err := config.NewConfigFile(filepath.Join(t.TempDir(), config.CfgFile), vals)
	require.NoError(t, err)
	return cfg
}

func testDeps(t *testing.T, records []volume.RawRecord, listErr error) (Deps, *mocks.MockCommandExecutor) {
	t.Helper()

	fsh := helpers.NewMemoryFS()
	_, err := fsh.CreateMarker("/media/backup", helpers.DefaultMarker)
	require.NoError(t, err)
	require.NoError(t, fsh.CreateVolumeRoot("/media/photos"))

	inv := &mocks.MockInventory{}
	inv.On("List", mock.Anything).Return(records, listErr)

	cmd := helpers.NewMockCommandExecutor()
	return Deps{Exec: cmd, Fs: fsh.Fs, Inv: inv}, cmd
}

var attached = []volume.RawRecord{
	{Identifier: "/", Label: "", TypeCode: 3},
	{Identifier: "/media/photos", Label: "PHOTOS", TypeCode: 2},
	{Identifier: "/media/backup", Label: "BACKUP", TypeCode: 2},
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	deps, cmd := testDeps(t, attached, nil)
	orch, err := NewOrchestrator(testConfig(t), deps, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, ExitOK, RunOnce(context.Background(), orch))
	cmd.AssertNumberOfCalls(t, "Capture", 1)
}

func TestRunOnceSyncFailure(t *testing.T) {
	t.Parallel()

	deps, cmd := testDeps(t, attached, nil)
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, "FreeFileSync", mock.Anything).
		Return(command.Result{ExitCode: 1}, errors.New("exit status 1"))

	orch, err := NewOrchestrator(testConfig(t), deps, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, ExitError, RunOnce(context.Background(), orch))
}

func TestRunOnceInventoryFailure(t *testing.T) {
	t.Parallel()

	deps, cmd := testDeps(t, nil, inventory.ErrUnavailable)
	orch, err := NewOrchestrator(testConfig(t), deps, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, ExitError, RunOnce(context.Background(), orch))
	cmd.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnceFinishesSyncAfterCancel(t *testing.T) {
	t.Parallel()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}

	fsh := helpers.NewOSFS()
	root := t.TempDir()
	_, err := fsh.CreateMarker(root, helpers.DefaultMarker)
	require.NoError(t, err)

	inv := &mocks.MockInventory{}
	inv.On("List", mock.Anything).
		Return([]volume.RawRecord{{Identifier: root, Label: "BACKUP", TypeCode: 2}}, nil)

	vals := config.BaseDefaults
	vals.Sync.Program = "/bin/sh"
	vals.Sync.Args = []string{"-c", "sleep 0.5"}
	cfg, err := config.NewConfigFile(filepath.Join(t.TempDir(), config.CfgFile), vals)
	require.NoError(t, err)

	orch, err := NewOrchestrator(cfg, Deps{Exec: &command.RealExecutor{}, Fs: fsh.Fs, Inv: inv}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	defer cancel()

	assert.Equal(t, ExitOK, RunOnce(ctx, orch))
	require.Error(t, ctx.Err())
}

func TestPrintVolumes(t *testing.T) {
	t.Parallel()

	deps, cmd := testDeps(t, attached, nil)
	orch, err := NewOrchestrator(testConfig(t), deps, zerolog.Nop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintVolumes(context.Background(), &buf, orch))

	out := buf.String()
	assert.Contains(t, out, "DRIVE")
	assert.Regexp(t, `/media/photos\s+PHOTOS\s+Removable Disk\s+no`, out)
	assert.Regexp(t, `/media/backup\s+BACKUP\s+Removable Disk\s+yes`, out)
	assert.Regexp(t, `/\s+Local Disk\s+no`, out)
	cmd.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDaemon(t *testing.T) {
	t.Parallel()

	deps, cmd := testDeps(t, attached, nil)
	var runs atomic.Int32
	cmd.ExpectedCalls = nil
	cmd.On("Capture", mock.Anything, mock.Anything, "FreeFileSync", []string{"/media/backup/.sync.ffs_batch"}).
		Run(func(mock.Arguments) { runs.Add(1) }).
		Return(command.Result{}, nil)

	cfg := testConfig(t)
	orch, err := NewOrchestrator(cfg, deps, zerolog.Nop())
	require.NoError(t, err)

	src := notify.NewManualSource()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunDaemon(ctx, cfg, orch, src, zerolog.Nop())
	}()

	// startup scan
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return src.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	src.Emit(notify.DeviceArrival)
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRunDaemonAlwaysScansAtStartup(t *testing.T) {
	t.Parallel()

	deps, _ := testDeps(t, attached, nil)
	var runs atomic.Int32
	exec := &mocks.MockCommandExecutor{}
	exec.On("Capture", mock.Anything, mock.Anything, "FreeFileSync", mock.Anything).
		Run(func(mock.Arguments) { runs.Add(1) }).
		Return(command.Result{Started: true}, nil)
	deps.Exec = exec

	path := filepath.Join(t.TempDir(), config.CfgFile)
	require.NoError(t, os.WriteFile(path, []byte("config_schema = 1\n[scan]\non_startup = false\n"), 0o600))
	cfg, err := config.NewConfigFile(path, config.BaseDefaults)
	require.NoError(t, err)

	orch, err := NewOrchestrator(cfg, deps, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunDaemon(ctx, cfg, orch, notify.NewManualSource(), zerolog.Nop())
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewOrchestratorHostDeps(t *testing.T) {
	t.Parallel()

	orch, err := NewOrchestrator(testConfig(t), Deps{}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, orch)
}
