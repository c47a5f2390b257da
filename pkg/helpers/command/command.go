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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// NoExitCode is reported when a process never produced an exit status, for
// example because the executable could not be found.
const NoExitCode = -1

// Options configures how a command is launched.
type Options struct {
	// HideWindow prevents a console window from appearing (Windows-only).
	// On non-Windows platforms, this field is ignored.
	HideWindow bool
}

// Result holds everything a finished process produced.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is NoExitCode when the process never started or was
	// terminated by a signal.
	ExitCode int
	// Started is true once the process was running, even if it was killed
	// afterwards.
	Started bool
}

// Executor provides an abstraction over exec.Command for testability.
// This allows commands to be mocked in tests without executing real system commands.
type Executor interface {
	// Output runs a command and returns its standard output.
	// Returns the output bytes and an error if the command fails.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Capture runs a command to completion and returns its stdout, stderr
	// and exit code. The returned error is non-nil when the process could
	// not be started or exited with a non-zero status; Result is populated
	// in both cases.
	Capture(ctx context.Context, opts Options, name string, args ...string) (Result, error)
}

// RealExecutor uses actual exec.Command to execute system commands.
// This is the production implementation used in normal operation.
type RealExecutor struct{}

// Output runs a command and returns its standard output.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	applyOptions(cmd, Options{HideWindow: true})
	return cmd.Output()
}

// Capture runs a command and collects both output streams.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Capture(
	ctx context.Context,
	opts Options,
	name string,
	args ...string,
) (Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	applyOptions(cmd, opts)

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: NoExitCode,
	}
	if cmd.ProcessState != nil {
		res.Started = true
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res, err
}

// ExitCode extracts the exit status from an error returned by an Executor.
// It returns 0 for a nil error and NoExitCode when the error does not carry
// a status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return NoExitCode
}
