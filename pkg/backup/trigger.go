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

// Package backup runs the external synchronization program for a volume.
package backup

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/rs/zerolog"
)

// DefaultStderrLimit is how many bytes of stderr a Result keeps when no
// limit is configured.
const DefaultStderrLimit = 4096

var (
	ErrLaunch  = errors.New("sync program could not be started")
	ErrNonZero = errors.New("sync program exited with non-zero status")
)

// Result reports the outcome of one sync run.
type Result struct {
	// Err is nil on success and wraps ErrLaunch or ErrNonZero otherwise.
	Err error
	// Marker is the path handed to the sync program.
	Marker string
	// Stderr holds the tail of the program's standard error, at most the
	// configured limit.
	Stderr string
	// ExitCode is command.NoExitCode when the program never ran or was
	// killed by a signal.
	ExitCode int
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Trigger runs a sync for one volume. Run blocks until the program exits
// and never retries.
type Trigger interface {
	Run(ctx context.Context, vol volume.Volume) Result
}

// Options configure a ProgramTrigger.
type Options struct {
	Program     string
	MarkerFile  string
	Args        []string
	StderrLimit int
}

// ProgramTrigger launches the configured program with the volume's marker
// path as its last argument.
type ProgramTrigger struct {
	exec   command.Executor
	logger zerolog.Logger
	opts   Options
}

func NewProgramTrigger(exec command.Executor, opts Options, logger zerolog.Logger) *ProgramTrigger {
	if exec == nil {
		exec = &command.RealExecutor{}
	}
	if opts.StderrLimit <= 0 {
		opts.StderrLimit = DefaultStderrLimit
	}
	opts.Args = slices.Clone(opts.Args)
	return &ProgramTrigger{
		exec:   exec,
		opts:   opts,
		logger: logger.With().Str("component", "backup").Logger(),
	}
}

func (p *ProgramTrigger) Run(ctx context.Context, vol volume.Volume) Result {
	marker := vol.MarkerPath(p.opts.MarkerFile)
	args := append(slices.Clone(p.opts.Args), marker)

	p.logger.Info().
		Str("volume", vol.Identifier).
		Str("label", vol.Label).
		Str("marker", marker).
		Msg("backup drive plugged in, starting sync")

	res, err := p.exec.Capture(ctx, command.Options{HideWindow: true}, p.opts.Program, args...)
	out := Result{
		Marker:   marker,
		ExitCode: res.ExitCode,
		Stderr:   tail(res.Stderr, p.opts.StderrLimit),
	}

	switch {
	case err == nil && res.ExitCode == 0:
		p.logger.Info().
			Str("volume", vol.Identifier).
			Msg("sync complete")
		return out
	case err == nil:
		out.Err = fmt.Errorf("%w: %d", ErrNonZero, res.ExitCode)
	case !res.Started && res.ExitCode == command.NoExitCode:
		out.Err = fmt.Errorf("%w: %s: %w", ErrLaunch, p.opts.Program, err)
	default:
		out.Err = fmt.Errorf("%w: %d: %w", ErrNonZero, res.ExitCode, err)
	}

	p.logger.Error().Err(out.Err).
		Str("volume", vol.Identifier).
		Str("marker", marker).
		Int("exit_code", out.ExitCode).
		Str("stderr", out.Stderr).
		Msg("sync failed")
	p.logger.Debug().
		Str("volume", vol.Identifier).
		Str("stdout", tail(res.Stdout, p.opts.StderrLimit)).
		Msg("sync program output")

	return out
}

// tail keeps the last limit bytes, which is where programs usually put
// the reason they failed.
func tail(b []byte, limit int) string {
	if len(b) <= limit {
		return string(b)
	}
	return string(b[len(b)-limit:])
}
