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

package service

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Scanner runs a complete scan.
type Scanner interface {
	Scan(ctx context.Context) ScanResult
}

// WorkerOptions configure a Worker.
type WorkerOptions struct {
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// OnScan is called after every scan, on the worker goroutine.
	OnScan func(ScanResult)
	// Settle is how long requests must stop arriving before a scan starts.
	Settle time.Duration
	// InitialScan runs one scan as soon as Run starts, without settling.
	InitialScan bool
}

// Worker serializes scans on a single goroutine. At most one request is
// ever pending; requests made while one is pending are merged into it.
type Worker struct {
	scanner Scanner
	clock   clockwork.Clock
	pending chan struct{}
	onScan  func(ScanResult)
	logger  zerolog.Logger
	opts    WorkerOptions
}

func NewWorker(scanner Scanner, opts WorkerOptions, logger zerolog.Logger) *Worker {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Worker{
		scanner: scanner,
		clock:   clock,
		pending: make(chan struct{}, 1),
		onScan:  opts.OnScan,
		opts:    opts,
		logger:  logger.With().Str("component", "worker").Logger(),
	}
}

// Request schedules a scan. It never blocks and is safe to call from any
// goroutine.
func (w *Worker) Request() {
	select {
	case w.pending <- struct{}{}:
		w.logger.Trace().Msg("scan requested")
	default:
		w.logger.Trace().Msg("scan already pending")
	}
}

// Run processes requests until ctx is cancelled. A scan that has started
// always runs to completion, even if ctx is cancelled meanwhile.
func (w *Worker) Run(ctx context.Context) error {
	if w.opts.InitialScan {
		w.scan(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.pending:
		}

		if !w.settle(ctx) {
			return nil
		}
		w.scan(ctx)
	}
}

// settle waits until no request has arrived for the settle duration.
// Returns false if ctx was cancelled first.
func (w *Worker) settle(ctx context.Context) bool {
	if w.opts.Settle <= 0 {
		return ctx.Err() == nil
	}

	timer := w.clock.NewTimer(w.opts.Settle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-w.pending:
			timer.Reset(w.opts.Settle)
		case <-timer.Chan():
			return true
		}
	}
}

func (w *Worker) scan(ctx context.Context) {
	start := w.clock.Now()
	res := w.scanner.Scan(context.WithoutCancel(ctx))
	w.logger.Debug().
		Str("scan_id", res.ID).
		Dur("took", w.clock.Since(start)).
		Msg("scan complete")
	if w.onScan != nil {
		w.onScan(res)
	}
}
