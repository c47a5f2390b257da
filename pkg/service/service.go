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

// Package service wires device notifications to volume scans.
package service

import (
	"context"
	"fmt"

	"github.com/plugsync/plugsync/pkg/devices/notify"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Service subscribes to device notifications and schedules a scan for every
// topology change.
type Service struct {
	source notify.Source
	router *notify.Router
	worker *Worker
	logger zerolog.Logger
}

func New(source notify.Source, router *notify.Router, worker *Worker, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		router: router,
		worker: worker,
		logger: logger.With().Str("component", "service").Logger(),
	}
}

// Run blocks until ctx is cancelled and the scan in progress, if any, has
// finished. It fails only if the notification subscription cannot be set
// up.
func (s *Service) Run(ctx context.Context) error {
	sub, err := s.source.Subscribe(ctx, s.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to device notifications: %w", err)
	}
	s.logger.Info().Msg("waiting for drives")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.worker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := sub.Close(); err != nil {
			return fmt.Errorf("failed to close notification subscription: %w", err)
		}
		return nil
	})

	err = g.Wait()
	s.logger.Info().Msg("stopped")
	if err != nil {
		return fmt.Errorf("service stopped with error: %w", err)
	}
	return nil
}

func (s *Service) handle(code uint32) {
	if s.router.Route(code) != notify.Rescan {
		return
	}
	s.logger.Info().
		Str("event", notify.CodeName(code)).
		Msg("a device has been plugged in (or out)")
	s.worker.Request()
}
