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
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// CombinedSource delivers the codes of several sources to one handler.
// Sources that fail with ErrUnsupported are skipped; any other failure
// aborts the subscription.
type CombinedSource struct {
	logger  zerolog.Logger
	sources []Source
}

func Combine(logger zerolog.Logger, sources ...Source) *CombinedSource {
	return &CombinedSource{sources: sources, logger: logger}
}

func (c *CombinedSource) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	subs := make(combinedSubscription, 0, len(c.sources))
	for i, src := range c.sources {
		sub, err := src.Subscribe(ctx, handler)
		switch {
		case errors.Is(err, ErrUnsupported):
			c.logger.Debug().Err(err).Int("source", i).Msg("skipping notification source")
			continue
		case err != nil:
			_ = subs.Close()
			//nolint:wrapcheck // sources return descriptive errors
			return nil, err
		}
		subs = append(subs, sub)
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("none of %d notification sources available: %w", len(c.sources), ErrUnsupported)
	}
	return subs, nil
}

type combinedSubscription []Subscription

func (s combinedSubscription) Close() error {
	var errs []error
	for _, sub := range s {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
