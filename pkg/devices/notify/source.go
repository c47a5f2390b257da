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
	"sync"

	"github.com/plugsync/plugsync/pkg/config"
	"github.com/plugsync/plugsync/pkg/helpers/syncutil"
	"github.com/rs/zerolog"
)

// ErrUnsupported is returned when the requested backend cannot be used on
// the current platform.
var ErrUnsupported = errors.New("notification backend not supported on this platform")

// Handler receives raw device-change codes. It may be called from an OS
// thread owned by the source and must return quickly.
type Handler func(code uint32)

// Subscription is an active registration with a Source.
type Subscription interface {
	// Close stops delivery. No handler call starts after Close returns.
	Close() error
}

// Source delivers device-change notifications to a handler.
type Source interface {
	// Subscribe starts delivering codes to handler until the returned
	// subscription is closed or ctx is cancelled. An error means the host
	// notification facility could not be set up.
	Subscribe(ctx context.Context, handler Handler) (Subscription, error)
}

// New returns the notification source for a configured backend name. The
// "auto" backend picks the best source available on this platform.
func New(backend string, logger zerolog.Logger) (Source, error) {
	logger = logger.With().Str("component", "notify").Logger()
	if backend == "" {
		backend = config.BackendAuto
	}
	src, err := platformSource(backend, logger)
	if err != nil {
		return nil, fmt.Errorf("notification backend %q: %w", backend, err)
	}
	return src, nil
}

// ManualSource is a Source driven by calls to Emit, for callers that
// receive device events through their own channel.
type ManualSource struct {
	handlers map[int]Handler
	next     int
	mu       syncutil.Mutex
}

func NewManualSource() *ManualSource {
	return &ManualSource{handlers: make(map[int]Handler)}
}

func (m *ManualSource) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	m.mu.Lock()
	id := m.next
	m.next++
	m.handlers[id] = handler
	m.mu.Unlock()

	sub := &manualSubscription{src: m, id: id, stop: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.stop:
		}
	}()
	return sub, nil
}

// Emit delivers a code to every active subscriber synchronously.
func (m *ManualSource) Emit(code uint32) {
	m.mu.Lock()
	handlers := make([]Handler, 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(code)
	}
}

// Subscribers returns the number of open subscriptions.
func (m *ManualSource) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

type manualSubscription struct {
	src       *ManualSource
	stop      chan struct{}
	id        int
	closeOnce sync.Once
}

func (s *manualSubscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.src.mu.Lock()
		delete(s.src.handlers, s.id)
		s.src.mu.Unlock()
	})
	return nil
}
