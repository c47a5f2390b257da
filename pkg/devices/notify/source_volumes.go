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
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 100 * time.Millisecond

// VolumesSource watches the directories volumes are mounted under and
// reports a new entry as an arrival and a vanished entry as a removal.
type VolumesSource struct {
	logger   zerolog.Logger
	dirs     []string
	debounce time.Duration
}

func NewVolumesSource(dirs []string, debounce time.Duration, logger zerolog.Logger) *VolumesSource {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &VolumesSource{
		dirs:     dirs,
		debounce: debounce,
		logger:   logger,
	}
}

func (s *VolumesSource) Subscribe(ctx context.Context, handler Handler) (Subscription, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	watched := 0
	for _, dir := range s.dirs {
		if err := watcher.Add(dir); err != nil {
			s.logger.Debug().Err(err).Str("dir", dir).Msg("cannot watch mount directory")
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		return nil, fmt.Errorf("no mount directory could be watched in %v: %w", s.dirs, ErrUnsupported)
	}

	sub := &volumesSubscription{
		watcher: watcher,
		stop:    make(chan struct{}),
	}
	sub.wg.Add(1)
	go s.loop(ctx, sub, handler)

	s.logger.Debug().Strs("dirs", s.dirs).Msg("started watching mount directories")
	return sub, nil
}

func (s *VolumesSource) loop(ctx context.Context, sub *volumesSubscription, handler Handler) {
	defer sub.wg.Done()

	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.stop:
			return

		case event, ok := <-sub.watcher.Events:
			if !ok {
				return
			}
			if !s.isMountEntry(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending[event.Name] = struct{}{}
			debounceTimer.Reset(s.debounce)

		case err, ok := <-sub.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Msg("fsnotify error")

		case <-debounceTimer.C:
			for path := range pending {
				handler(entryCode(path))
			}
			pending = make(map[string]struct{})
		}
	}
}

func (s *VolumesSource) isMountEntry(name string) bool {
	parent := filepath.Clean(filepath.Dir(name))
	for _, dir := range s.dirs {
		if parent == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// entryCode decides after the debounce window whether an entry came or went.
func entryCode(path string) uint32 {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DeviceRemoveComplete
		}
		return DevNodesChanged
	}
	return DeviceArrival
}

type volumesSubscription struct {
	watcher   *fsnotify.Watcher
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func (s *volumesSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		err = s.watcher.Close()
	})
	if err != nil {
		return fmt.Errorf("failed to close fsnotify watcher: %w", err)
	}
	return nil
}
