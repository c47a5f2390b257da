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
	"fmt"

	"github.com/google/uuid"
	"github.com/plugsync/plugsync/pkg/backup"
	"github.com/plugsync/plugsync/pkg/devices/inventory"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/rs/zerolog"
)

// ScanResult summarizes one pass over the attached volumes.
type ScanResult struct {
	// Err is set when the inventory failed; the scan is then empty.
	Err error
	ID  string
	// Triggered lists the backup targets a sync was run for, in inventory
	// order, whether or not the sync succeeded.
	Triggered []volume.Volume
	// Failed holds the results of the syncs that did not succeed.
	Failed []backup.Result
	// Skipped counts volumes without a marker file.
	Skipped int
}

// Orchestrator performs scans: enumerate, classify, sync every backup
// target in turn.
type Orchestrator struct {
	inventory  inventory.Inventory
	trigger    backup.Trigger
	classifier *volume.Classifier
	logger     zerolog.Logger
}

func NewOrchestrator(
	inv inventory.Inventory,
	classifier *volume.Classifier,
	trigger backup.Trigger,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		inventory:  inv,
		classifier: classifier,
		trigger:    trigger,
		logger:     logger.With().Str("component", "scan").Logger(),
	}
}

// Snapshot enumerates and classifies the attached volumes without running
// any sync.
func (o *Orchestrator) Snapshot(ctx context.Context) ([]volume.Volume, error) {
	records, err := o.inventory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate drives: %w", err)
	}
	return o.classifier.ClassifyAll(records), nil
}

// Scan never fails as a whole. An inventory failure is logged and yields an
// empty result; a failed sync is logged and the remaining targets still run.
func (o *Orchestrator) Scan(ctx context.Context) ScanResult {
	res := ScanResult{ID: uuid.NewString()}
	logger := o.logger.With().Str("scan_id", res.ID).Logger()

	vols, err := o.Snapshot(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to enumerate drives")
		res.Err = err
		return res
	}

	logger.Debug().
		Array("volumes", volumeList(vols)).
		Msg("connected drives")

	for _, vol := range vols {
		if !vol.IsBackupTarget {
			res.Skipped++
			continue
		}

		res.Triggered = append(res.Triggered, vol)
		result := o.trigger.Run(ctx, vol)
		if !result.OK() {
			res.Failed = append(res.Failed, result)
		}
	}

	logger.Info().
		Int("triggered", len(res.Triggered)).
		Int("failed", len(res.Failed)).
		Int("skipped", res.Skipped).
		Msg("scan finished")

	return res
}

type volumeList []volume.Volume

func (l volumeList) MarshalZerologArray(a *zerolog.Array) {
	for _, v := range l {
		a.Dict(zerolog.Dict().
			Str("volume", v.Identifier).
			Str("label", v.Label).
			Str("kind", v.Kind.Description()).
			Bool("backup_target", v.IsBackupTarget))
	}
}
