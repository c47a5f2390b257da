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
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/plugsync/plugsync/pkg/backup"
	"github.com/plugsync/plugsync/pkg/config"
	"github.com/plugsync/plugsync/pkg/devices/inventory"
	"github.com/plugsync/plugsync/pkg/devices/notify"
	"github.com/plugsync/plugsync/pkg/devices/volume"
	"github.com/plugsync/plugsync/pkg/helpers/command"
	"github.com/plugsync/plugsync/pkg/service"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Deps are the host facilities the scan pipeline runs against. Nil fields
// fall back to the real implementations.
type Deps struct {
	Exec   command.Executor
	Fs     afero.Fs
	Source notify.Source
	Inv    inventory.Inventory
}

// NewOrchestrator builds the scan pipeline from config.
func NewOrchestrator(cfg *config.Instance, deps Deps, logger zerolog.Logger) (*service.Orchestrator, error) {
	if deps.Exec == nil {
		deps.Exec = &command.RealExecutor{}
	}
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}

	inv := deps.Inv
	if inv == nil {
		var err error
		inv, err = inventory.New(cfg.InventoryBackend(), deps.Exec, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up volume inventory: %w", err)
		}
	}

	marker := volume.NewMarkerChecker(deps.Fs, cfg.MarkerFile(), logger)
	classifier := volume.NewClassifier(marker, logger)
	trigger := backup.NewProgramTrigger(deps.Exec, backup.Options{
		Program:     cfg.SyncProgram(),
		MarkerFile:  cfg.MarkerFile(),
		Args:        cfg.SyncArgs(),
		StderrLimit: cfg.StderrLimit(),
	}, logger)

	return service.NewOrchestrator(inv, classifier, trigger, logger), nil
}

// RunDaemon watches for device changes until ctx is cancelled.
func RunDaemon(
	ctx context.Context,
	cfg *config.Instance,
	orch *service.Orchestrator,
	source notify.Source,
	logger zerolog.Logger,
) error {
	if source == nil {
		var err error
		source, err = notify.New(cfg.NotifyBackend(), logger)
		if err != nil {
			return fmt.Errorf("failed to set up device notifications: %w", err)
		}
	}

	worker := service.NewWorker(orch, service.WorkerOptions{
		Settle:      cfg.ScanSettle(),
		InitialScan: true,
	}, logger)
	router := notify.NewRouter(logger.With().Str("component", "router").Logger())

	//nolint:wrapcheck // service errors are already descriptive
	return service.New(source, router, worker, logger).Run(ctx)
}

// RunOnce performs a single scan and returns the process exit status.
// Cancelling ctx does not interrupt a sync that is already running.
func RunOnce(ctx context.Context, orch *service.Orchestrator) int {
	res := orch.Scan(context.WithoutCancel(ctx))
	if res.Err != nil || len(res.Failed) > 0 {
		return ExitError
	}
	return ExitOK
}

// PrintVolumes writes a table of the attached volumes.
func PrintVolumes(ctx context.Context, w io.Writer, orch *service.Orchestrator) error {
	vols, err := orch.Snapshot(ctx)
	if err != nil {
		//nolint:wrapcheck // already wrapped by Snapshot
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DRIVE\tLABEL\tTYPE\tBACKUP")
	for _, v := range vols {
		backupTarget := "no"
		if v.IsBackupTarget {
			backupTarget = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Identifier, v.Label, v.Kind.Description(), backupTarget)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write drive list: %w", err)
	}
	return nil
}
