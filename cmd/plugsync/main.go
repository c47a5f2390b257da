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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/plugsync/plugsync/internal/telemetry"
	"github.com/plugsync/plugsync/pkg/cli"
	"github.com/plugsync/plugsync/pkg/config"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := cli.SetupFlags()
	flags.Pre()

	cfg := cli.Setup(flags, config.BaseDefaults)
	defer telemetry.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch, err := cli.NewOrchestrator(cfg, cli.Deps{}, log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("error setting up scanner")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return cli.ExitError
	}

	switch {
	case *flags.List:
		if err := cli.PrintVolumes(ctx, os.Stdout, orch); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return cli.ExitError
		}
		return cli.ExitOK
	case *flags.Once:
		return cli.RunOnce(ctx, orch)
	}

	err = cli.RunDaemon(ctx, cfg, orch, nil, log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("error running service")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return cli.ExitError
	}

	log.Info().Msg("plugsync stopped")
	return cli.ExitOK
}
