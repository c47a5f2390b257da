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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/plugsync/plugsync/internal/telemetry"
	"github.com/plugsync/plugsync/pkg/config"
	"github.com/plugsync/plugsync/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Exit statuses.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

var errUsage = errors.New("invalid settings")

type Flags struct {
	fs          *flag.FlagSet
	LogLevel    *string
	SyncFile    *string
	SyncProgram *string
	Config      *string
	Daemon      *bool
	Once        *bool
	List        *bool
	Version     *bool
}

// SetupFlags defines all CLI flags on the process flag set.
func SetupFlags() *Flags {
	return NewFlags(flag.CommandLine)
}

// NewFlags defines all CLI flags on fs.
func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs: fs,
		LogLevel: fs.String(
			"log-level",
			config.DefaultLogLevel,
			"log level: trace, debug, info, warn or error",
		),
		SyncFile: fs.String(
			"sync-file",
			config.DefaultMarkerFile,
			"marker file name at the root of a backup drive, passed to the sync program",
		),
		SyncProgram: fs.String(
			"sync-program",
			config.DefaultSyncProgram,
			"sync program run for each backup drive",
		),
		Config: fs.String(
			"config",
			"",
			"path to config.toml",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"log to file only, without console output",
		),
		Once: fs.Bool(
			"once",
			false,
			"scan attached drives once and exit",
		),
		List: fs.Bool(
			"list",
			false,
			"print attached drives and exit",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup.
func (f *Flags) Pre() {
	if !f.fs.Parsed() {
		_ = f.fs.Parse(os.Args[1:])
	}

	if *f.Version {
		_, _ = fmt.Printf("%s v%s (%s/%s)\n", config.AppName, config.AppVersion, runtime.GOOS, runtime.GOARCH)
		os.Exit(ExitOK)
	}
}

// Apply copies explicitly passed flags over the loaded config.
func (f *Flags) Apply(cfg *config.Instance) {
	if f.isFlagPassed("log-level") {
		cfg.SetLogLevel(strings.ToLower(strings.TrimSpace(*f.LogLevel)))
	}
	if f.isFlagPassed("sync-file") {
		cfg.SetMarkerFile(*f.SyncFile)
	}
	if f.isFlagPassed("sync-program") {
		cfg.SetSyncProgram(*f.SyncProgram)
	}
}

// Setup initializes directories, logging and the user config, then applies
// flag overrides. Returns a user config object. Exits with status 2 when the
// resulting settings are invalid.
//
//nolint:gocritic // config struct copied for immutability
func Setup(f *Flags, defaultConfig config.Values) *config.Instance {
	var writers []io.Writer
	if !*f.Daemon {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := setup(f, defaultConfig, helpers.ConfigDir(), helpers.DataDir(), writers)
	switch {
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		f.fs.Usage()
		os.Exit(ExitUsage)
	case err != nil:
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}

	return cfg
}

//nolint:gocritic // config struct copied for immutability
func setup(
	f *Flags,
	defaultConfig config.Values,
	configDir string,
	dataDir string,
	writers []io.Writer,
) (*config.Instance, error) {
	if err := helpers.EnsureDirectories(configDir, dataDir); err != nil {
		return nil, fmt.Errorf("creating directories: %w", err)
	}

	if err := helpers.InitLogging(dataDir, writers); err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}

	var cfg *config.Instance
	var err error
	if *f.Config != "" {
		cfg, err = config.NewConfigFile(*f.Config, defaultConfig)
	} else {
		cfg, err = config.NewConfig(configDir, defaultConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}

	zerolog.SetGlobalLevel(helpers.ParseLevel(cfg.LogLevel()))
	log.Info().
		Str("version", config.AppVersion).
		Str("config", cfg.Path()).
		Str("marker", cfg.MarkerFile()).
		Str("program", cfg.SyncProgram()).
		Msg("plugsync starting")

	// Initialize error reporting (opt-in)
	enabled, dsn := cfg.ErrorReporting()
	if err := telemetry.Init(enabled, dsn, config.AppVersion); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
