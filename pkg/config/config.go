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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/plugsync/plugsync/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "PLUGSYNC_CFG"

	DefaultMarkerFile  = ".sync.ffs_batch"
	DefaultSyncProgram = "FreeFileSync"
	DefaultLogLevel    = "info"
	DefaultStderrLimit = 4096

	BackendAuto       = "auto"
	BackendPowerShell = "powershell"
	BackendWMI        = "wmi"
	BackendPartitions = "partitions"

	BackendWin32   = "win32"
	BackendUDisks  = "udisks"
	BackendUdev    = "udev"
	BackendVolumes = "volumes"
)

// Duration wraps time.Duration for TOML string parsing.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Values struct {
	LogLevel       string         `toml:"log_level" validate:"required,oneof=trace debug info warn error"`
	Marker         Marker         `toml:"marker"`
	Sync           Sync           `toml:"sync"`
	Scan           Scan           `toml:"scan"`
	Inventory      Inventory      `toml:"inventory"`
	Notify         Notify         `toml:"notify"`
	ErrorReporting ErrorReporting `toml:"error_reporting"`
	ConfigSchema   int            `toml:"config_schema"`
}

type Marker struct {
	File string `toml:"file" validate:"required,filename"`
}

type Sync struct {
	Program     string   `toml:"program" validate:"required"`
	Args        []string `toml:"args,omitempty"`
	StderrLimit int      `toml:"stderr_limit" validate:"gte=0"`
}

type Scan struct {
	Settle Duration `toml:"settle" validate:"gte=0"`
}

type Inventory struct {
	Backend string `toml:"backend" validate:"required,oneof=auto powershell wmi partitions"`
}

type Notify struct {
	Backend string `toml:"backend" validate:"required,oneof=auto win32 udisks udev volumes"`
}

type ErrorReporting struct {
	DSN     string `toml:"dsn,omitempty" validate:"omitempty,url"`
	Enabled bool   `toml:"enabled"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	LogLevel:     DefaultLogLevel,
	Marker: Marker{
		File: DefaultMarkerFile,
	},
	Sync: Sync{
		Program:     DefaultSyncProgram,
		StderrLimit: DefaultStderrLimit,
	},
	Scan: Scan{
		Settle: Duration(500 * time.Millisecond),
	},
	Inventory: Inventory{Backend: BackendAuto},
	Notify:    Notify{Backend: BackendAuto},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads config.toml from configDir, or from the path in the
// PLUGSYNC_CFG environment variable when set. A missing file is created from
// the defaults.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	if cfgPath != "" {
		log.Debug().Msgf("env config path: %s", cfgPath)
	} else {
		cfgPath = filepath.Join(configDir, CfgFile)
	}
	return NewConfigFile(cfgPath, defaults)
}

// NewConfigFile is NewConfig for an explicit file path.
//
//nolint:gocritic // config struct copied for immutability
func NewConfigFile(cfgPath string, defaults Values) (*Instance, error) {
	cfg := &Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		if err := os.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := c.defaults
	newVals.Sync.Args = slices.Clone(c.defaults.Sync.Args)
	if err := toml.Unmarshal(data, &newVals); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := Validate(&newVals); err != nil {
		return fmt.Errorf("invalid config %s: %w", c.cfgPath, err)
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (c *Instance) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfgPath
}

// Validate checks the currently held values, including any CLI overrides.
func (c *Instance) Validate() error {
	c.mu.RLock()
	vals := c.vals
	c.mu.RUnlock()
	return Validate(&vals)
}

func (c *Instance) LogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.LogLevel
}

func (c *Instance) SetLogLevel(level string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.LogLevel = level
}

func (c *Instance) MarkerFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Marker.File
}

func (c *Instance) SetMarkerFile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Marker.File = name
}

func (c *Instance) SyncProgram() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Sync.Program
}

func (c *Instance) SetSyncProgram(program string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Sync.Program = program
}

// SyncArgs returns a copy of the extra arguments passed to the sync program
// ahead of the marker path.
func (c *Instance) SyncArgs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Sync.Args)
}

func (c *Instance) StderrLimit() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Sync.StderrLimit
}

func (c *Instance) ScanSettle() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Scan.Settle)
}

func (c *Instance) InventoryBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Inventory.Backend
}

func (c *Instance) NotifyBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Notify.Backend
}

// ErrorReporting returns whether error reporting is enabled along with its
// DSN. Reporting is only effective when both are set.
func (c *Instance) ErrorReporting() (enabled bool, dsn string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting.Enabled, c.vals.ErrorReporting.DSN
}
