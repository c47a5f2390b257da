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

package volume

import "github.com/rs/zerolog"

// ClassifyKind is the pure metadata step of classification.
func ClassifyKind(raw RawRecord) Kind {
	return KindFromCode(raw.TypeCode)
}

// Classifier turns raw inventory records into volumes by combining the
// drive type lookup with a marker file check.
type Classifier struct {
	marker *MarkerChecker
	logger zerolog.Logger
}

func NewClassifier(marker *MarkerChecker, logger zerolog.Logger) *Classifier {
	return &Classifier{
		marker: marker,
		logger: logger,
	}
}

// Classify never fails. Calling it twice for the same record and the same
// filesystem state gives the same volume.
func (c *Classifier) Classify(raw RawRecord) Volume {
	v := Volume{
		Identifier:     raw.Identifier,
		Label:          raw.Label,
		Kind:           ClassifyKind(raw),
		IsBackupTarget: c.marker.Present(raw.Identifier),
	}

	c.logger.Trace().
		Str("volume", v.Identifier).
		Str("label", v.Label).
		Stringer("kind", v.Kind).
		Bool("backup_target", v.IsBackupTarget).
		Msg("classified volume")

	return v
}

// ClassifyAll classifies every record independently, keeping input order.
func (c *Classifier) ClassifyAll(records []RawRecord) []Volume {
	vols := make([]Volume, 0, len(records))
	for _, raw := range records {
		vols = append(vols, c.Classify(raw))
	}
	return vols
}
