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
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("filename", validateFilename)
	return v
}

// validateFilename accepts a bare file name that can be joined onto a volume
// root, rejecting anything with a directory component.
func validateFilename(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" || val == "." || val == ".." {
		return false
	}
	return !strings.ContainsAny(val, `/\`) && filepath.Base(val) == val
}

// Validate checks vals against the struct tags and the cross-field rules.
func Validate(vals *Values) error {
	var errs []error

	if err := validate.Struct(vals); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q check", fe.Namespace(), fe.Tag()))
		}
	}

	if vals.ErrorReporting.Enabled && vals.ErrorReporting.DSN == "" {
		errs = append(errs, errors.New("error_reporting.dsn is required when error reporting is enabled"))
	}

	return errors.Join(errs...)
}
