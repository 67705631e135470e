// Copyright 2025 The Lugares Authors
// SPDX-License-Identifier: Apache-2.0

package dbscan

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every error returned from New.
var ErrInvalidConfig = errors.New("dbscan: invalid configuration")

// ConfigError describes a rejected construction parameter.
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dbscan: invalid %s %v: %s", e.Param, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsConfigError reports whether err was caused by invalid engine parameters.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
