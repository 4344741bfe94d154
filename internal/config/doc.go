// SPDX-License-Identifier: MPL-2.0

// Package config resolves the Parameter Set that drives a convergence run.
//
// Precedence is defaults < config file < command-line flags. Config files
// are CUE, validated against an embedded schema before being merged into
// Viper, so malformed input fails with a field-level message instead of a
// half-applied parameter set. The resolved Config is immutable for the
// duration of the run.
package config
