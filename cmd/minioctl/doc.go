// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for minioctl.
//
// This package implements the Cobra command hierarchy: apply and plan run
// the convergence engine against the host, and the config subcommands
// manage the CUE configuration file.
package cmd
