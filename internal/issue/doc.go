// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context: the ActionableError
// builder used at CLI boundaries, and a small catalog of rendered help
// texts for the recurring provisioning failure classes.
package issue
