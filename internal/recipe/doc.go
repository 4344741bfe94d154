// SPDX-License-Identifier: MPL-2.0

// Package recipe assembles the convergence graph for a MinIO host from a
// validated configuration: the ordered directory chain, certificate
// installation, the pinned binary download, and the systemd unit and
// service, wired together with Require and Notify edges.
package recipe
