// SPDX-License-Identifier: MPL-2.0

// Command minioctl converges a host toward a declared MinIO deployment.
package main

import cmd "minioctl/cmd/minioctl"

func main() {
	cmd.Execute()
}
