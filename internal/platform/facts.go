// SPDX-License-Identifier: MPL-2.0

// Package platform gathers the host facts (kernel name, CPU architecture)
// that drive download URL construction, and performs the arch normalization
// the release mirror expects.
package platform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

var (
	// gatherUname is a test seam for unix.Uname. Production code uses the
	// real syscall; tests replace it to simulate foreign hosts.
	//
	//nolint:gochecknoglobals // Test seam requires a package-level variable.
	gatherUname = func() (sysname, machine string, err error) {
		var u unix.Utsname
		if err := unix.Uname(&u); err != nil {
			return "", "", err
		}
		return charsToString(u.Sysname[:]), charsToString(u.Machine[:]), nil
	}

	// archAliases maps uname machine values to the arch segment the release
	// mirror publishes under. Values not in the table pass through verbatim.
	archAliases = map[string]string{
		"x86_64": "amd64",
		"x86":    "386",
	}
)

// Facts holds the host attributes the recipe branches on.
type Facts struct {
	// Kernel is the lower-cased kernel name (uname -s), e.g. "linux".
	Kernel string
	// Arch is the normalized CPU architecture, e.g. "amd64".
	Arch string
}

// Gather reads the host facts from uname.
func Gather() (Facts, error) {
	sysname, machine, err := gatherUname()
	if err != nil {
		return Facts{}, fmt.Errorf("reading uname: %w", err)
	}
	return Facts{
		Kernel: strings.ToLower(sysname),
		Arch:   NormalizeArch(machine),
	}, nil
}

// NormalizeArch maps a raw uname machine string to the mirror's arch segment.
// Unknown values pass through verbatim; that can produce an unreachable
// download URL, so the pass-through is logged rather than silent.
func NormalizeArch(machine string) string {
	if mapped, ok := archAliases[machine]; ok {
		return mapped
	}
	if machine != "amd64" && machine != "386" && machine != "arm64" {
		log.Warn("unrecognized CPU architecture, using it verbatim in download URL", "arch", machine)
	}
	return machine
}

// DownloadURL builds the release binary URL:
// {base_url}/{kernel}-{arch}/archive/minio.{version}
func DownloadURL(baseURL string, facts Facts, version string) string {
	return fmt.Sprintf("%s/%s-%s/archive/minio.%s",
		strings.TrimRight(baseURL, "/"), facts.Kernel, facts.Arch, version)
}

// charsToString converts a NUL-terminated byte array from a Utsname field.
func charsToString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
