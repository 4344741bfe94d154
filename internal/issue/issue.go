// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ChecksumMismatchId Id = iota + 1
	UnsupportedProviderId
	PermissionDeniedId
	SystemdUnavailableId
	VolumeNotMountedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to look up the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	checksumMismatchIssue = &Issue{
		id: ChecksumMismatchId,
		mdMsg: `
# Checksum verification failed!

The downloaded binary does not match the pinned checksum. The partial
download was discarded; nothing was installed.

## Common causes:
- The pinned version and checksum in your config belong to different releases
- A mirror served a stale or corrupted file
- The download was tampered with in transit

## Things you can try:
- Re-check the version/checksum pair against the published release:
~~~
$ curl -sL {base_url}/{kernel}-{arch}/archive/minio.{version}.sha256sum
~~~
- Update the pin in your config file and re-run:
~~~
$ minioctl apply
~~~

Re-running is always safe: every assertion is idempotent and the run
resumes from current host state.`,
	}

	unsupportedProviderIssue = &Issue{
		id: UnsupportedProviderId,
		mdMsg: `
# Unsupported service provider!

Only systemd is supported for service management. The run was aborted
before any service resource was touched.

## Things you can try:
- Set the provider in your config file:
~~~cue
service_provider: "systemd"
~~~
- Or disable service management entirely:
~~~cue
manage_service: false
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

Converging directories, certificates, and service units requires
privileges over the target paths.

## Things you can try:
- Run as root (the usual mode on a target host):
~~~
$ sudo minioctl apply
~~~
- Preview the pending changes without privileges:
~~~
$ minioctl plan
~~~`,
	}

	systemdUnavailableIssue = &Issue{
		id: SystemdUnavailableId,
		mdMsg: `
# systemctl not available!

Service management is enabled but systemctl could not be executed.

## Things you can try:
- Verify the host runs systemd as PID 1
- Disable service management for non-systemd hosts:
~~~cue
manage_service: false
~~~`,
	}

	volumeNotMountedIssue = &Issue{
		id: VolumeNotMountedId,
		mdMsg: `
# Backing volume not mounted!

The configured storage volume is absent from the mount table, so the
storage root was not converged. Object data must never silently land on
the root filesystem.

## Things you can try:
- Mount the volume and re-run:
~~~
$ mount /srv/minio-data && minioctl apply
~~~
- Or drop the requirement if the storage root needs no dedicated volume:
~~~cue
storage_volume: ""
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Configuration file locations (first match wins):
- --config flag
- /etc/minioctl/config.cue
- ~/.config/minioctl/config.cue
- ./config.cue

## Things you can try:
- Create a starter configuration:
~~~
$ minioctl config init
~~~
- Check the file against the schema with verbose output:
~~~
$ minioctl --verbose config show
~~~

## Example configuration:
~~~cue
version:  "2017-01-01T00-00-00Z"
checksum: "59cd931c...a94b"
owner:    "minio"
storage_root: "/var/minio"
~~~`,
	}

	issues = map[Id]*Issue{
		checksumMismatchIssue.Id():    checksumMismatchIssue,
		unsupportedProviderIssue.Id(): unsupportedProviderIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
		systemdUnavailableIssue.Id():  systemdUnavailableIssue,
		volumeNotMountedIssue.Id():    volumeNotMountedIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

func Values() []*Issue {
	v := maps.Values(issues)
	slices.SortFunc(v, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return v
}

func Get(id Id) *Issue {
	return issues[id]
}
