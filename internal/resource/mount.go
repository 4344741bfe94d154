// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// mountsPath is the mount table consulted by Mount. Tests point it at a
// fixture file.
//
//nolint:gochecknoglobals // Test seam requires a package-level variable.
var mountsPath = "/proc/self/mounts"

// ErrVolumeNotMounted is returned when the backing volume precondition fails.
var ErrVolumeNotMounted = errors.New("backing volume not mounted")

// Mount is the check-only precondition that a backing volume or dataset for
// the storage root is present. Provisioning the volume itself is the
// platform's job; this resource only refuses to converge storage on a host
// where the volume is missing, so a broken mount never silently fills the
// root filesystem with object data.
type Mount struct {
	Name string
	// Volume is matched against both the device and the mount point columns
	// of the mount table, so either "/dev/vdb1" or "/srv/minio-data" works.
	Volume string
}

// ID implements Resource.
func (m *Mount) ID() string { return m.Name }

// Check scans the mount table for the volume.
func (m *Mount) Check(_ context.Context) (Evaluation, error) {
	mounted, err := volumeMounted(m.Volume)
	if err != nil {
		return Evaluation{}, err
	}
	if !mounted {
		return Evaluation{
			Message: fmt.Sprintf("backing volume %s is not mounted", m.Volume),
			Diff:    fmt.Sprintf("! volume %s must be mounted before storage can converge", m.Volume),
		}, nil
	}
	return Evaluation{InSync: true, Message: fmt.Sprintf("backing volume %s is mounted", m.Volume)}, nil
}

// Apply never mutates: a missing backing volume is fatal.
func (m *Mount) Apply(ctx context.Context) (Status, error) {
	eval, err := m.Check(ctx)
	if err != nil {
		return StatusFailed, err
	}
	if eval.InSync {
		return StatusUnchanged, nil
	}
	return StatusFailed, fmt.Errorf("%w: %s", ErrVolumeNotMounted, m.Volume)
}

func volumeMounted(volume string) (_ bool, err error) {
	f, err := os.Open(mountsPath)
	if err != nil {
		return false, fmt.Errorf("reading mount table %s: %w", mountsPath, err)
	}
	defer func() { _ = f.Close() }() // read-only file handle

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// fstab format: device mountpoint fstype options dump pass
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == volume || fields[1] == volume {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("scanning mount table: %w", err)
	}
	return false, nil
}
