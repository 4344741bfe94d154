// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// Dir asserts that a directory exists with the given ownership and mode.
type Dir struct {
	Name  string
	Path  string
	Owner Ownership
	Mode  fs.FileMode
}

// ID implements Resource.
func (d *Dir) ID() string { return d.Name }

// Check inspects the directory without mutating it.
func (d *Dir) Check(_ context.Context) (Evaluation, error) {
	info, err := os.Stat(d.Path)
	if os.IsNotExist(err) {
		return Evaluation{
			Message: fmt.Sprintf("directory %s is absent", d.Path),
			Diff:    fmt.Sprintf("+ mkdir %s (uid=%d gid=%d mode=%04o)", d.Path, d.Owner.UID, d.Owner.GID, d.Mode),
		}, nil
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("stat %s: %w", d.Path, err)
	}
	if !info.IsDir() {
		return Evaluation{}, fmt.Errorf("%s exists but is not a directory", d.Path)
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Evaluation{}, fmt.Errorf("stat %s: no ownership info", d.Path)
	}
	if !d.Owner.owns(st) {
		return Evaluation{
			Message: fmt.Sprintf("directory %s owned by uid=%d gid=%d", d.Path, st.Uid, st.Gid),
			Diff:    fmt.Sprintf("~ chown %d:%d %s", d.Owner.UID, d.Owner.GID, d.Path),
		}, nil
	}
	if info.Mode().Perm() != d.Mode.Perm() {
		return Evaluation{
			Message: fmt.Sprintf("directory %s has mode %04o", d.Path, info.Mode().Perm()),
			Diff:    fmt.Sprintf("~ chmod %04o %s", d.Mode.Perm(), d.Path),
		}, nil
	}

	return Evaluation{InSync: true, Message: fmt.Sprintf("directory %s in sync", d.Path)}, nil
}

// Apply creates the directory if needed and converges ownership and mode.
func (d *Dir) Apply(ctx context.Context) (Status, error) {
	eval, err := d.Check(ctx)
	if err != nil {
		return StatusFailed, err
	}
	if eval.InSync {
		return StatusUnchanged, nil
	}

	if err := os.MkdirAll(d.Path, d.Mode); err != nil {
		return StatusFailed, fmt.Errorf("creating %s: %w", d.Path, err)
	}
	// MkdirAll honors umask, so an existing-or-new directory still needs an
	// explicit chmod to land on the asserted mode.
	if err := os.Chmod(d.Path, d.Mode); err != nil {
		return StatusFailed, fmt.Errorf("chmod %s: %w", d.Path, err)
	}
	if err := os.Chown(d.Path, d.Owner.UID, d.Owner.GID); err != nil {
		return StatusFailed, fmt.Errorf("chown %s: %w", d.Path, err)
	}

	return StatusChanged, nil
}
