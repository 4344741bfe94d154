// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"minioctl/internal/fetch"
)

// FileCopy asserts that a target file mirrors a source file byte for byte,
// with the given ownership and mode. It installs the TLS certificate and key
// from the injected certificate source directory.
type FileCopy struct {
	Name   string
	Source string
	Target string
	Owner  Ownership
	Mode   fs.FileMode
}

// ID implements Resource.
func (f *FileCopy) ID() string { return f.Name }

// Check compares the target against the source by SHA-256 digest, then
// ownership and mode.
func (f *FileCopy) Check(_ context.Context) (Evaluation, error) {
	srcDigest, err := fetch.ComputeFileDigest(f.Source, fetch.DigestSHA256)
	if err != nil {
		return Evaluation{}, fmt.Errorf("reading source %s: %w", f.Source, err)
	}

	info, err := os.Stat(f.Target)
	if os.IsNotExist(err) {
		return Evaluation{
			Message: fmt.Sprintf("file %s is absent", f.Target),
			Diff:    fmt.Sprintf("+ install %s from %s", f.Target, f.Source),
		}, nil
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("stat %s: %w", f.Target, err)
	}

	dstDigest, err := fetch.ComputeFileDigest(f.Target, fetch.DigestSHA256)
	if err != nil {
		return Evaluation{}, fmt.Errorf("reading target %s: %w", f.Target, err)
	}
	if srcDigest != dstDigest {
		return Evaluation{
			Message: fmt.Sprintf("file %s differs from source", f.Target),
			Diff:    fmt.Sprintf("~ replace %s from %s", f.Target, f.Source),
		}, nil
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Evaluation{}, fmt.Errorf("stat %s: no ownership info", f.Target)
	}
	if !f.Owner.owns(st) || info.Mode().Perm() != f.Mode.Perm() {
		return Evaluation{
			Message: fmt.Sprintf("file %s has wrong ownership or mode", f.Target),
			Diff:    fmt.Sprintf("~ chown %d:%d, chmod %04o %s", f.Owner.UID, f.Owner.GID, f.Mode.Perm(), f.Target),
		}, nil
	}

	return Evaluation{InSync: true, Message: fmt.Sprintf("file %s in sync", f.Target)}, nil
}

// Apply writes the source content to a temp file next to the target and
// renames it into place, so readers never observe a partial certificate.
func (f *FileCopy) Apply(ctx context.Context) (Status, error) {
	eval, err := f.Check(ctx)
	if err != nil {
		return StatusFailed, err
	}
	if eval.InSync {
		return StatusUnchanged, nil
	}

	data, err := os.ReadFile(f.Source)
	if err != nil {
		return StatusFailed, fmt.Errorf("reading source %s: %w", f.Source, err)
	}

	if err := installFile(f.Target, data, f.Owner, f.Mode); err != nil {
		return StatusFailed, err
	}

	return StatusChanged, nil
}

// installFile writes data to a temp file in target's directory, converges
// mode and ownership on the temp file, then renames it over target.
func installFile(target string, data []byte, owner Ownership, mode fs.FileMode) (err error) {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Chown(tmpName, owner.UID, owner.GID); err != nil {
		return fmt.Errorf("chown %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("installing %s: %w", target, err)
	}
	return nil
}
