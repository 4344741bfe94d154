// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDir_CreatesAndIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "storage")
	d := &Dir{Name: "storage-root", Path: path, Owner: CurrentOwnership(), Mode: 0o755}
	ctx := context.Background()

	status, err := d.Apply(ctx)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if status != StatusChanged {
		t.Errorf("first apply = %v, want changed", status)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %04o, want 0755", info.Mode().Perm())
	}

	// Second run with no drift must be a no-op.
	status, err = d.Apply(ctx)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if status != StatusUnchanged {
		t.Errorf("second apply = %v, want unchanged", status)
	}
}

func TestDir_ConvergesModeDrift(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "etcdir")
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatal(err)
	}

	d := &Dir{Name: "config-dir", Path: path, Owner: CurrentOwnership(), Mode: 0o755}
	ctx := context.Background()

	eval, err := d.Check(ctx)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if eval.InSync {
		t.Fatal("expected drift for wrong mode")
	}

	status, err := d.Apply(ctx)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if status != StatusChanged {
		t.Errorf("apply = %v, want changed", status)
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0o755 {
		t.Errorf("mode = %04o, want 0755", info.Mode().Perm())
	}
}

func TestDir_FileInTheWayIsError(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "clash")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := &Dir{Name: "install-dir", Path: path, Owner: CurrentOwnership(), Mode: 0o755}
	if _, err := d.Check(context.Background()); err == nil {
		t.Error("expected error when a file occupies the directory path")
	}
}
