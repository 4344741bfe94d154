// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileCopy_InstallsCertificate(t *testing.T) {
	t.Parallel()
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	source := filepath.Join(srcDir, "public.crt")
	target := filepath.Join(dstDir, "public.crt")
	if err := os.WriteFile(source, []byte("-----BEGIN CERTIFICATE-----\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fc := &FileCopy{Name: "public-cert", Source: source, Target: target, Owner: CurrentOwnership(), Mode: 0o600}
	ctx := context.Background()

	status, err := fc.Apply(ctx)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if status != StatusChanged {
		t.Errorf("apply = %v, want changed", status)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading target: %v", err)
	}
	if string(data) != "-----BEGIN CERTIFICATE-----\n" {
		t.Errorf("content = %q", data)
	}
	info, _ := os.Stat(target)
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %04o, want 0600", info.Mode().Perm())
	}

	// Idempotence: second apply is a no-op.
	status, err = fc.Apply(ctx)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if status != StatusUnchanged {
		t.Errorf("second apply = %v, want unchanged", status)
	}
}

func TestFileCopy_ReplacesDriftedContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	source := filepath.Join(dir, "private.key")
	target := filepath.Join(dir, "installed.key")
	if err := os.WriteFile(source, []byte("new key"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("old key"), 0o600); err != nil {
		t.Fatal(err)
	}

	fc := &FileCopy{Name: "private-key", Source: source, Target: target, Owner: CurrentOwnership(), Mode: 0o600}

	status, err := fc.Apply(context.Background())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if status != StatusChanged {
		t.Errorf("apply = %v, want changed", status)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "new key" {
		t.Errorf("content = %q, want new key", data)
	}
}

func TestFileCopy_MissingSourceIsError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fc := &FileCopy{
		Name:   "private-key",
		Source: filepath.Join(dir, "absent.key"),
		Target: filepath.Join(dir, "installed.key"),
		Owner:  CurrentOwnership(),
		Mode:   0o600,
	}
	if _, err := fc.Check(context.Background()); err == nil {
		t.Error("expected error for missing source")
	}
}
