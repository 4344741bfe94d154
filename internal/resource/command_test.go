// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommand_IsRefreshOnly(t *testing.T) {
	t.Parallel()
	c := &Command{Name: "fix-storage-root", Script: "echo noop"}
	if !c.IsRefreshOnly() {
		t.Error("Command must be refresh-only")
	}

	// Apply outside a refresh never runs the script.
	status, err := c.Apply(context.Background())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if status != StatusUnchanged {
		t.Errorf("apply = %v, want unchanged", status)
	}
}

func TestCommand_RefreshRunsScript(t *testing.T) {
	t.Parallel()
	marker := filepath.Join(t.TempDir(), "ran")
	var out bytes.Buffer
	c := &Command{
		Name:   "fix-config-dir",
		Script: "echo fixed > " + marker,
		Stdout: &out,
		Stderr: &out,
	}

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	if strings.TrimSpace(string(data)) != "fixed" {
		t.Errorf("marker content = %q", data)
	}
}

func TestCommand_SyntaxErrorSurfacesInCheck(t *testing.T) {
	t.Parallel()
	c := &Command{Name: "broken", Script: "if then fi ((("}
	if _, err := c.Check(context.Background()); err == nil {
		t.Error("expected syntax error")
	}
}

func TestCommand_RefreshPropagatesExitStatus(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	c := &Command{Name: "failing", Script: "exit 3", Stdout: &out, Stderr: &out}
	if err := c.Refresh(context.Background()); err == nil {
		t.Error("expected non-zero exit to surface as error")
	}
}
