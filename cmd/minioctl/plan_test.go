// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
)

func TestRunPlan_ReportsDriftWithoutMutating(t *testing.T) {
	t.Parallel()
	cfg := testHostConfig(t)

	var out bytes.Buffer
	p := planParams{
		stdout: &out,
		stderr: io.Discard,
		cfg:    cfg,
		logger: quietLogger(),
	}

	if err := runPlan(context.Background(), p); err != nil {
		t.Fatalf("plan: %v\noutput:\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "pending change(s)") {
		t.Errorf("plan on an empty host should report pending changes, got:\n%s", out.String())
	}

	// Plan never mutates.
	if _, err := os.Stat(cfg.StorageRoot); !os.IsNotExist(err) {
		t.Errorf("plan created %s", cfg.StorageRoot)
	}
	if _, err := os.Stat(cfg.ConfigurationDirectory); !os.IsNotExist(err) {
		t.Errorf("plan created %s", cfg.ConfigurationDirectory)
	}
}

func TestRunPlan_InSyncAfterApply(t *testing.T) {
	t.Parallel()
	cfg := testHostConfig(t)

	if err := runApply(context.Background(), applyParams{
		stdout: io.Discard,
		stderr: io.Discard,
		cfg:    cfg,
		logger: quietLogger(),
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var out bytes.Buffer
	if err := runPlan(context.Background(), planParams{
		stdout: &out,
		stderr: io.Discard,
		cfg:    cfg,
		logger: quietLogger(),
	}); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out.String(), "nothing to do") {
		t.Errorf("plan after apply should be clean, got:\n%s", out.String())
	}
}
