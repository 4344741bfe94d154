// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Message(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	err := NewErrorContext().
		WithOperation("download minio binary").
		WithResource("https://dl.example.com/linux-amd64/archive/minio.v1").
		WithSuggestion("Check the mirror URL").
		Wrap(cause).
		Build()

	if !strings.Contains(err.Error(), "failed to download minio binary") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable via errors.Is")
	}
	if !err.HasSuggestions() {
		t.Error("expected suggestions")
	}
}

func TestActionableError_FormatVerbose(t *testing.T) {
	t.Parallel()
	inner := errors.New("inner")
	err := NewErrorContext().
		WithOperation("verify binary checksum").
		Wrap(inner).
		Build()

	out := err.Format(true)
	if !strings.Contains(out, "Error chain:") {
		t.Errorf("verbose format missing chain: %q", out)
	}
}

func TestBuild_RequiresOperation(t *testing.T) {
	t.Parallel()
	if err := NewErrorContext().WithResource("/etc/minio").BuildError(); err != nil {
		t.Errorf("expected nil error without operation, got %v", err)
	}
}

func TestWrapWithOperation_NilPassthrough(t *testing.T) {
	t.Parallel()
	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestCatalog_AllIdsResolve(t *testing.T) {
	t.Parallel()
	for _, id := range []Id{
		ChecksumMismatchId,
		UnsupportedProviderId,
		PermissionDeniedId,
		SystemdUnavailableId,
		VolumeNotMountedId,
		ConfigLoadFailedId,
	} {
		if Get(id) == nil {
			t.Errorf("issue %d missing from catalog", id)
		}
	}
	if len(Values()) != 6 {
		t.Errorf("Values() = %d entries, want 6", len(Values()))
	}
}
