// SPDX-License-Identifier: MPL-2.0

// Package resource defines the idempotent host-state assertions the recipe
// converges: directories, files, the downloaded server binary, the backing
// mount, refresh-only commands, and the systemd unit/service pair.
//
// Every resource separates inspection from mutation: Check never touches the
// host, Apply is safely re-runnable, and applying twice with no external
// drift yields Unchanged the second time.
package resource

import "context"

const (
	// StatusUnchanged means the host already matched the desired state.
	StatusUnchanged Status = iota
	// StatusChanged means Apply mutated the host to reach the desired state.
	StatusChanged
	// StatusFailed means the resource could not be converged; the run aborts.
	StatusFailed
)

type (
	// Status is the tri-state outcome of converging one resource.
	Status int

	// Evaluation is the result of checking a resource's current state
	// against its desired state, without mutating anything.
	Evaluation struct {
		// InSync is true when no Apply is needed.
		InSync bool
		// Message is a human-readable description of what was found.
		Message string
		// Diff optionally describes what Apply would change, for plan output.
		Diff string
	}

	// Resource is one idempotent host-state assertion.
	Resource interface {
		// ID uniquely identifies the resource within a convergence run.
		ID() string
		// Check inspects current host state. It must not mutate.
		Check(ctx context.Context) (Evaluation, error)
		// Apply converges the host to the desired state. It must be safely
		// re-runnable; a second Apply with no external drift is a no-op.
		Apply(ctx context.Context) (Status, error)
	}

	// Refresher is implemented by resources that react to notifications from
	// changed dependencies. The engine coalesces refreshes: Refresh runs at
	// most once per convergence run regardless of how many notifiers fired.
	Refresher interface {
		Refresh(ctx context.Context) error
	}

	// RefreshOnly marks resources that never run unconditionally: they are
	// skipped unless a notifying dependency reported a change.
	RefreshOnly interface {
		IsRefreshOnly() bool
	}
)

// String returns the lowercase status name used in logs and reports.
func (s Status) String() string {
	switch s {
	case StatusUnchanged:
		return "unchanged"
	case StatusChanged:
		return "changed"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}
