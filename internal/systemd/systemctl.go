// SPDX-License-Identifier: MPL-2.0

package systemd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

type (
	// Runner executes systemctl verbs. The production implementation shells
	// out; tests substitute a recorder.
	Runner interface {
		// Run executes `systemctl args...` and returns trimmed stdout.
		Run(ctx context.Context, args ...string) (string, error)
	}

	// ExecRunner runs the real systemctl binary.
	ExecRunner struct{}

	// Systemctl wraps a Runner with the verbs the service resource needs.
	Systemctl struct {
		runner Runner
	}
)

// Run executes systemctl with the given arguments.
func (ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "systemctl", args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errBuf.String())
		if msg == "" {
			msg = strings.TrimSpace(out.String())
		}
		return strings.TrimSpace(out.String()), fmt.Errorf("systemctl %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return strings.TrimSpace(out.String()), nil
}

// New creates a Systemctl backed by the given runner, defaulting to
// ExecRunner when runner is nil.
func New(runner Runner) *Systemctl {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Systemctl{runner: runner}
}

// DaemonReload reloads unit files after a unit was installed or changed.
func (s *Systemctl) DaemonReload(ctx context.Context) error {
	_, err := s.runner.Run(ctx, "daemon-reload")
	return err
}

// Enable marks the unit for start at boot.
func (s *Systemctl) Enable(ctx context.Context, unit string) error {
	_, err := s.runner.Run(ctx, "enable", unit)
	return err
}

// Start starts the unit.
func (s *Systemctl) Start(ctx context.Context, unit string) error {
	_, err := s.runner.Run(ctx, "start", unit)
	return err
}

// TryRestart restarts the unit only if it is already running. A unit that
// was started in the same convergence run is current by construction, so
// try-restart avoids a redundant stop/start cycle.
func (s *Systemctl) TryRestart(ctx context.Context, unit string) error {
	_, err := s.runner.Run(ctx, "try-restart", unit)
	return err
}

// IsActive reports whether the unit is running. systemctl exits non-zero for
// inactive units; that is a state, not an error.
func (s *Systemctl) IsActive(ctx context.Context, unit string) bool {
	out, err := s.runner.Run(ctx, "is-active", unit)
	return err == nil && out == "active"
}

// IsEnabled reports whether the unit is enabled for boot.
func (s *Systemctl) IsEnabled(ctx context.Context, unit string) bool {
	out, err := s.runner.Run(ctx, "is-enabled", unit)
	return err == nil && out == "enabled"
}
