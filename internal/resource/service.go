// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"minioctl/internal/systemd"
)

type (
	// ServiceUnit asserts that the rendered service unit file is installed
	// under the systemd unit directory. A change triggers daemon-reload and
	// notifies the Service resource.
	ServiceUnit struct {
		Name    string
		Path    string
		Content []byte
		Ctl     *systemd.Systemctl
	}

	// Service asserts that the systemd service is running and enabled. When
	// notified by the unit, the binary, or a certificate, it restarts —
	// once per convergence run, however many notifiers fired.
	Service struct {
		Name string
		Unit string
		Ctl  *systemd.Systemctl
	}
)

// ID implements Resource.
func (u *ServiceUnit) ID() string { return u.Name }

// Check compares the installed unit file with the rendered content.
func (u *ServiceUnit) Check(_ context.Context) (Evaluation, error) {
	current, err := os.ReadFile(u.Path)
	if os.IsNotExist(err) {
		return Evaluation{
			Message: fmt.Sprintf("unit %s is absent", u.Path),
			Diff:    fmt.Sprintf("+ install %s", u.Path),
		}, nil
	}
	if err != nil {
		return Evaluation{}, fmt.Errorf("reading %s: %w", u.Path, err)
	}
	if !bytes.Equal(current, u.Content) {
		return Evaluation{
			Message: fmt.Sprintf("unit %s differs from rendered template", u.Path),
			Diff:    fmt.Sprintf("~ rewrite %s", u.Path),
		}, nil
	}
	return Evaluation{InSync: true, Message: fmt.Sprintf("unit %s in sync", u.Path)}, nil
}

// Apply installs the rendered unit and reloads the systemd daemon so the new
// definition is visible before the service resource is asserted.
func (u *ServiceUnit) Apply(ctx context.Context) (Status, error) {
	eval, err := u.Check(ctx)
	if err != nil {
		return StatusFailed, err
	}
	if eval.InSync {
		return StatusUnchanged, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(u.Path), filepath.Base(u.Path)+".*")
	if err != nil {
		return StatusFailed, fmt.Errorf("creating temp unit file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(u.Content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return StatusFailed, fmt.Errorf("writing unit file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return StatusFailed, fmt.Errorf("closing unit file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return StatusFailed, fmt.Errorf("chmod unit file: %w", err)
	}
	if err := os.Rename(tmpName, u.Path); err != nil {
		_ = os.Remove(tmpName)
		return StatusFailed, fmt.Errorf("installing %s: %w", u.Path, err)
	}

	if err := u.Ctl.DaemonReload(ctx); err != nil {
		return StatusFailed, err
	}
	return StatusChanged, nil
}

// ID implements Resource.
func (s *Service) ID() string { return s.Name }

// Check reports whether the service is running and enabled.
func (s *Service) Check(ctx context.Context) (Evaluation, error) {
	active := s.Ctl.IsActive(ctx, s.Unit)
	enabled := s.Ctl.IsEnabled(ctx, s.Unit)
	if active && enabled {
		return Evaluation{InSync: true, Message: fmt.Sprintf("service %s running and enabled", s.Unit)}, nil
	}
	return Evaluation{
		Message: fmt.Sprintf("service %s active=%t enabled=%t", s.Unit, active, enabled),
		Diff:    fmt.Sprintf("~ enable and start %s", s.Unit),
	}, nil
}

// Apply enables and starts the service. The service is asserted exactly once
// per run; restart-on-notify is handled separately by Refresh.
func (s *Service) Apply(ctx context.Context) (Status, error) {
	eval, err := s.Check(ctx)
	if err != nil {
		return StatusFailed, err
	}
	if eval.InSync {
		return StatusUnchanged, nil
	}

	if !s.Ctl.IsEnabled(ctx, s.Unit) {
		if err := s.Ctl.Enable(ctx, s.Unit); err != nil {
			return StatusFailed, err
		}
	}
	if !s.Ctl.IsActive(ctx, s.Unit) {
		if err := s.Ctl.Start(ctx, s.Unit); err != nil {
			return StatusFailed, err
		}
	}
	return StatusChanged, nil
}

// Refresh restarts the service after a notifier changed. The engine
// coalesces refreshes, so multiple notifiers still produce a single restart.
// try-restart leaves a service alone that Apply started moments ago with the
// already-current binary and unit.
func (s *Service) Refresh(ctx context.Context) error {
	return s.Ctl.TryRestart(ctx, s.Unit)
}
