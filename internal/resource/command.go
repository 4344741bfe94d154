// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Command is a refresh-only exec assertion: a shell command line that runs
// through the embedded mvdan/sh interpreter, and only when a notifying
// resource reported a change. The recipe uses it for the recursive
// ownership fix-ups after a directory assertion converges.
type Command struct {
	Name   string
	Script string
	// Stdout and Stderr default to the process streams when nil.
	Stdout io.Writer
	Stderr io.Writer
}

// ID implements Resource.
func (c *Command) ID() string { return c.Name }

// IsRefreshOnly marks the command as notification-driven: the engine skips
// it entirely unless a notifier reported Changed.
func (c *Command) IsRefreshOnly() bool { return true }

// Check validates the script syntax. A refresh-only resource is always in
// sync on its own; only notifications make it run.
func (c *Command) Check(_ context.Context) (Evaluation, error) {
	if _, err := syntax.NewParser().Parse(strings.NewReader(c.Script), c.Name); err != nil {
		return Evaluation{}, fmt.Errorf("script syntax error in %s: %w", c.Name, err)
	}
	return Evaluation{InSync: true, Message: fmt.Sprintf("command %s runs only on refresh", c.Name)}, nil
}

// Apply is a no-op outside a refresh; the engine never calls it for
// refresh-only resources.
func (c *Command) Apply(_ context.Context) (Status, error) {
	return StatusUnchanged, nil
}

// Refresh runs the script through the embedded shell interpreter.
func (c *Command) Refresh(ctx context.Context) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(c.Script), c.Name)
	if err != nil {
		return fmt.Errorf("parsing script for %s: %w", c.Name, err)
	}

	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("creating shell interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		return fmt.Errorf("command %s: %w", c.Name, err)
	}
	return nil
}
