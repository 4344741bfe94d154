// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"

	"minioctl/internal/engine"
	"minioctl/internal/fetch"
	"minioctl/internal/issue"
	"minioctl/internal/resource"
	"minioctl/internal/systemd"
)

// renderConvergeReport prints per-resource outcomes after an apply run.
func renderConvergeReport(w io.Writer, rep *engine.Report) {
	for _, r := range rep.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", ErrorStyle.Render("✗"), ResourceStyle.Render(r.ID), r.Err)
		case r.Skipped:
			fmt.Fprintf(w, "%s %s (no notification, skipped)\n", SubtitleStyle.Render("-"), ResourceStyle.Render(r.ID))
		case r.Refreshed:
			fmt.Fprintf(w, "%s %s (refreshed)\n", WarningStyle.Render("~"), ResourceStyle.Render(r.ID))
		case r.Status == resource.StatusChanged:
			fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("~"), ResourceStyle.Render(r.ID))
		default:
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), ResourceStyle.Render(r.ID))
		}
	}

	fmt.Fprintln(w)
	if rep.Failed {
		fmt.Fprintln(w, ErrorStyle.Render("Convergence aborted."), SubtitleStyle.Render("Prior changes stay applied; re-run after fixing the failure."))
		return
	}
	if rep.Changed == 0 {
		fmt.Fprintln(w, SuccessStyle.Render("Host in sync, nothing to do."))
		return
	}
	fmt.Fprintf(w, "%s %d change(s) applied.\n", SuccessStyle.Render("Converged:"), rep.Changed)
}

// renderPlanReport prints the pending diff without touching the host.
func renderPlanReport(w io.Writer, rep *engine.Report) {
	for _, r := range rep.Results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", ErrorStyle.Render("✗"), ResourceStyle.Render(r.ID), r.Err)
		case r.Skipped:
			fmt.Fprintf(w, "%s %s (runs only when notified)\n", SubtitleStyle.Render("-"), ResourceStyle.Render(r.ID))
		case r.Status == resource.StatusChanged:
			fmt.Fprintf(w, "%s %s: %s\n", WarningStyle.Render("~"), ResourceStyle.Render(r.ID), r.Message)
		default:
			fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), ResourceStyle.Render(r.ID))
		}
	}

	fmt.Fprintln(w)
	if rep.Changed == 0 && !rep.Failed {
		fmt.Fprintln(w, SuccessStyle.Render("Host in sync, nothing to do."))
		return
	}
	fmt.Fprintf(w, "%s %d pending change(s).\n", WarningStyle.Render("Plan:"), rep.Changed)
}

// issueFor maps a convergence error to its troubleshooting card, when one
// exists for the failure class.
func issueFor(err error) (*issue.Issue, bool) {
	switch {
	case errors.Is(err, fetch.ErrChecksumMismatch):
		return issue.Get(issue.ChecksumMismatchId), true
	case errors.Is(err, systemd.ErrUnsupportedProvider):
		return issue.Get(issue.UnsupportedProviderId), true
	case errors.Is(err, resource.ErrVolumeNotMounted):
		return issue.Get(issue.VolumeNotMountedId), true
	case errors.Is(err, exec.ErrNotFound):
		return issue.Get(issue.SystemdUnavailableId), true
	case errors.Is(err, fs.ErrPermission):
		return issue.Get(issue.PermissionDeniedId), true
	default:
		return nil, false
	}
}

// renderFailure prints the error plus its troubleshooting card if the
// failure class has one.
func renderFailure(w io.Writer, err error, verboseMode bool) {
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verboseMode))
	if iss, ok := issueFor(err); ok {
		if rendered, renderErr := iss.Render("dark"); renderErr == nil {
			fmt.Fprint(w, rendered)
		}
	}
}
