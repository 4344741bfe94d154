// SPDX-License-Identifier: MPL-2.0

// Package engine runs one synchronous convergence pass over a resource
// graph: topological order, Check-then-Apply per resource, fatal abort on
// failure, and per-run-coalesced notification propagation.
package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"minioctl/internal/dag"
	"minioctl/internal/resource"
)

type (
	// Result is the recorded outcome for one resource.
	Result struct {
		ID        string
		Status    resource.Status
		Message   string
		Refreshed bool
		Skipped   bool
		Err       error
	}

	// Report aggregates a full convergence (or plan) pass.
	Report struct {
		Results []Result
		Changed int
		Failed  bool
	}

	// Engine converges a resource graph. Evaluation is single-threaded and
	// strictly ordered; the engine assumes it is the sole writer on the host
	// and does not coordinate with concurrent runs.
	Engine struct {
		logger *log.Logger
	}
)

// New creates an Engine. A nil logger falls back to the package default.
func New(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{logger: logger}
}

// Converge applies every resource in dependency order. The first failure
// aborts the run: remaining resources are not evaluated and host state
// converged so far stays applied (no rollback). Re-invocation is the only
// retry mechanism.
//
// Notification semantics: when a resource reports Changed, every Notify
// target is marked pending-refresh. Refresh-only resources are skipped
// entirely unless marked. A Refresher target refreshes at most once per run
// regardless of notifier count, and not at all when its own Apply already
// changed it this run (a service started moments ago is already current).
func (e *Engine) Converge(ctx context.Context, g *dag.Graph, resources map[string]resource.Resource) (*Report, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	pending := make(map[string]bool)

	for _, id := range order {
		res, ok := resources[id]
		if !ok {
			return nil, fmt.Errorf("graph node %q has no resource", id)
		}

		if isRefreshOnly(res) {
			result, err := e.convergeRefreshOnly(ctx, res, pending[id])
			report.Results = append(report.Results, result)
			if err != nil {
				report.Failed = true
				return report, err
			}
			if result.Refreshed {
				report.Changed++
				e.propagate(g, id, pending)
			}
			continue
		}

		status, applyErr := res.Apply(ctx)
		result := Result{ID: id, Status: status, Err: applyErr}
		if applyErr != nil {
			result.Status = resource.StatusFailed
			report.Results = append(report.Results, result)
			report.Failed = true
			e.logger.Error("resource failed", "resource", id, "err", applyErr)
			return report, fmt.Errorf("resource %s: %w", id, applyErr)
		}

		if status == resource.StatusChanged {
			report.Changed++
			e.propagate(g, id, pending)
		}

		// Coalesced refresh: at most one per run, and skipped when Apply
		// already changed the resource in this run.
		if pending[id] && status != resource.StatusChanged {
			if refresher, ok := res.(resource.Refresher); ok {
				if err := refresher.Refresh(ctx); err != nil {
					result.Err = err
					result.Status = resource.StatusFailed
					report.Results = append(report.Results, result)
					report.Failed = true
					e.logger.Error("refresh failed", "resource", id, "err", err)
					return report, fmt.Errorf("refreshing %s: %w", id, err)
				}
				result.Refreshed = true
				report.Changed++
			}
		}

		report.Results = append(report.Results, result)
		e.logger.Info("resource converged", "resource", id, "status", result.Status.String(), "refreshed", result.Refreshed)
	}

	return report, nil
}

// Plan evaluates every resource without mutating the host and reports what
// Apply would change. Refresh-only resources are reported as conditional on
// their notifiers.
func (e *Engine) Plan(ctx context.Context, g *dag.Graph, resources map[string]resource.Resource) (*Report, error) {
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, id := range order {
		res, ok := resources[id]
		if !ok {
			return nil, fmt.Errorf("graph node %q has no resource", id)
		}

		eval, checkErr := res.Check(ctx)
		result := Result{ID: id, Message: eval.Message, Err: checkErr}
		switch {
		case checkErr != nil:
			result.Status = resource.StatusFailed
			report.Failed = true
		case isRefreshOnly(res):
			result.Skipped = true
			result.Status = resource.StatusUnchanged
		case eval.InSync:
			result.Status = resource.StatusUnchanged
		default:
			result.Status = resource.StatusChanged
			result.Message = eval.Diff
			report.Changed++
		}
		report.Results = append(report.Results, result)
	}

	return report, nil
}

// propagate marks every Notify target of id pending-refresh.
func (e *Engine) propagate(g *dag.Graph, id string, pending map[string]bool) {
	for _, target := range g.NotifyTargets(id) {
		if !pending[target] {
			e.logger.Debug("scheduling refresh", "from", id, "to", target)
		}
		pending[target] = true
	}
}

// convergeRefreshOnly runs a refresh-only resource: skipped without a
// pending notification, refreshed exactly once with one.
func (e *Engine) convergeRefreshOnly(ctx context.Context, res resource.Resource, pendingRefresh bool) (Result, error) {
	id := res.ID()
	if !pendingRefresh {
		e.logger.Debug("skipping refresh-only resource", "resource", id)
		return Result{ID: id, Status: resource.StatusUnchanged, Skipped: true}, nil
	}

	refresher, ok := res.(resource.Refresher)
	if !ok {
		return Result{ID: id, Status: resource.StatusFailed},
			fmt.Errorf("refresh-only resource %s does not implement Refresh", id)
	}
	if err := refresher.Refresh(ctx); err != nil {
		e.logger.Error("refresh failed", "resource", id, "err", err)
		return Result{ID: id, Status: resource.StatusFailed, Err: err}, fmt.Errorf("refreshing %s: %w", id, err)
	}

	e.logger.Info("resource refreshed", "resource", id)
	return Result{ID: id, Status: resource.StatusChanged, Refreshed: true}, nil
}

func isRefreshOnly(res resource.Resource) bool {
	ro, ok := res.(resource.RefreshOnly)
	return ok && ro.IsRefreshOnly()
}
