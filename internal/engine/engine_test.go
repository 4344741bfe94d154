// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"minioctl/internal/dag"
	"minioctl/internal/resource"
)

// fakeResource is a scriptable resource for engine tests.
type fakeResource struct {
	id          string
	status      resource.Status
	applyErr    error
	refreshOnly bool
	applies     int
	refreshes   int
}

func (f *fakeResource) ID() string { return f.id }

func (f *fakeResource) Check(context.Context) (resource.Evaluation, error) {
	return resource.Evaluation{InSync: f.status == resource.StatusUnchanged, Message: f.id}, nil
}

func (f *fakeResource) Apply(context.Context) (resource.Status, error) {
	f.applies++
	if f.applyErr != nil {
		return resource.StatusFailed, f.applyErr
	}
	return f.status, nil
}

func (f *fakeResource) Refresh(context.Context) error {
	f.refreshes++
	return nil
}

func (f *fakeResource) IsRefreshOnly() bool { return f.refreshOnly }

func quietEngine() *Engine {
	return New(log.New(io.Discard))
}

func buildGraph(resources ...*fakeResource) map[string]resource.Resource {
	m := make(map[string]resource.Resource, len(resources))
	for _, r := range resources {
		m[r.id] = r
	}
	return m
}

func TestConverge_ChainOrderAndStatuses(t *testing.T) {
	t.Parallel()
	a := &fakeResource{id: "a", status: resource.StatusChanged}
	b := &fakeResource{id: "b", status: resource.StatusUnchanged}

	g := dag.New()
	g.AddEdge("a", "b", dag.Require)

	report, err := quietEngine().Converge(context.Background(), g, buildGraph(a, b))
	if err != nil {
		t.Fatalf("converge: %v", err)
	}
	if report.Changed != 1 {
		t.Errorf("Changed = %d, want 1", report.Changed)
	}
	if len(report.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(report.Results))
	}
	if report.Results[0].ID != "a" || report.Results[1].ID != "b" {
		t.Errorf("order = %v", report.Results)
	}
}

func TestConverge_FatalAbortsRemaining(t *testing.T) {
	t.Parallel()
	boom := errors.New("checksum mismatch")
	a := &fakeResource{id: "a", status: resource.StatusChanged}
	b := &fakeResource{id: "b", applyErr: boom}
	c := &fakeResource{id: "c", status: resource.StatusChanged}

	g := dag.New()
	g.AddEdge("a", "b", dag.Require)
	g.AddEdge("b", "c", dag.Require)

	report, err := quietEngine().Converge(context.Background(), g, buildGraph(a, b, c))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
	if !report.Failed {
		t.Error("report should be marked failed")
	}
	// a stays applied (no rollback), c is never evaluated.
	if a.applies != 1 {
		t.Errorf("a applied %d times, want 1", a.applies)
	}
	if c.applies != 0 {
		t.Errorf("c applied %d times, want 0 after abort", c.applies)
	}
}

func TestConverge_RefreshOnlySkippedWithoutNotification(t *testing.T) {
	t.Parallel()
	dir := &fakeResource{id: "dir", status: resource.StatusUnchanged}
	fix := &fakeResource{id: "fix", refreshOnly: true}

	g := dag.New()
	g.AddEdge("dir", "fix", dag.Notify)

	report, err := quietEngine().Converge(context.Background(), g, buildGraph(dir, fix))
	if err != nil {
		t.Fatalf("converge: %v", err)
	}
	if fix.refreshes != 0 {
		t.Errorf("fix refreshed %d times, want 0", fix.refreshes)
	}
	if fix.applies != 0 {
		t.Errorf("refresh-only resource applied %d times, want 0", fix.applies)
	}
	if !report.Results[1].Skipped {
		t.Error("refresh-only result should be marked skipped")
	}
}

func TestConverge_RefreshOnlyRunsOnNotification(t *testing.T) {
	t.Parallel()
	dir := &fakeResource{id: "dir", status: resource.StatusChanged}
	fix := &fakeResource{id: "fix", refreshOnly: true}

	g := dag.New()
	g.AddEdge("dir", "fix", dag.Notify)

	_, err := quietEngine().Converge(context.Background(), g, buildGraph(dir, fix))
	if err != nil {
		t.Fatalf("converge: %v", err)
	}
	if fix.refreshes != 1 {
		t.Errorf("fix refreshed %d times, want exactly 1", fix.refreshes)
	}
}

func TestConverge_NotificationsCoalesce(t *testing.T) {
	t.Parallel()
	// Three notifiers all changed; the service must restart exactly once.
	unit := &fakeResource{id: "unit", status: resource.StatusChanged}
	binary := &fakeResource{id: "binary", status: resource.StatusChanged}
	cert := &fakeResource{id: "cert", status: resource.StatusChanged}
	svc := &fakeResource{id: "service", status: resource.StatusUnchanged}

	g := dag.New()
	g.AddEdge("unit", "service", dag.Notify)
	g.AddEdge("binary", "service", dag.Notify)
	g.AddEdge("cert", "service", dag.Notify)

	_, err := quietEngine().Converge(context.Background(), g, buildGraph(unit, binary, cert, svc))
	if err != nil {
		t.Fatalf("converge: %v", err)
	}
	if svc.refreshes != 1 {
		t.Errorf("service refreshed %d times, want exactly 1", svc.refreshes)
	}
}

func TestConverge_NoRefreshWhenOwnApplyChanged(t *testing.T) {
	t.Parallel()
	// A service that was just started is already current; a notification in
	// the same run must not also restart it.
	unit := &fakeResource{id: "unit", status: resource.StatusChanged}
	svc := &fakeResource{id: "service", status: resource.StatusChanged}

	g := dag.New()
	g.AddEdge("unit", "service", dag.Notify)

	_, err := quietEngine().Converge(context.Background(), g, buildGraph(unit, svc))
	if err != nil {
		t.Fatalf("converge: %v", err)
	}
	if svc.refreshes != 0 {
		t.Errorf("service refreshed %d times, want 0 after its own start", svc.refreshes)
	}
}

func TestConverge_SecondRunIsAllUnchanged(t *testing.T) {
	t.Parallel()
	// Simulates the no-drift rerun: every resource reports in-sync.
	a := &fakeResource{id: "a", status: resource.StatusUnchanged}
	b := &fakeResource{id: "b", status: resource.StatusUnchanged}
	fix := &fakeResource{id: "fix", refreshOnly: true}

	g := dag.New()
	g.AddEdge("a", "b", dag.Require)
	g.AddEdge("a", "fix", dag.Notify)

	report, err := quietEngine().Converge(context.Background(), g, buildGraph(a, b, fix))
	if err != nil {
		t.Fatalf("converge: %v", err)
	}
	if report.Changed != 0 {
		t.Errorf("Changed = %d, want 0", report.Changed)
	}
	if fix.refreshes != 0 {
		t.Errorf("fix refreshed on a no-drift run")
	}
}

func TestPlan_DoesNotApply(t *testing.T) {
	t.Parallel()
	a := &fakeResource{id: "a", status: resource.StatusChanged}
	fix := &fakeResource{id: "fix", refreshOnly: true}

	g := dag.New()
	g.AddEdge("a", "fix", dag.Notify)

	report, err := quietEngine().Plan(context.Background(), g, buildGraph(a, fix))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if a.applies != 0 || fix.refreshes != 0 {
		t.Error("plan must not mutate")
	}
	if report.Changed != 1 {
		t.Errorf("Changed = %d, want 1", report.Changed)
	}
	if !report.Results[1].Skipped {
		t.Error("refresh-only resource should be reported as conditional")
	}
}

func TestConverge_CycleIsError(t *testing.T) {
	t.Parallel()
	g := dag.New()
	g.AddEdge("a", "b", dag.Require)
	g.AddEdge("b", "a", dag.Require)

	var cycleErr *dag.CycleError
	_, err := quietEngine().Converge(context.Background(), g, nil)
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}
