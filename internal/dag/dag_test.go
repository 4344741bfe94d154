// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := New()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	// The recipe's backbone: each directory converges before its children.
	g.AddEdge("storage-root", "config-dir", Require)
	g.AddEdge("config-dir", "install-dir", Require)

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"storage-root", "config-dir", "install-dir"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	// Binary and unit are independent but both precede the service.
	g.AddEdge("install-dir", "binary", Require)
	g.AddEdge("install-dir", "unit", Require)
	g.AddEdge("binary", "service", Notify)
	g.AddEdge("unit", "service", Notify)

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if pos["install-dir"] > pos["binary"] || pos["install-dir"] > pos["unit"] {
		t.Errorf("install-dir must come first, got %v", order)
	}
	if pos["service"] != len(order)-1 {
		t.Errorf("service must come last, got %v", order)
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b", Require)
	g.AddEdge("b", "c", Require)
	g.AddEdge("c", "a", Require)

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycleErr.Cycle) == 0 {
		t.Error("expected cycle nodes to be reported")
	}
}

func TestNotifyTargets(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("unit", "service", Notify)
	g.AddEdge("binary", "service", Notify)
	g.AddEdge("storage-root", "config-dir", Require)

	if got := g.NotifyTargets("unit"); !slices.Equal(got, []string{"service"}) {
		t.Errorf("unit should notify [service], got %v", got)
	}
	if got := g.NotifyTargets("storage-root"); got != nil {
		t.Errorf("require edge must not notify, got %v", got)
	}
}

func TestAddNode_Duplicate(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("a")
	g.AddNode("a")
	if got := g.Nodes(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("expected single node, got %v", got)
	}
}
