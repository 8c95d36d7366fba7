package graph

import (
	"reflect"
	"sort"
	"testing"
)

func TestNewDependencyGraph(t *testing.T) {
	g := New()
	if g == nil {
		t.Fatal("New() returned nil")
	}
	if g.Size() != 0 {
		t.Errorf("Size() = %d, want 0", g.Size())
	}
}

func TestGraphBuildSimple(t *testing.T) {
	g := New()
	err := g.Build(map[string][]string{
		"task-1": nil,
		"task-2": nil,
		"task-3": nil,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if g.Size() != 3 {
		t.Errorf("Size() = %d, want 3", g.Size())
	}
}

func TestGraphBuildWithDependencies(t *testing.T) {
	g := New()
	err := g.Build(map[string][]string{
		"task-1": nil,
		"task-2": nil,
		"task-3": {"task-1", "task-2"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if deps := g.GetDependencies("task-3"); len(deps) != 2 {
		t.Errorf("GetDependencies(task-3) = %v, want 2 entries", deps)
	}
	if dependents := g.GetDependents("task-1"); len(dependents) != 1 {
		t.Errorf("GetDependents(task-1) = %v, want 1 entry", dependents)
	}
}

func TestGraphBuildUnknownDependency(t *testing.T) {
	g := New()
	err := g.Build(map[string][]string{
		"A": {"Z"},
	})
	if err == nil {
		t.Fatal("Build() error = nil, want error for unknown dependency")
	}
}

func TestDetectCycleNone(t *testing.T) {
	g := New()
	if err := g.Build(map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
	}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if cycle, found := g.DetectCycle(); found {
		t.Errorf("DetectCycle() = %v, true, want no cycle", cycle)
	}
}

func TestDetectCycleSimple(t *testing.T) {
	g := New()
	g.AddNode("A")
	g.AddNode("B")
	if err := g.AddEdge("A", "B"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("B", "A"); err != nil {
		t.Fatal(err)
	}

	cycle, found := g.DetectCycle()
	if !found {
		t.Fatal("DetectCycle() found = false, want true")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle %v does not start and end at the same node", cycle)
	}
}

func TestDetectCycleStartsAtReencounteredNode(t *testing.T) {
	// A -> B -> C -> B forms a cycle through B and C, not A.
	g := New()
	for _, id := range []string{"A", "B", "C"} {
		g.AddNode(id)
	}
	mustEdge := func(from, to string) {
		if err := g.AddEdge(from, to); err != nil {
			t.Fatal(err)
		}
	}
	mustEdge("A", "B")
	mustEdge("B", "C")
	mustEdge("C", "B")

	cycle, found := g.DetectCycle()
	if !found {
		t.Fatal("expected a cycle")
	}
	want := []string{"B", "C", "B"}
	if !reflect.DeepEqual(cycle, want) {
		t.Errorf("cycle = %v, want %v", cycle, want)
	}
}

func TestTopologicalSort(t *testing.T) {
	g := New()
	if err := g.Build(map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
	}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort() error = %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos["A"] > pos["B"] || pos["B"] > pos["C"] {
		t.Errorf("TopologicalSort() = %v, want A before B before C", order)
	}
}

func TestTransitiveClosure(t *testing.T) {
	g := New()
	if err := g.Build(map[string][]string{
		"US-1": nil,
		"US-2": {"US-1"},
		"US-3": nil,
	}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	closure := g.TransitiveClosure("US-1")
	sort.Strings(closure)
	want := []string{"US-1", "US-2"}
	if !reflect.DeepEqual(closure, want) {
		t.Errorf("TransitiveClosure(US-1) = %v, want %v", closure, want)
	}

	isolated := g.TransitiveClosure("US-3")
	if !reflect.DeepEqual(isolated, []string{"US-3"}) {
		t.Errorf("TransitiveClosure(US-3) = %v, want [US-3]", isolated)
	}
}
