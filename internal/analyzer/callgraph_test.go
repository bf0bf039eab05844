package analyzer

import (
	"testing"
)

func containsAll(set []string, elems ...string) bool {
	m := make(map[string]struct{}, len(set))
	for _, s := range set {
		m[s] = struct{}{}
	}
	for _, e := range elems {
		if _, ok := m[e]; !ok {
			return false
		}
	}
	return true
}

func TestCallGraph_CondensationVisitsCalleesFirst(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("a", "c")

	position := make(map[string]int)
	for i, comp := range g.Condensation() {
		for _, m := range comp.Members {
			position[m] = i
		}
	}

	if position["c"] >= position["b"] || position["b"] >= position["a"] {
		t.Fatalf("expected c before b before a, got positions %v", position)
	}
}

func TestCallGraph_MutualRecursionIsOneComponent(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge("f", "g")
	g.AddEdge("g", "f")
	g.AddEdge("f", "leaf")

	var found bool
	for _, comp := range g.Condensation() {
		if len(comp.Members) == 2 && containsAll(comp.Members, "f", "g") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected f and g condensed into one component: %#v", g.Condensation())
	}
}

func TestCallGraph_Cycles(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a") // mutual recursion
	g.AddEdge("self", "self")
	g.AddEdge("plain", "a")

	cycles := g.Cycles()
	if len(cycles) != 2 {
		t.Fatalf("expected 2 cycles, got %d: %#v", len(cycles), cycles)
	}
	var foundAB, foundSelf bool
	for _, c := range cycles {
		if len(c.Members) == 2 && containsAll(c.Members, "a", "b") {
			foundAB = true
		}
		if len(c.Members) == 1 && c.Members[0] == "self" {
			foundSelf = true
		}
	}
	if !foundAB {
		t.Error("expected cycle [a b]")
	}
	if !foundSelf {
		t.Error("expected self-recursive function to count as a cycle")
	}
}

func TestCallGraph_NonRecursiveHasNoCycles(t *testing.T) {
	g := NewCallGraph()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	if cycles := g.Cycles(); len(cycles) != 0 {
		t.Fatalf("expected no cycles, got %#v", cycles)
	}
}

func TestCallGraph_DeterministicOrder(t *testing.T) {
	build := func() *CallGraph {
		g := NewCallGraph()
		g.AddEdge("z", "m")
		g.AddEdge("m", "a")
		g.AddEdge("z", "a")
		g.AddNode("lone")
		return g
	}

	first := build().Condensation()
	for i := 0; i < 10; i++ {
		again := build().Condensation()
		if len(again) != len(first) {
			t.Fatalf("component count changed between runs")
		}
		for j := range first {
			if len(first[j].Members) != len(again[j].Members) {
				t.Fatalf("component order changed between runs")
			}
			for k := range first[j].Members {
				if first[j].Members[k] != again[j].Members[k] {
					t.Fatalf("member order changed between runs")
				}
			}
		}
	}
}
