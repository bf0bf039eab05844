package analyzer

import (
	"sort"
)

// CallGraph is a directed graph over function names: one node per
// function, one edge per (caller references callee) pair. All
// traversals are in sorted name order so that repeated runs on the
// same input produce byte-identical results.
type CallGraph struct {
	// adjacency: caller -> set(callee)
	adjacency map[string]map[string]struct{}
	// nodes tracks all known function names
	nodes map[string]struct{}
}

// NewCallGraph creates an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		adjacency: make(map[string]map[string]struct{}),
		nodes:     make(map[string]struct{}),
	}
}

// AddNode adds a function node.
func (g *CallGraph) AddNode(name string) {
	if name == "" {
		return
	}
	g.nodes[name] = struct{}{}
}

// AddEdge adds a directed edge caller -> callee.
func (g *CallGraph) AddEdge(caller, callee string) {
	if caller == "" || callee == "" {
		return
	}
	g.AddNode(caller)
	g.AddNode(callee)
	if _, ok := g.adjacency[caller]; !ok {
		g.adjacency[caller] = make(map[string]struct{})
	}
	g.adjacency[caller][callee] = struct{}{}
}

// Nodes returns all node names (sorted).
func (g *CallGraph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Successors returns the callees of a node (sorted).
func (g *CallGraph) Successors(name string) []string {
	out := make([]string, 0, len(g.adjacency[name]))
	for n := range g.adjacency[name] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Component is one strongly-connected component of the call graph:
// a maximal set of functions that transitively call one another.
// Members are sorted by name.
type Component struct {
	Members []string
}

// Condensation finds the strongly-connected components using Tarjan's
// algorithm and returns them in reverse topological order: every
// component precedes the components that call into it, so a single
// forward pass over the result visits callees before callers. Node and
// successor iteration is sorted, making the order deterministic.
func (g *CallGraph) Condensation() []Component {
	index := 0
	stack := []string{}
	onStack := make(map[string]bool)
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	var components []Component

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var members []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			sort.Strings(members)
			components = append(components, Component{Members: members})
		}
	}

	for _, n := range g.Nodes() {
		if _, seen := indices[n]; !seen {
			strongconnect(n)
		}
	}
	return components
}

// Cycles returns only components that represent recursion: more than
// one member, or a single self-recursive function.
func (g *CallGraph) Cycles() []Component {
	var cycles []Component
	for _, comp := range g.Condensation() {
		if len(comp.Members) > 1 {
			cycles = append(cycles, comp)
			continue
		}
		v := comp.Members[0]
		if _, ok := g.adjacency[v][v]; ok {
			cycles = append(cycles, comp)
		}
	}
	return cycles
}
