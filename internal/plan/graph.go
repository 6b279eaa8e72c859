// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Graph is the entity dependency graph. Nodes are entity indexes in
// first-seen order; an edge u -> v means u holds a foreign reference to v and
// must be built after it.
type Graph struct {
	nodes []string
	index map[string]int
	deps  [][]int
}

// NewGraph builds the dependency graph of req. One-to-many edges make the
// child depend on the parent and one-to-one edges make the owner depend on
// the other side. Many-to-many edges and self-references add nothing.
func NewGraph(req *types.ProjectRequirements) *Graph {
	g := &Graph{
		nodes: make([]string, len(req.Entities)),
		index: make(map[string]int, len(req.Entities)),
		deps:  make([][]int, len(req.Entities)),
	}
	for i, e := range req.Entities {
		g.nodes[i] = e.Name
		g.index[e.Name] = i
	}
	for _, r := range req.Relationships {
		if r.Cardinality == types.ManyToMany || r.SelfReference() || r.Owner == "" {
			continue
		}
		other := r.Source
		if r.Owner == r.Source {
			other = r.Target
		}
		u, ok1 := g.index[r.Owner]
		v, ok2 := g.index[other]
		if !ok1 || !ok2 || slices.Contains(g.deps[u], v) {
			continue
		}
		g.deps[u] = append(g.deps[u], v)
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// DependsOn returns the names u depends on, in first-seen order.
func (g *Graph) DependsOn(name string) []string {
	u, ok := g.index[name]
	if !ok {
		return nil
	}
	idx := append([]int(nil), g.deps[u]...)
	slices.Sort(idx)
	out := make([]string, len(idx))
	for i, v := range idx {
		out[i] = g.nodes[v]
	}
	return out
}

// Order returns a build order in which every entity follows the entities it
// depends on. Strongly connected components are found with Tarjan's
// algorithm; the condensation is then sorted with Kahn's algorithm, always
// taking the ready component whose first member was seen earliest. Members
// of a cycle are emitted in first-seen order and reported in cycles.
func (g *Graph) Order() (order []string, cycles [][]string) {
	comps := g.components()

	compOf := make([]int, len(g.nodes))
	for c, members := range comps {
		for _, n := range members {
			compOf[n] = c
		}
	}

	// dependents[c] lists components that must wait for c.
	dependents := make([][]int, len(comps))
	indegree := make([]int, len(comps))
	for u, vs := range g.deps {
		for _, v := range vs {
			cu, cv := compOf[u], compOf[v]
			if cu == cv || slices.Contains(dependents[cv], cu) {
				continue
			}
			dependents[cv] = append(dependents[cv], cu)
			indegree[cu]++
		}
	}

	var ready []int
	for c := range comps {
		if indegree[c] == 0 {
			ready = append(ready, c)
		}
	}

	order = make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if comps[ready[i]][0] < comps[ready[best]][0] {
				best = i
			}
		}
		c := ready[best]
		ready = append(ready[:best], ready[best+1:]...)

		names := make([]string, len(comps[c]))
		for i, n := range comps[c] {
			names[i] = g.nodes[n]
		}
		order = append(order, names...)
		if len(names) > 1 {
			cycles = append(cycles, names)
		}

		for _, d := range dependents[c] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	return order, cycles
}

// components returns the strongly connected components of g, each with its
// members sorted by first-seen index.
func (g *Graph) components() [][]int {
	n := len(g.nodes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var stack []int
	var comps [][]int
	next := 0

	var visit func(u int)
	visit = func(u int) {
		index[u], low[u] = next, next
		next++
		stack = append(stack, u)
		onStack[u] = true

		for _, v := range g.deps[u] {
			switch {
			case index[v] < 0:
				visit(v)
				low[u] = min(low[u], low[v])
			case onStack[v]:
				low[u] = min(low[u], index[v])
			}
		}

		if low[u] != index[u] {
			return
		}
		var comp []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == u {
				break
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}

	for u := 0; u < n; u++ {
		if index[u] < 0 {
			visit(u)
		}
	}
	return comps
}

// cycleDiagnostic reports one cyclic component.
func cycleDiagnostic(req *types.ProjectRequirements, members []string) types.Diagnostic {
	span := types.DocumentSpan
	if e, ok := req.Entity(members[0]); ok {
		span = e.Span
	}
	return types.Diagnostic{
		Code:    types.DiagDependencyCycle,
		Message: fmt.Sprintf("dependency cycle between %s; built in first-mention order", strings.Join(members, ", ")),
		Span:    span,
	}
}
