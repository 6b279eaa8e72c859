// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"sort"

	"github.com/pdiddy/requirements-engine/internal/extract"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// resolved is an edge whose endpoints are canonical entity names.
type resolved struct {
	extract.Edge
	src, dst, owner *entity
}

func (r resolved) pair() [2]string {
	a, b := r.src.name, r.dst.name
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// relationships resolves raw edges against the entity set, deduplicates them
// per unordered pair and adds conventional edges between entities that no
// explicit rule related.
func (a *assembler) relationships(edges []extract.Edge) ([]types.RelationshipSpec, error) {
	sorted := append([]extract.Edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span != sorted[j].Span {
			return sorted[i].Span.Less(sorted[j].Span)
		}
		if sorted[i].Rule != sorted[j].Rule {
			return sorted[i].Rule < sorted[j].Rule
		}
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		return sorted[i].Target < sorted[j].Target
	})

	var all []resolved
	for _, e := range sorted {
		r, err := a.resolve(e)
		if err != nil {
			return nil, err
		}
		all = append(all, r)
	}

	groups := make(map[[2]string][]resolved)
	var order [][2]string
	for _, r := range all {
		k := r.pair()
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	var out []resolved
	for _, k := range order {
		out = append(out, a.dedup(groups[k]))
	}

	related := make(map[[2]string]bool, len(order))
	for _, k := range order {
		related[k] = true
	}
	for _, p := range a.vocab.Pairs() {
		parent, child := a.lookup(p.Parent), a.lookup(p.Child)
		if parent == nil || child == nil || parent == child {
			continue
		}
		e := extract.ConventionalEdge(p, child.span)
		r := resolved{Edge: e, src: parent, dst: child, owner: child}
		if related[r.pair()] {
			continue
		}
		related[r.pair()] = true
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span != out[j].Span {
			return out[i].Span.Less(out[j].Span)
		}
		if out[i].Rule != out[j].Rule {
			return out[i].Rule < out[j].Rule
		}
		if out[i].src.name != out[j].src.name {
			return out[i].src.name < out[j].src.name
		}
		return out[i].dst.name < out[j].dst.name
	})

	specs := make([]types.RelationshipSpec, len(out))
	for i, r := range out {
		specs[i] = types.RelationshipSpec{
			Source:      r.src.name,
			Target:      r.dst.name,
			Cardinality: r.Cardinality,
			Origin:      r.Origin,
			Span:        r.Span,
		}
		if r.owner != nil && r.Cardinality != types.ManyToMany {
			specs[i].Owner = r.owner.name
		}
	}
	return specs, nil
}

// resolve maps an edge's raw endpoints to entities. An endpoint that never
// became an entity is a dangling reference.
func (a *assembler) resolve(e extract.Edge) (resolved, error) {
	src, dst := a.lookup(e.Source), a.lookup(e.Target)
	if src == nil || dst == nil {
		missing := e.Source
		if src != nil {
			missing = e.Target
		}
		return resolved{}, &DanglingReferenceError{
			Source:  a.displayName(e.Source),
			Target:  a.displayName(e.Target),
			Missing: extract.Canonicalize(missing),
		}
	}
	r := resolved{Edge: e, src: src, dst: dst}
	if e.Owner != "" {
		r.owner = a.lookup(e.Owner)
	}
	return r, nil
}

func (a *assembler) displayName(raw string) string {
	if e := a.lookup(raw); e != nil {
		return e.name
	}
	return extract.Canonicalize(raw)
}

// dedup keeps the highest-ranked edge of one unordered pair. Two one-to-many
// edges of equal precedence pointing in opposite directions ("teams have many
// players", "players have many teams") collapse into one many-to-many edge.
func (a *assembler) dedup(group []resolved) resolved {
	win := group[0]
	for _, r := range group[1:] {
		if r.Outranks(win.Edge) {
			win = r
		}
	}
	if win.Cardinality != types.OneToMany || win.src == win.dst {
		return win
	}
	for _, r := range group {
		if r.Cardinality != types.OneToMany || r.Precedence != win.Precedence || r.src != win.dst {
			continue
		}
		src, dst := win.src, win.dst
		if dst.name < src.name {
			src, dst = dst, src
		}
		a.diags = append(a.diags, types.Diagnostic{
			Code: types.DiagDirectionConflict,
			Message: fmt.Sprintf("%s and %s each claim to have many of the other; modelled as many-to-many",
				src.name, dst.name),
			Span: r.Span,
		})
		win.src, win.dst, win.owner = src, dst, nil
		win.Cardinality = types.ManyToMany
		return win
	}
	return win
}
