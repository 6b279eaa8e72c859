// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan derives an API topology from assembled requirements: a
// dependency-ordered build order, the endpoint catalogue, a framework module
// layout and size metrics. Planning never mutates the requirements.
package plan

import "github.com/pdiddy/requirements-engine/pkg/types"

// Build plans req. Dependency cycles do not fail planning; their members are
// ordered by first mention and reported as dependency_cycle diagnostics.
func Build(req *types.ProjectRequirements, cfg types.PlanConfig) *types.Plan {
	g := NewGraph(req)
	order, cycles := g.Order()

	diags := []types.Diagnostic{}
	for _, members := range cycles {
		diags = append(diags, cycleDiagnostic(req, members))
	}

	endpoints := Endpoints(req, order, cfg)
	return &types.Plan{
		BuildOrder:  order,
		Endpoints:   endpoints,
		Layout:      BuildLayout(req, order, g),
		Metrics:     ComputeMetrics(req, endpoints),
		Diagnostics: diags,
	}
}
