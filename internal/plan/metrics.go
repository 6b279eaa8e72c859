// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import "github.com/pdiddy/requirements-engine/pkg/types"

// Score weights in tenths of a point, each capped.
const (
	entityWeight       = 5
	entityCap          = 30
	relationshipWeight = 3
	relationshipCap    = 20
	endpointWeight     = 1
	endpointCap        = 20
	featureWeight      = 3
	featureCap         = 20
	maxScore           = 100
)

var authWeight = map[types.Auth]int{
	types.AuthNone:    0,
	types.AuthAPIKey:  2,
	types.AuthSession: 4,
	types.AuthJWT:     6,
	types.AuthOAuth2:  10,
}

// ComputeMetrics sizes the plan and derives a 0-10 complexity score with
// development time and team size bands.
func ComputeMetrics(req *types.ProjectRequirements, endpoints []types.EndpointSpec) types.Metrics {
	f := req.Features
	features := countTrue(f.CORS, f.RateLimiting, f.Caching, f.FileUploads, f.RealTime, f.BackgroundTasks)

	tenths := min(len(req.Entities)*entityWeight, entityCap) +
		min(len(req.Relationships)*relationshipWeight, relationshipCap) +
		min(len(endpoints)*endpointWeight, endpointCap) +
		min(features*featureWeight, featureCap) +
		authWeight[req.Auth]
	tenths = min(tenths, maxScore)

	m := types.Metrics{
		EntityCount:       len(req.Entities),
		RelationshipCount: len(req.Relationships),
		EndpointCount:     len(endpoints),
		ComplexityScore:   float64(tenths) / 10,
	}
	switch {
	case tenths <= 30:
		m.EstimatedDevelopmentTime, m.RecommendedTeamSize = "1-2 weeks", "1-2 developers"
	case tenths <= 50:
		m.EstimatedDevelopmentTime, m.RecommendedTeamSize = "2-4 weeks", "2-3 developers"
	case tenths <= 70:
		m.EstimatedDevelopmentTime, m.RecommendedTeamSize = "1-2 months", "3-4 developers"
	default:
		m.EstimatedDevelopmentTime, m.RecommendedTeamSize = "2-4 months", "4-6 developers"
	}
	return m
}

func countTrue(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}
