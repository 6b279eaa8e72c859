// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

var (
	fastAPIIndicators = []string{
		"modern", "fast", "async", "asynchronous", "microservice",
		"microservices", "api-first", "api first", "high-performance",
		"high performance", "real-time", "real time", "websocket",
		"websockets", "lightweight", "fastapi",
	}
	djangoIndicators = []string{
		"admin", "cms", "full-featured", "full featured", "web application",
		"traditional", "monolithic", "monolith", "admin interface",
		"batteries included", "orm", "django",
	}
	adminIndicators = []string{
		"admin", "admin interface", "admin panel", "admin dashboard",
		"administration", "back office", "backoffice",
	}
)

// FrameworkScores holds indicator hit counts for each framework.
type FrameworkScores struct {
	FastAPI int
	Django  int

	// Admin is set when an admin-interface keyword is present.
	Admin bool
}

// ScoreFramework counts framework indicators in doc.
func ScoreFramework(doc normalize.Document) FrameworkScores {
	fa, _ := count(doc, fastAPIIndicators)
	dj, _ := count(doc, djangoIndicators)
	_, admin := findAny(doc, adminIndicators)
	return FrameworkScores{FastAPI: fa, Django: dj, Admin: admin}
}

// DecideFramework picks the framework. More than threshold entities or an
// admin keyword forces Django; otherwise the higher score wins and ties go
// to FastAPI.
func DecideFramework(s FrameworkScores, entityCount, threshold int) types.Framework {
	if entityCount > threshold || s.Admin {
		return types.FrameworkDjango
	}
	if s.Django > s.FastAPI {
		return types.FrameworkDjango
	}
	return types.FrameworkFastAPI
}
