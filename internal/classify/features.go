// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

var (
	graphQLIndicators = []string{"graphql", "graph ql", "apollo", "gql"}
	restIndicators    = []string{"rest", "restful", "rest api", "rest-api"}

	corsIndicators         = []string{"cors", "cross-origin", "cross origin"}
	rateLimitIndicators    = []string{"rate limit", "rate limits", "rate limiting", "rate-limiting", "throttling", "throttle"}
	cachingIndicators      = []string{"cache", "caching", "cached", "redis", "memcached"}
	uploadIndicators       = []string{"upload", "uploads", "file upload", "file uploads", "attachments", "image upload"}
	realTimeIndicators     = []string{"real-time", "real time", "realtime", "websocket", "websockets", "live updates", "push notifications"}
	backgroundIndicators   = []string{"background", "background tasks", "background jobs", "celery", "queue", "queues", "cron", "scheduled", "worker", "workers"}
	containerizeIndicators = []string{"docker", "dockerfile", "dockerize", "container", "containers", "containerized", "kubernetes", "k8s"}

	paymentIndicators = []string{"payment", "payments", "checkout", "stripe", "paypal", "billing", "credit card"}
)

// APIStyle returns graphql when only GraphQL indicators occur, hybrid when
// both REST and GraphQL do, and rest otherwise.
func APIStyle(doc normalize.Document) types.APIStyle {
	_, gql := findAny(doc, graphQLIndicators)
	_, rest := findAny(doc, restIndicators)
	switch {
	case gql && rest:
		return types.APIStyleHybrid
	case gql:
		return types.APIStyleGraphQL
	}
	return types.APIStyleREST
}

// Features reports which optional capabilities the description mentions.
func Features(doc normalize.Document) types.Features {
	has := func(phrases []string) bool {
		_, ok := findAny(doc, phrases)
		return ok
	}
	return types.Features{
		CORS:            has(corsIndicators),
		RateLimiting:    has(rateLimitIndicators),
		Caching:         has(cachingIndicators),
		FileUploads:     has(uploadIndicators),
		RealTime:        has(realTimeIndicators),
		BackgroundTasks: has(backgroundIndicators),
		Containerize:    has(containerizeIndicators),
	}
}
