// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

func doc(s string) normalize.Document { return normalize.Normalize(s) }

func TestDecideFramework(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		entities int
		want     types.Framework
	}{
		{"no indicators", "Build a simple todo list", 1, types.FrameworkFastAPI},
		{"async wins", "A fast async microservice", 2, types.FrameworkFastAPI},
		{"cms wins", "A traditional cms", 2, types.FrameworkDjango},
		{"tie goes to fastapi", "A modern cms", 2, types.FrameworkFastAPI},
		{"admin forces django", "A fast async api with an admin panel", 2, types.FrameworkDjango},
		{"entity count forces django", "A fast async microservice", 6, types.FrameworkDjango},
		{"threshold is exclusive", "A fast async microservice", 5, types.FrameworkFastAPI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := ScoreFramework(doc(tt.input))
			assert.Equal(t, tt.want, DecideFramework(scores, tt.entities, 5))
		})
	}
}

func TestDatabase(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      types.Database
		mentioned int
	}{
		{"default", "Build a todo list", types.DatabaseSQLite, 0},
		{"postgres", "Store everything in Postgres", types.DatabasePostgreSQL, 1},
		{"mongo", "Use MongoDB as a document store", types.DatabaseMongoDB, 1},
		{"most hits", "MySQL is fine but a nosql document store on mongo is preferred", types.DatabaseMongoDB, 2},
		{"tie by declaration order", "Either mysql or postgresql", types.DatabasePostgreSQL, 2},
		{"firebase", "Sync with Firebase", types.DatabaseFirestore, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Database(doc(tt.input))
			assert.Equal(t, tt.want, res.Choice)
			assert.Len(t, res.Mentioned, tt.mentioned)
		})
	}
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     types.Auth
		explicit bool
	}{
		{"users imply jwt", "Create a blog with users, posts, and comments", types.AuthJWT, false},
		{"no users", "Build a simple todo list", types.AuthNone, false},
		{"session", "Users log in with session cookies", types.AuthSession, true},
		{"priority beats count", "OAuth, SSO, social login, and a JWT", types.AuthJWT, true},
		{"api key", "Partners call us with an API key", types.AuthAPIKey, true},
		{"oauth", "Sign in with Google via OAuth", types.AuthOAuth2, true},
		{"explicit none", "A public API with no authentication", types.AuthNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Auth(doc(tt.input))
			assert.Equal(t, tt.want, res.Choice)
			assert.Equal(t, tt.explicit, res.Explicit)
		})
	}
}

func TestAPIStyle(t *testing.T) {
	assert.Equal(t, types.APIStyleREST, APIStyle(doc("A todo api")))
	assert.Equal(t, types.APIStyleGraphQL, APIStyle(doc("Expose a GraphQL schema")))
	assert.Equal(t, types.APIStyleHybrid, APIStyle(doc("Offer REST endpoints and GraphQL")))
}

func TestFeatures(t *testing.T) {
	got := Features(doc("Enable CORS and rate limiting. Cache with Redis. Users upload photos. Real-time chat over websockets. Run background jobs in Docker."))
	assert.Equal(t, types.Features{
		CORS:            true,
		RateLimiting:    true,
		Caching:         true,
		FileUploads:     true,
		RealTime:        true,
		BackgroundTasks: true,
		Containerize:    true,
	}, got)

	assert.Equal(t, types.Features{}, Features(doc("Build a simple todo list")))
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"verb object", "Build a simple todo list", "todo_list_api"},
		{"app noun kept", "I need a task management system for teams", "task_management_system"},
		{"stops at with", "Create a blog with users", "blog_api"},
		{"quoted", `A recipe app called "Recipe Box"`, "recipe_box"},
		{"named", "An inventory tool named StockPilot for shops", "stockpilot"},
		{"fallback words", "Inventory of widgets", "inventory_widgets_api"},
		{"empty", "", DefaultProjectName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectName(doc(tt.input)))
		})
	}
}

func TestAnalyze_Diagnostics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		codes []string
	}{
		{"clean", "Create a blog with users, posts, and comments", nil},
		{"too short", "Todo", []string{types.DiagDescriptionTooShort}},
		{"too long", strings.Repeat("Users write posts. ", 300), []string{types.DiagDescriptionTooLong}},
		{"contradictory auth", "A public API with no authentication where users manage notes", []string{types.DiagContradictoryAuth}},
		{"multiple databases", "Store users in postgres and cache sessions in mongodb", []string{types.DiagMultipleDatabases}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Analyze(doc(tt.input))
			var codes []string
			for _, d := range s.Diagnostics {
				codes = append(codes, d.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestAnalyze_Payments(t *testing.T) {
	s := Analyze(doc("Customers pay at checkout. Orders ship later."))
	require.True(t, s.Payments)
	assert.Equal(t, 0, s.PaymentSpan.Sentence)

	assert.False(t, Analyze(doc("Build a simple todo list")).Payments)
}

func TestAnalyze_Deterministic(t *testing.T) {
	in := "A modern async API for customers and orders with Stripe payments, stored in postgres"
	assert.Equal(t, Analyze(doc(in)), Analyze(doc(in)))
}
