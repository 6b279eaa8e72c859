// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/requirements-engine/pkg/types"
)

func newReq(names []string, rels ...types.RelationshipSpec) *types.ProjectRequirements {
	req := &types.ProjectRequirements{
		ProjectName:   "shop_api",
		Framework:     types.FrameworkFastAPI,
		Database:      types.DatabaseSQLite,
		Auth:          types.AuthNone,
		APIStyle:      types.APIStyleREST,
		Relationships: rels,
	}
	for i, n := range names {
		req.Entities = append(req.Entities, types.EntitySpec{
			Name:   n,
			Fields: []types.FieldSpec{{Name: "id", Type: types.FieldInteger, Unique: true}},
			Span:   types.Span{Sentence: i},
		})
	}
	return req
}

func oneToMany(parent, child string) types.RelationshipSpec {
	return types.RelationshipSpec{Source: parent, Target: child, Owner: child, Cardinality: types.OneToMany}
}

func oneToOne(source, owner string) types.RelationshipSpec {
	return types.RelationshipSpec{Source: source, Target: owner, Owner: owner, Cardinality: types.OneToOne}
}

func manyToMany(a, b string) types.RelationshipSpec {
	return types.RelationshipSpec{Source: a, Target: b, Cardinality: types.ManyToMany}
}

func paths(eps []types.EndpointSpec) []string {
	var out []string
	for _, e := range eps {
		out = append(out, e.Method+" "+e.Path)
	}
	return out
}

func TestGraph_Order(t *testing.T) {
	tests := []struct {
		name   string
		req    *types.ProjectRequirements
		want   []string
		cycles [][]string
	}{
		{
			name: "parents first",
			req:  newReq([]string{"Comment", "Post", "User"}, oneToMany("User", "Post"), oneToMany("Post", "Comment")),
			want: []string{"User", "Post", "Comment"},
		},
		{
			name: "independent entities keep first-seen order",
			req:  newReq([]string{"Gizmo", "Widget", "Sprocket"}),
			want: []string{"Gizmo", "Widget", "Sprocket"},
		},
		{
			name: "one-to-one owner follows source",
			req:  newReq([]string{"Profile", "User"}, oneToOne("User", "Profile")),
			want: []string{"User", "Profile"},
		},
		{
			name: "many-to-many and self references add no dependency",
			req:  newReq([]string{"Tag", "Post", "Category"}, manyToMany("Post", "Tag"), oneToMany("Category", "Category")),
			want: []string{"Tag", "Post", "Category"},
		},
		{
			name:   "cycle falls back to first-seen order",
			req:    newReq([]string{"Gamma", "Alpha", "Beta"}, oneToMany("Alpha", "Gamma"), oneToOne("Alpha", "Beta"), oneToOne("Beta", "Alpha")),
			want:   []string{"Alpha", "Beta", "Gamma"},
			cycles: [][]string{{"Alpha", "Beta"}},
		},
		{
			name: "ready set prefers earliest mention",
			req:  newReq([]string{"Task", "Project", "Note"}, oneToMany("Project", "Task")),
			want: []string{"Project", "Task", "Note"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, cycles := NewGraph(tt.req).Order()
			assert.Equal(t, tt.want, order)
			assert.Equal(t, tt.cycles, cycles)
		})
	}
}

func TestGraph_DependsOn(t *testing.T) {
	g := NewGraph(newReq([]string{"User", "Project", "Task"}, oneToMany("Project", "Task"), oneToMany("User", "Task")))
	assert.Equal(t, []string{"User", "Project"}, g.DependsOn("Task"))
	assert.Empty(t, g.DependsOn("User"))
	assert.Nil(t, g.DependsOn("Missing"))
	assert.Equal(t, 3, g.Len())
}

func TestBuild_CycleDiagnostic(t *testing.T) {
	req := newReq([]string{"Alpha", "Beta"}, oneToOne("Alpha", "Beta"), oneToOne("Beta", "Alpha"))
	p := Build(req, types.DefaultPlanConfig())

	assert.Equal(t, []string{"Alpha", "Beta"}, p.BuildOrder)
	require.Len(t, p.Diagnostics, 1)
	assert.Equal(t, types.DiagDependencyCycle, p.Diagnostics[0].Code)
	assert.Contains(t, p.Diagnostics[0].Message, "Alpha, Beta")
	assert.Equal(t, 0, p.Diagnostics[0].Span.Sentence)
}

func TestEndpoints(t *testing.T) {
	req := newReq([]string{"User", "Post", "Tag"}, oneToMany("User", "Post"), manyToMany("Post", "Tag"))
	req.Auth = types.AuthJWT
	p := Build(req, types.DefaultPlanConfig())

	assert.Equal(t, []string{
		"GET /users/", "POST /users/", "GET /users/{id}", "PUT /users/{id}", "DELETE /users/{id}",
		"GET /posts/", "POST /posts/", "GET /posts/{id}", "PUT /posts/{id}", "DELETE /posts/{id}",
		"GET /tags/", "POST /tags/", "GET /tags/{id}", "PUT /tags/{id}", "DELETE /tags/{id}",
		"GET /users/{id}/posts",
		"POST /posts/{id}/tags/{target_id}", "DELETE /posts/{id}/tags/{target_id}",
		"POST /auth/login", "POST /auth/register", "POST /auth/refresh",
		"GET /health", "GET /version",
	}, paths(p.Endpoints))

	nested := p.Endpoints[15]
	assert.Equal(t, types.OpNestedList, nested.Kind)
	assert.Equal(t, "Post", nested.Entity)
	require.NotNil(t, nested.Relationship)
	assert.Equal(t, 0, *nested.Relationship)

	attach := p.Endpoints[16]
	assert.Equal(t, types.OpAttach, attach.Kind)
	require.NotNil(t, attach.Relationship)
	assert.Equal(t, 1, *attach.Relationship)

	for _, e := range p.Endpoints[:15] {
		assert.Nil(t, e.Relationship, e.Path)
	}
}

func TestEndpoints_Options(t *testing.T) {
	tests := []struct {
		name string
		auth types.Auth
		cfg  types.PlanConfig
		want []string
	}{
		{"no auth", types.AuthNone, types.DefaultPlanConfig(), []string{"GET /health", "GET /version"}},
		{"session has no refresh", types.AuthSession, types.PlanConfig{AuthRoutes: true}, []string{"POST /auth/login", "POST /auth/register"}},
		{"routes disabled", types.AuthJWT, types.PlanConfig{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newReq(nil)
			req.Auth = tt.auth
			assert.Equal(t, tt.want, paths(Endpoints(req, nil, tt.cfg)))
		})
	}
}

func TestEndpoints_MultiwordPlural(t *testing.T) {
	req := newReq([]string{"BlogPost", "Category"}, oneToMany("Category", "BlogPost"))
	eps := Endpoints(req, []string{"Category", "BlogPost"}, types.PlanConfig{})

	assert.Equal(t, "/categories/", eps[0].Path)
	assert.Equal(t, "/blog_posts/{id}", eps[7].Path)
	assert.Equal(t, "/categories/{id}/blog_posts", eps[10].Path)
	assert.Equal(t, "Create a blog_post", eps[6].Description)
	assert.Equal(t, "Create a category", eps[1].Description)
}

func TestBuildLayout(t *testing.T) {
	req := newReq([]string{"User", "BlogPost"}, oneToMany("User", "BlogPost"))

	t.Run("fastapi", func(t *testing.T) {
		p := Build(req, types.DefaultPlanConfig())
		l := p.Layout
		assert.Equal(t, types.FrameworkFastAPI, l.Framework)
		assert.Contains(t, l.Directories, "app/api/v1/endpoints")
		assert.Contains(t, l.Directories, "migrations/versions")
		assert.NotContains(t, l.Directories, "app/auth")

		require.Len(t, l.Modules, 2)
		assert.Equal(t, "blog_post", l.Modules[1].Package)
		assert.Contains(t, l.Modules[1].Files, "app/models/blog_post.py")
		assert.Equal(t, []string{"User"}, l.Modules[1].DependsOn)
		assert.Empty(t, l.Modules[0].DependsOn)
	})

	t.Run("django", func(t *testing.T) {
		dj := *req
		dj.Framework = types.FrameworkDjango
		dj.Features.FileUploads = true
		l := Build(&dj, types.DefaultPlanConfig()).Layout
		assert.Equal(t, types.FrameworkDjango, l.Framework)
		assert.Contains(t, l.Directories, "shop_api/settings")
		assert.Contains(t, l.Directories, "apps/blog_posts/migrations")
		assert.Contains(t, l.Directories, "media/uploads")
		assert.Equal(t, "blog_posts", l.Modules[1].Package)
		assert.Contains(t, l.Modules[1].Files, "apps/blog_posts/serializers.py")
	})

	t.Run("graphql", func(t *testing.T) {
		gq := *req
		gq.APIStyle = types.APIStyleGraphQL
		l := Build(&gq, types.DefaultPlanConfig()).Layout
		assert.Contains(t, l.Directories, "app/resolvers")
		assert.Contains(t, l.Modules[0].Files, "app/types/user.py")
	})
}

func TestComputeMetrics(t *testing.T) {
	t.Run("small", func(t *testing.T) {
		p := Build(newReq([]string{"Todo"}), types.DefaultPlanConfig())
		m := p.Metrics
		assert.Equal(t, 1, m.EntityCount)
		assert.Equal(t, 7, m.EndpointCount)
		assert.InDelta(t, 1.2, m.ComplexityScore, 1e-9)
		assert.Equal(t, "1-2 weeks", m.EstimatedDevelopmentTime)
		assert.Equal(t, "1-2 developers", m.RecommendedTeamSize)
	})

	t.Run("medium", func(t *testing.T) {
		req := newReq([]string{"User", "Post", "Tag"}, oneToMany("User", "Post"), manyToMany("Post", "Tag"))
		req.Auth = types.AuthJWT
		m := Build(req, types.DefaultPlanConfig()).Metrics
		assert.Equal(t, 23, m.EndpointCount)
		assert.InDelta(t, 4.7, m.ComplexityScore, 1e-9)
		assert.Equal(t, "2-4 weeks", m.EstimatedDevelopmentTime)
	})

	t.Run("large", func(t *testing.T) {
		names := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10"}
		var rels []types.RelationshipSpec
		for i := 1; i < len(names); i++ {
			rels = append(rels, oneToMany(names[i-1], names[i]))
		}
		req := newReq(names, rels...)
		req.Auth = types.AuthOAuth2
		req.Features = types.Features{CORS: true, RateLimiting: true, Caching: true, FileUploads: true, RealTime: true, BackgroundTasks: true, Containerize: true}
		m := Build(req, types.DefaultPlanConfig()).Metrics
		assert.InDelta(t, 9.8, m.ComplexityScore, 1e-9)
		assert.Equal(t, "2-4 months", m.EstimatedDevelopmentTime)
		assert.Equal(t, "4-6 developers", m.RecommendedTeamSize)
	})
}

func TestBuild_DoesNotMutateRequirements(t *testing.T) {
	req := newReq([]string{"User", "Post"}, oneToMany("User", "Post"))
	before := *req
	before.Entities = append([]types.EntitySpec(nil), req.Entities...)
	_ = Build(req, types.DefaultPlanConfig())
	assert.Equal(t, before.Entities, req.Entities)
	assert.Equal(t, before.Relationships, req.Relationships)
}
