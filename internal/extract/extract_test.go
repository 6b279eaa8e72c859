// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/requirements-engine/internal/normalize"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

func mentionNames(ms []Mention) []string {
	var names []string
	for _, m := range ms {
		names = append(names, m.Name())
	}
	return names
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"users", "User"},
		{"User", "User"},
		{"categories", "Category"},
		{"blog posts", "BlogPost"},
		{"BlogPost", "BlogPost"},
		{"order_item", "OrderItem"},
		{"people", "Person"},
		{"series", "Series"},
		{"todos", "Todo"},
		{"statuses", "Status"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Canonicalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Canonicalize(got), "canonicalizing a canonical name must be a no-op")
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "user", Key("Users"))
	assert.Equal(t, "user", Key("user"))
	assert.Equal(t, "blog_post", Key("BlogPost"))
	assert.Equal(t, "blog_post", Key("blog posts"))
	assert.Equal(t, Key("series"), Key("serie"))
	assert.Equal(t, "class", Key("classes"))
}

func TestPlural(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"User", "users"},
		{"BlogPost", "blog_posts"},
		{"Category", "categories"},
		{"Person", "people"},
		{"Todo", "todos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plural(tt.name))
		})
	}
	assert.Equal(t, "blog_post", Snake("BlogPost"))
}

func TestInferType(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		name    string
		want    types.FieldType
		wantRef string
	}{
		{"email", types.FieldEmail, ""},
		{"price", types.FieldDecimal, ""},
		{"created_at", types.FieldDatetime, ""},
		{"user_id", types.FieldInteger, "user"},
		{"published_at", types.FieldDatetime, ""},
		{"start_date", types.FieldDatetime, ""},
		{"is_admin", types.FieldBoolean, ""},
		{"has_paid", types.FieldBoolean, ""},
		{"can_edit", types.FieldBoolean, ""},
		{"unit_price", types.FieldDecimal, ""},
		{"contact_email", types.FieldEmail, ""},
		{"stock_quantity", types.FieldInteger, ""},
		{"nickname", types.FieldString, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ref := InferType(v, tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRef, ref)
		})
	}
}

func TestEntities(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"container list", "Create a blog with users, posts, and comments", []string{"User", "Post", "Comment"}},
		{"vocabulary", "Build a simple todo list", []string{"Todo"}},
		{"declaration", `Create a "Blog Post" model`, []string{"BlogPost"}},
		{"declaration plain", "Define the widget table", []string{"Widget"}},
		{"container gerund", "An app for managing recipes and chefs", []string{"Recipe", "Chef"}},
		{"container skips attributes", "A tracker with gadgets and due dates", []string{"Gadget"}},
		{"each every", "Every gizmo has a name", []string{"Gizmo"}},
		{"subject with", "Sprockets with a price", []string{"Sprocket"}},
		{"management", "Supports warehouse inventory and gadget management", []string{"Warehouse", "Gadget"}},
		{"participants", "Widgets belong to gizmos", []string{"Widget", "Gizmo"}},
		{"pronouns ignored", "It belongs to them", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entities(normalize.Normalize(tt.input), DefaultRules())
			assert.Equal(t, tt.want, mentionNames(got))
		})
	}
}

func TestEntities_FirstSeenOrder(t *testing.T) {
	doc := normalize.Normalize("Comments need moderation. Users write posts.")
	got := Entities(doc, DefaultRules())
	assert.Equal(t, []string{"Comment", "User", "Post"}, mentionNames(got))
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Less(got[i-1]))
	}
}

func TestEntities_TokenReportedOnceUnderEarliestRule(t *testing.T) {
	doc := normalize.Normalize("Create a blog with users")
	got := Entities(doc, DefaultRules())
	require.Len(t, got, 1)
	assert.Equal(t, "users", got[0].Raw)
	assert.Equal(t, 1, got[0].Rule, "container-list is registered before vocabulary")
}

func TestEntities_CustomRuleSet(t *testing.T) {
	doc := normalize.Normalize("An app for managing chefs and users")
	rules := DefaultRules().WithEntityRules(EntityRule{Name: "vocabulary", Match: matchVocabulary})

	assert.Equal(t, []string{"User"}, mentionNames(Entities(doc, rules)))
	assert.Equal(t, []string{"Chef", "User"}, mentionNames(Entities(doc, DefaultRules())))
}

func TestFields_Declared(t *testing.T) {
	doc := normalize.Normalize("Products with name, unique sku, optional description and stock quantity.")
	groups := Fields(doc, DefaultRules())
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "products", g.Owner)
	assert.False(t, g.Vocabulary)

	var specs []types.FieldSpec
	for _, it := range g.Items {
		specs = append(specs, it.Spec())
	}
	assert.Equal(t, []types.FieldSpec{
		{Name: "name", Type: types.FieldString},
		{Name: "sku", Type: types.FieldString, Unique: true},
		{Name: "description", Type: types.FieldText, Nullable: true},
		{Name: "stock_quantity", Type: types.FieldInteger},
	}, specs)
}

func TestFields_EachHas(t *testing.T) {
	doc := normalize.Normalize("Each order has a total and a placed_at timestamp")
	groups := Fields(doc, DefaultRules())
	require.Len(t, groups, 1)
	assert.Equal(t, "order", groups[0].Owner)

	var names []string
	for _, it := range groups[0].Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"total", "placed_at_timestamp"}, names)
	assert.Equal(t, types.FieldDecimal, groups[0].Items[0].Type)
}

func TestFields_QuantifiedItemsDropped(t *testing.T) {
	doc := normalize.Normalize("Users can have many posts")
	assert.Empty(t, Fields(doc, DefaultRules()))
}

func TestFields_Reference(t *testing.T) {
	doc := normalize.Normalize("Comments with a widget_id")
	groups := Fields(doc, DefaultRules())
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "widget", groups[0].Items[0].Reference)
}

func TestFields_Vocabulary(t *testing.T) {
	doc := normalize.Normalize("Users need an email and a password.")
	groups := Fields(doc, DefaultRules())
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Vocabulary)
	assert.Empty(t, groups[0].Owner)

	var names []string
	for _, it := range groups[0].Items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"email", "password"}, names)
}

func TestFields_WeakWordsAlone(t *testing.T) {
	doc := normalize.Normalize("Users see the status of their name")
	assert.Empty(t, Fields(doc, DefaultRules()))
}

func TestRelationships(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Edge
	}{
		{
			name:  "has many",
			input: "Users have many posts and comments",
			want: []Edge{
				{Source: "users", Target: "posts", Owner: "posts", Cardinality: types.OneToMany, Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Rule: 2},
				{Source: "users", Target: "comments", Owner: "comments", Cardinality: types.OneToMany, Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Rule: 2},
			},
		},
		{
			name:  "can have many",
			input: "Each project can have multiple tasks",
			want: []Edge{
				{Source: "project", Target: "tasks", Owner: "tasks", Cardinality: types.OneToMany, Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Rule: 2},
			},
		},
		{
			name:  "belongs to",
			input: "Posts belong to a user",
			want: []Edge{
				{Source: "user", Target: "posts", Owner: "posts", Cardinality: types.OneToMany, Origin: types.OriginMembership, Precedence: PrecedenceMembership, Rule: 0},
			},
		},
		{
			name:  "passive",
			input: "Each book is written by an author",
			want: []Edge{
				{Source: "author", Target: "book", Owner: "book", Cardinality: types.OneToMany, Origin: types.OriginMembership, Precedence: PrecedenceMembership, Rule: 1},
			},
		},
		{
			name:  "has one",
			input: "Each user has one profile",
			want: []Edge{
				{Source: "user", Target: "profile", Owner: "profile", Cardinality: types.OneToOne, Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Rule: 3},
			},
		},
		{
			name:  "peer and",
			input: "Students and courses are related",
			want: []Edge{
				{Source: "students", Target: "courses", Cardinality: types.ManyToMany, Origin: types.OriginPeer, Precedence: PrecedencePeer, Rule: 4},
			},
		},
		{
			name:  "peer related",
			input: "A tag is associated with posts",
			want: []Edge{
				{Source: "tag", Target: "posts", Cardinality: types.ManyToMany, Origin: types.OriginPeer, Precedence: PrecedencePeer, Rule: 5},
			},
		},
		{
			name:  "attributes after quantifier skipped",
			input: "Each post has many comments and a title",
			want: []Edge{
				{Source: "post", Target: "comments", Owner: "comments", Cardinality: types.OneToMany, Origin: types.OriginOwnership, Precedence: PrecedenceOwnership, Rule: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges, diags := Relationships(normalize.Normalize(tt.input), DefaultRules())
			assert.Empty(t, diags)
			for i := range edges {
				edges[i].Span = types.Span{}
			}
			assert.Equal(t, tt.want, edges)
		})
	}
}

func TestRelationships_IgnoredEndpoint(t *testing.T) {
	doc := normalize.Normalize("It belongs to them.")
	edges, diags := Relationships(doc, DefaultRules())
	assert.Empty(t, edges)
	require.Len(t, diags, 1)
	assert.Equal(t, types.DiagEndpointIgnored, diags[0].Code)
	assert.Equal(t, 0, diags[0].Span.Sentence)
}

func TestEdgeOutranks(t *testing.T) {
	member := Edge{Precedence: PrecedenceMembership, Rule: 0}
	owner := Edge{Precedence: PrecedenceOwnership, Rule: 2}
	early := Edge{Precedence: PrecedenceOwnership, Rule: 2, Span: types.Span{Sentence: 0}}
	late := Edge{Precedence: PrecedenceOwnership, Rule: 2, Span: types.Span{Sentence: 3}}

	assert.True(t, member.Outranks(owner))
	assert.False(t, owner.Outranks(member))
	assert.True(t, early.Outranks(late))
	assert.True(t, Edge{Precedence: 1, Rule: 4}.Outranks(Edge{Precedence: 1, Rule: 5}))
}

func TestRuleSetCopies(t *testing.T) {
	base := DefaultRules()
	off := base.WithTemplates(false)
	assert.True(t, base.Templates())
	assert.False(t, off.Templates())

	custom := base.WithEntityRules(EntityRule{Name: "only"})
	assert.Equal(t, []string{"only"}, custom.EntityRuleNames())
	assert.Len(t, base.EntityRuleNames(), 7)
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := `entities: [gadgets]
app_nouns: [portal]
fields:
  calories: integer
pairs:
  - {parent: recipes, child: ingredients}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vf, err := LoadVocabulary(path)
	require.NoError(t, err)

	base := DefaultVocabulary()
	merged := base.Merge(vf)

	assert.True(t, merged.IsEntityNoun("gadgets"))
	assert.False(t, base.IsEntityNoun("gadgets"), "merge must not modify the receiver")

	ft, ok := merged.FieldType("calories")
	assert.True(t, ok)
	assert.Equal(t, types.FieldInteger, ft)
	assert.Contains(t, merged.Pairs(), Pair{Parent: "recipe", Child: "ingredient"})
}

func TestLoadVocabulary_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadVocabulary(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("fields:\n  calories: float\n"), 0o644))
	_, err = LoadVocabulary(bad)
	assert.ErrorContains(t, err, "unknown type")
}
