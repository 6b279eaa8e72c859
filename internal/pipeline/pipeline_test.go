// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/requirements-engine/internal/assemble"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

func newPipeline(t *testing.T, workers int) *Pipeline {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Extraction.Workers = workers
	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return p
}

func TestRun_Blog(t *testing.T) {
	p := newPipeline(t, 4)
	res, err := p.Run(Input{Description: "Create a blog with users, posts, and comments"})
	require.NoError(t, err)

	assert.Equal(t, []string{"User", "Post", "Comment"}, res.Requirements.EntityNames())
	assert.Equal(t, types.AuthJWT, res.Requirements.Auth)
	assert.Equal(t, []string{"User", "Post", "Comment"}, res.Plan.BuildOrder)
	assert.Len(t, res.Fingerprint, 16)
}

func TestRun_Deterministic(t *testing.T) {
	in := Input{Description: "A task management system. Each project has many tasks. Tasks belong to users. Tags are related to tasks. Use postgres and JWT."}

	first, err := newPipeline(t, 1).Run(in)
	require.NoError(t, err)
	for _, workers := range []int{1, 2, 8} {
		p := newPipeline(t, workers)
		for i := 0; i < 5; i++ {
			res, err := p.Run(in)
			require.NoError(t, err)
			assert.Equal(t, first.Fingerprint, res.Fingerprint)
			assert.Equal(t, first.Requirements, res.Requirements)
			assert.Equal(t, first.Plan, res.Plan)
		}
	}
}

func TestExtract_SentenceOrderIndependent(t *testing.T) {
	p := newPipeline(t, 4)
	a, err := p.Extract(Input{Description: "Users have many posts. Comments belong to posts. Tags are related to posts."})
	require.NoError(t, err)
	b, err := p.Extract(Input{Description: "Tags are related to posts. Comments belong to posts. Users have many posts."})
	require.NoError(t, err)

	assert.ElementsMatch(t, a.EntityNames(), b.EntityNames())
	assert.ElementsMatch(t, edgeSet(a), edgeSet(b))
}

func edgeSet(req *types.ProjectRequirements) []string {
	var out []string
	for _, r := range req.Relationships {
		ends := []string{r.Source, r.Target}
		if r.Cardinality == types.ManyToMany {
			sort.Strings(ends)
		}
		out = append(out, ends[0]+"->"+ends[1]+":"+string(r.Cardinality))
	}
	return out
}

func TestExtract_DanglingReference(t *testing.T) {
	_, err := newPipeline(t, 2).Extract(Input{Description: "Comments with a widget_id"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, assemble.ErrDanglingReference))
	assert.True(t, assemble.IsStructural(err))
}

func TestExtract_Overrides(t *testing.T) {
	o, err := ParseOverrides("django", "postgres", "session")
	require.NoError(t, err)

	req, err := newPipeline(t, 2).Extract(Input{
		Description: "Build a simple todo list",
		ProjectName: "todos",
		Overrides:   o,
	})
	require.NoError(t, err)
	assert.Equal(t, types.FrameworkDjango, req.Framework)
	assert.Equal(t, types.DatabasePostgreSQL, req.Database)
	assert.Equal(t, types.AuthSession, req.Auth)
	assert.Equal(t, "todos", req.ProjectName)
}

func TestParseOverrides(t *testing.T) {
	o, err := ParseOverrides("", "", "")
	require.NoError(t, err)
	assert.Nil(t, o.Framework)
	assert.Nil(t, o.Database)
	assert.Nil(t, o.Auth)

	_, err = ParseOverrides("rails", "", "")
	assert.Error(t, err)
	_, err = ParseOverrides("", "oracle", "")
	assert.Error(t, err)
	_, err = ParseOverrides("", "", "kerberos")
	assert.Error(t, err)
}

func TestNew_VocabularyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entities:\n  - gadgets\n"), 0o644))

	without := newPipeline(t, 1)
	req, err := without.Extract(Input{Description: "The gadget glows"})
	require.NoError(t, err)
	assert.Empty(t, req.Entities)

	cfg := types.DefaultConfig()
	cfg.Extraction.VocabularyFile = path
	with, err := New(cfg, nil)
	require.NoError(t, err)
	req, err = with.Extract(Input{Description: "The gadget glows"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget"}, req.EntityNames())
}

func TestNew_MissingVocabulary(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.Extraction.VocabularyFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(map[string]int{"a": 1})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]int{"a": 2})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 16)
}
