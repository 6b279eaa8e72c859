// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/requirements-engine/internal/history"
	"github.com/pdiddy/requirements-engine/internal/pipeline"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testServer(t *testing.T, withHistory bool) *Server {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Extraction.Workers = 2
	p, err := pipeline.New(cfg, nil)
	require.NoError(t, err)

	var hist History
	if withHistory {
		store, err := history.Open(types.HistoryConfig{Dir: filepath.Join(t.TempDir(), "history")}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		hist = store
	}
	return New(p, hist, "1.2.3", nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndVersion(t *testing.T) {
	s := testServer(t, false)

	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, w.Body.String())
}

func TestExtract(t *testing.T) {
	s := testServer(t, false)
	w := do(t, s, http.MethodPost, "/api/extract", `{"description":"Create a blog with users, posts, and comments"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[extractResponse](t, w)
	assert.Equal(t, []string{"User", "Post", "Comment"}, resp.Requirements.EntityNames())
	assert.Len(t, resp.Fingerprint, 16)
	assert.Empty(t, resp.RunID)
}

func TestExtract_Overrides(t *testing.T) {
	s := testServer(t, false)
	w := do(t, s, http.MethodPost, "/api/extract",
		`{"description":"Build a simple todo list","project_name":"todos","overrides":{"framework":"django","auth":"session"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[extractResponse](t, w)
	assert.Equal(t, types.FrameworkDjango, resp.Requirements.Framework)
	assert.Equal(t, types.AuthSession, resp.Requirements.Auth)
	assert.Equal(t, "todos", resp.Requirements.ProjectName)
}

func TestExtract_Errors(t *testing.T) {
	s := testServer(t, false)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind string
	}{
		{"malformed JSON", `{"description":`, http.StatusBadRequest, ""},
		{"unknown override", `{"description":"A blog with posts","overrides":{"framework":"rails"}}`, http.StatusBadRequest, ""},
		{"dangling reference", `{"description":"Comments with a widget_id"}`, http.StatusUnprocessableEntity, "dangling_reference"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/extract", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			resp := decode[errorResponse](t, w)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantKind, resp.Kind)
			if tt.wantKind != "" {
				assert.NotEmpty(t, resp.Names)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	s := testServer(t, false)
	w := do(t, s, http.MethodPost, "/api/plan", `{"description":"Create a blog with users, posts, and comments"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[planResponse](t, w)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, []string{"User", "Post", "Comment"}, resp.Plan.BuildOrder)
	assert.NotEmpty(t, resp.Plan.Endpoints)
}

func TestRuns_HistoryDisabled(t *testing.T) {
	s := testServer(t, false)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/runs", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/runs/abc", "").Code)
}

func TestRuns(t *testing.T) {
	s := testServer(t, true)

	w := do(t, s, http.MethodPost, "/api/plan", `{"description":"Create a blog with users, posts, and comments"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	blog := decode[planResponse](t, w)
	require.NotEmpty(t, blog.RunID)

	w = do(t, s, http.MethodPost, "/api/extract", `{"description":"An online store selling products"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	store := decode[extractResponse](t, w)
	require.NotEmpty(t, store.RunID)

	type runsBody struct {
		Runs []history.Summary `json:"runs"`
	}
	runIDs := func(path string) []string {
		w := do(t, s, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []string
		for _, r := range decode[runsBody](t, w).Runs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{store.RunID, blog.RunID}, runIDs("/api/runs"))
	assert.Equal(t, []string{store.RunID}, runIDs("/api/runs?limit=1"))
	assert.Equal(t, []string{blog.RunID}, runIDs("/api/runs?q=BLOG"))
	assert.Equal(t, []string{blog.RunID}, runIDs("/api/runs?entity=Comment"))

	w = do(t, s, http.MethodGet, "/api/runs?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/runs/"+blog.RunID, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	run := decode[history.Run](t, w)
	assert.Equal(t, blog.Fingerprint, run.Fingerprint)
	require.NotNil(t, run.Plan)
	assert.Equal(t, blog.Plan.BuildOrder, run.Plan.BuildOrder)

	w = do(t, s, http.MethodGet, "/api/runs/"+store.RunID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[history.Run](t, w).Plan)

	w = do(t, s, http.MethodGet, "/api/runs/01HZZZZZZZZZZZZZZZZZZZZZZZ", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
