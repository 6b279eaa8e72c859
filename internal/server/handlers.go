// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/requirements-engine/internal/assemble"
	"github.com/pdiddy/requirements-engine/internal/history"
	"github.com/pdiddy/requirements-engine/internal/pipeline"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

type extractResponse struct {
	Requirements *types.ProjectRequirements `json:"requirements"`
	Fingerprint  string                     `json:"fingerprint"`
	RunID        string                     `json:"run_id,omitempty"`
}

type planResponse struct {
	Requirements *types.ProjectRequirements `json:"requirements"`
	Plan         *types.Plan                `json:"plan"`
	Fingerprint  string                     `json:"fingerprint"`
	RunID        string                     `json:"run_id,omitempty"`
}

// errorResponse is the body of every non-2xx answer. Kind and Names are set
// for structural extraction failures.
type errorResponse struct {
	Error string   `json:"error"`
	Kind  string   `json:"kind,omitempty"`
	Names []string `json:"names,omitempty"`
}

// GET /health
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /version
func (s *Server) versionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version})
}

// POST /api/extract
func (s *Server) extract(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	req, err := s.pipeline.Extract(in)
	if err != nil {
		s.extractionFailed(c, err)
		return
	}
	fp, err := pipeline.Fingerprint(req)
	if err != nil {
		s.internalError(c, err)
		return
	}
	runID, ok := s.record(c, req, nil, fp)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, extractResponse{Requirements: req, Fingerprint: fp, RunID: runID})
}

// POST /api/plan
func (s *Server) plan(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	res, err := s.pipeline.Run(in)
	if err != nil {
		s.extractionFailed(c, err)
		return
	}
	runID, ok := s.record(c, res.Requirements, res.Plan, res.Fingerprint)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, planResponse{
		Requirements: res.Requirements,
		Plan:         res.Plan,
		Fingerprint:  res.Fingerprint,
		RunID:        runID,
	})
}

// GET /api/runs?q=&entity=&limit=
func (s *Server) listRuns(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "history is disabled"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	var (
		runs []history.Summary
		err  error
	)
	switch {
	case c.Query("entity") != "":
		runs, err = s.history.ForEntity(ctx, c.Query("entity"), limit)
	case c.Query("q") != "":
		runs, err = s.history.Search(ctx, c.Query("q"), limit)
	default:
		runs, err = s.history.List(ctx, limit)
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GET /api/runs/:id
func (s *Server) getRun(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "history is disabled"})
		return
	}
	run, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "run not found"})
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func bindInput(c *gin.Context) (pipeline.Input, bool) {
	var in pipeline.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON: " + err.Error()})
		return pipeline.Input{}, false
	}
	return in, true
}

// extractionFailed answers 422 for structural failures and 400 for
// anything else the pipeline rejects, such as an unknown override.
func (s *Server) extractionFailed(c *gin.Context, err error) {
	if se, ok := assemble.AsStructural(err); ok {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			Kind:  se.Kind(),
			Names: se.Names(),
		})
		return
	}
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// record saves the run when history is enabled. It returns false after
// writing an error response.
func (s *Server) record(c *gin.Context, req *types.ProjectRequirements, pl *types.Plan, fp string) (string, bool) {
	if s.history == nil {
		return "", true
	}
	sum, err := s.history.Save(c.Request.Context(), req, pl, fp)
	if err != nil {
		s.internalError(c, err)
		return "", false
	}
	return sum.ID, true
}
