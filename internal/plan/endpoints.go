// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"fmt"

	"github.com/pdiddy/requirements-engine/internal/extract"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// Endpoints returns the endpoint catalogue: the five CRUD operations of every
// entity in build order, a nested list for every one-to-many edge, an
// attach/detach pair for every many-to-many edge, then the optional auth and
// utility routes.
func Endpoints(req *types.ProjectRequirements, order []string, cfg types.PlanConfig) []types.EndpointSpec {
	out := []types.EndpointSpec{}
	add := func(entity string, kind types.OperationKind, path, desc string, rel *int) {
		out = append(out, types.EndpointSpec{
			Entity:       entity,
			Kind:         kind,
			Method:       kind.Method(),
			Path:         path,
			Relationship: rel,
			Description:  desc,
		})
	}

	for _, name := range order {
		coll := collectionPath(name)
		item := itemPath(name)
		noun := article(name)
		add(name, types.OpList, coll, "List "+extract.Plural(name), nil)
		add(name, types.OpCreate, coll, "Create "+noun, nil)
		add(name, types.OpRead, item, "Get "+noun+" by id", nil)
		add(name, types.OpUpdate, item, "Update "+noun, nil)
		add(name, types.OpDelete, item, "Delete "+noun, nil)
	}

	for i, r := range req.Relationships {
		if r.Cardinality != types.OneToMany {
			continue
		}
		path := itemPath(r.Source) + "/" + extract.Plural(r.Target)
		add(r.Target, types.OpNestedList, path,
			fmt.Sprintf("List %s of %s", extract.Plural(r.Target), article(r.Source)), ptr(i))
	}

	for i, r := range req.Relationships {
		if r.Cardinality != types.ManyToMany {
			continue
		}
		path := itemPath(r.Source) + "/" + extract.Plural(r.Target) + "/{target_id}"
		add(r.Source, types.OpAttach, path,
			fmt.Sprintf("Attach %s to %s", article(r.Target), article(r.Source)), ptr(i))
		add(r.Source, types.OpDetach, path,
			fmt.Sprintf("Detach %s from %s", article(r.Target), article(r.Source)), ptr(i))
	}

	if cfg.AuthRoutes && req.Auth != types.AuthNone {
		add("", types.OpLogin, "/auth/login", "Authenticate and start a "+string(req.Auth)+" session", nil)
		add("", types.OpRegister, "/auth/register", "Register a new account", nil)
		if req.Auth == types.AuthJWT {
			add("", types.OpRefresh, "/auth/refresh", "Exchange a refresh token for a new access token", nil)
		}
	}
	if cfg.UtilityRoutes {
		add("", types.OpHealth, "/health", "Service health check", nil)
		add("", types.OpVersion, "/version", "Service version", nil)
	}
	return out
}

func collectionPath(name string) string { return "/" + extract.Plural(name) + "/" }

func itemPath(name string) string { return "/" + extract.Plural(name) + "/{id}" }

// article returns "a <name>" or "an <name>" with the name in snake_case.
func article(name string) string {
	s := extract.Snake(name)
	if s != "" && isVowel(s[0]) {
		return "an " + s
	}
	return "a " + s
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func ptr(i int) *int { return &i }
