// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package plan

import (
	"github.com/pdiddy/requirements-engine/internal/extract"
	"github.com/pdiddy/requirements-engine/pkg/types"
)

// BuildLayout returns the directory tree and per-entity modules for the
// chosen framework. Modules follow build order and list the entities they
// depend on.
func BuildLayout(req *types.ProjectRequirements, order []string, g *Graph) types.Layout {
	if req.Framework == types.FrameworkDjango {
		return djangoLayout(req, order, g)
	}
	return fastAPILayout(req, order, g)
}

func fastAPILayout(req *types.ProjectRequirements, order []string, g *Graph) types.Layout {
	dirs := []string{
		"app",
		"app/api",
		"app/api/v1",
		"app/api/v1/endpoints",
		"app/core",
		"app/crud",
		"app/db",
		"app/models",
		"app/schemas",
		"app/services",
		"app/tests",
	}
	graphql := req.APIStyle == types.APIStyleGraphQL || req.APIStyle == types.APIStyleHybrid
	if req.Auth != types.AuthNone {
		dirs = append(dirs, "app/auth")
	}
	if graphql {
		dirs = append(dirs, "app/graphql", "app/resolvers", "app/types")
	}
	if req.Features.BackgroundTasks {
		dirs = append(dirs, "app/workers")
	}
	if req.Database.Relational() {
		dirs = append(dirs, "migrations", "migrations/versions")
	}
	if req.Features.Containerize {
		dirs = append(dirs, "docker")
	}

	modules := make([]types.ModuleSpec, 0, len(order))
	for _, name := range order {
		pkg := extract.Snake(name)
		files := []string{
			"app/models/" + pkg + ".py",
			"app/schemas/" + pkg + ".py",
			"app/crud/" + pkg + ".py",
			"app/services/" + pkg + ".py",
			"app/api/v1/endpoints/" + pkg + ".py",
		}
		if graphql {
			files = append(files, "app/types/"+pkg+".py", "app/resolvers/"+pkg+".py")
		}
		modules = append(modules, types.ModuleSpec{
			Entity:    name,
			Package:   pkg,
			Files:     files,
			DependsOn: g.DependsOn(name),
		})
	}
	return types.Layout{Framework: types.FrameworkFastAPI, Directories: dirs, Modules: modules}
}

func djangoLayout(req *types.ProjectRequirements, order []string, g *Graph) types.Layout {
	project := req.ProjectName
	if project == "" {
		project = "project"
	}
	dirs := []string{
		project,
		project + "/settings",
		"apps",
		"static",
		"templates",
		"tests",
	}
	if req.Features.FileUploads {
		dirs = append(dirs, "media", "media/uploads")
	}
	if req.Features.Containerize {
		dirs = append(dirs, "docker")
	}

	modules := make([]types.ModuleSpec, 0, len(order))
	for _, name := range order {
		app := extract.Plural(name)
		base := "apps/" + app
		dirs = append(dirs, base, base+"/migrations")
		files := []string{
			base + "/models.py",
			base + "/serializers.py",
			base + "/views.py",
			base + "/urls.py",
			base + "/admin.py",
			base + "/apps.py",
			base + "/tests.py",
		}
		modules = append(modules, types.ModuleSpec{
			Entity:    name,
			Package:   app,
			Files:     files,
			DependsOn: g.DependsOn(name),
		})
	}
	return types.Layout{Framework: types.FrameworkDjango, Directories: dirs, Modules: modules}
}
