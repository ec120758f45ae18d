package domain

import (
	"path"
	"path/filepath"
	"strings"
)

// StaticRoute maps a URL path to a location on disk.
type StaticRoute struct {
	// Route is the URL path, without a trailing slash.
	Route string
	// Path is the directory or file served under Route.
	Path string
	// File is true when Path is a single file.
	File bool
}

// StaticRoutes returns one directory route per package under baseURL.
// When a package's manifest lies outside its directory, an additional file
// route exposes it as <route>/package.json.
func StaticRoutes(r *Registry, baseURL string) []StaticRoute {
	base := "/" + strings.Trim(baseURL, "/")
	if base == "/" {
		base = ""
	}

	routes := make([]StaticRoute, 0, r.Len())
	for p := range r.Walk() {
		route := base + "/" + p.Name
		routes = append(routes, StaticRoute{Route: route, Path: p.Path})

		if p.ManifestPath != "" && !within(p.Path, p.ManifestPath) {
			routes = append(routes, StaticRoute{
				Route: path.Join(route, ManifestFile),
				Path:  p.ManifestPath,
				File:  true,
			})
		}
	}
	return routes
}

func within(dir, file string) bool {
	rel, err := filepath.Rel(dir, file)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
