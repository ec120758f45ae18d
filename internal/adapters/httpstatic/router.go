// Package httpstatic serves package directories and generated artifacts over HTTP.
package httpstatic

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
)

// NewRouter mounts every route. Directory routes serve their whole tree;
// file routes serve exactly one file and take precedence over a directory
// route sharing their prefix.
func NewRouter(routes []domain.StaticRoute, logger ports.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	for _, route := range routes {
		prefix := "/" + strings.Trim(route.Route, "/")
		if route.File {
			file := route.Path
			r.Get(prefix, func(w http.ResponseWriter, req *http.Request) {
				http.ServeFile(w, req, file)
			})
			continue
		}

		files := http.StripPrefix(prefix, http.FileServer(http.Dir(route.Path)))
		r.Handle(prefix+"/*", files)
		r.Get(prefix, func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, prefix+"/", http.StatusMovedPermanently)
		})
	}

	return r
}

func requestLogger(logger ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			logger.Debug(fmt.Sprintf("%s %s %d", req.Method, req.URL.Path, ww.Status()))
		})
	}
}
