package main

import (
	"context"
	"net/http"
	"time"

	"libraryapi/internal/auth"
	"libraryapi/internal/author"
	"libraryapi/internal/book"
	"libraryapi/internal/favorite"
	"libraryapi/internal/user"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handlers struct {
	auth     *auth.HTTPHandler
	users    *user.HTTPHandler
	authors  *author.HTTPHandler
	books    *book.HTTPHandler
	favorite *favorite.HTTPHandler
}

type route struct {
	pattern   string
	handler   http.HandlerFunc
	protected bool
}

func apiRoutes(h handlers) []route {
	return []route{
		{"POST /api/auth/register", h.users.Register, false},
		{"POST /api/auth/token", h.auth.Token, false},
		{"POST /api/auth/token/refresh", h.auth.Refresh, false},
		{"POST /api/auth/logout", h.auth.Logout, false},
		{"GET /api/auth/me", h.users.Me, true},
		{"DELETE /api/auth/me", h.users.DeleteMe, true},

		{"GET /api/authors", h.authors.List, true},
		{"POST /api/authors", h.authors.Create, true},
		{"GET /api/authors/{id}", h.authors.Get, true},
		{"PUT /api/authors/{id}", h.authors.Update, true},
		{"DELETE /api/authors/{id}", h.authors.Delete, true},

		{"GET /api/books", h.books.List, true},
		{"POST /api/books", h.books.Create, true},
		{"GET /api/books/{id}", h.books.Get, true},
		{"PUT /api/books/{id}", h.books.Update, true},
		{"DELETE /api/books/{id}", h.books.Delete, true},

		{"GET /api/favoritebooks", h.favorite.List, true},
		{"POST /api/favoritebooks", h.favorite.Add, true},
		{"POST /api/favoritebooks/add", h.favorite.Add, true},
		{"POST /api/favoritebooks/clear", h.favorite.Clear, true},
		{"GET /api/favoritebooks/{id}", h.favorite.Get, true},
		{"PUT /api/favoritebooks/{id}", h.favorite.Update, true},
		{"DELETE /api/favoritebooks/{id}", h.favorite.Delete, true},
	}
}

// newRouter registers the API routes plus health and metrics endpoints.
// ready reports whether backing services are reachable.
func newRouter(h handlers, requireAuth func(http.Handler) http.Handler, ready func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	for _, rt := range apiRoutes(h) {
		var handler http.Handler = rt.handler
		if rt.protected {
			handler = requireAuth(handler)
		}
		mux.Handle(rt.pattern, handler)
	}
	return mux
}
