package server

import (
	"net/http"
)

// Middleware decorates every endpoint mounted on a [Mux]. The serve command installs [Recover]
// outermost and [Logging] inside it.
type Middleware func(http.Handler) http.Handler

// Endpoints is a group of routes served by one handler. [API] owns /api/ and [OAuthHandler] owns
// the Spotify redirect path.
//
// Routes returns [http.ServeMux] patterns, e.g. "GET /callback" or "/api/".
type Endpoints interface {
	http.Handler
	Routes() []string
}

// Router is what the auth and serve commands need from a mux.
type Router interface {
	http.Handler
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Mount(group Endpoints)
}

var _ Router = (*Mux)(nil)
