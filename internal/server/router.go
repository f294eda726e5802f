package server

import (
	"net/http"
	"strings"
)

// Mux routes the gilderr HTTP surface: the playlist API, the OAuth callback and the /login redirect.
// Registrations after a Use call are wrapped by that middleware; earlier ones are not.
type Mux struct {
	mux   *http.ServeMux
	chain []Middleware
}

func NewMux() *Mux {
	return &Mux{mux: http.NewServeMux()}
}

// Use appends to the middleware chain. The first middleware added sees the request first.
func (m *Mux) Use(middleware ...Middleware) {
	m.chain = append(m.chain, middleware...)
}

// Handle registers handler under "METHOD path". An empty method matches any method, and a known
// path requested with another method answers 405.
func (m *Mux) Handle(method, path string, handler http.Handler) {
	pattern := path
	if method != "" {
		pattern = strings.ToUpper(method) + " " + path
	}
	m.mux.Handle(pattern, m.wrap(handler))
}

func (m *Mux) HandleFunc(method, path string, fn http.HandlerFunc) {
	m.Handle(method, path, fn)
}

// Mount registers group under each of its routes, sharing one wrapped handler.
func (m *Mux) Mount(group Endpoints) {
	h := m.wrap(group)
	for _, route := range group.Routes() {
		m.mux.Handle(route, h)
	}
}

func (m *Mux) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.mux.ServeHTTP(w, req)
}

func (m *Mux) wrap(h http.Handler) http.Handler {
	for i := len(m.chain) - 1; i >= 0; i-- {
		h = m.chain[i](h)
	}
	return h
}
