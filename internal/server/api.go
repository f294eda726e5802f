package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/desertthunder/gilderr/internal/tasks"
	"golang.org/x/oauth2"
)

// DefaultUploadLimit is the largest accepted playlist upload in bytes.
const DefaultUploadLimit = 200 * 1024

// PlaylistStore is the file storage the API reads and writes.
type PlaylistStore interface {
	List() ([]string, error)
	Read(name string) (string, error)
	Save(original, text string, at time.Time) (string, error)
}

// Engine resolves playlists and stores the result.
type Engine interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, req tasks.RunRequest) (*tasks.RunResult, error)
	Generate(ctx context.Context, progress chan<- tasks.ProgressUpdate, instructions string, dryRun bool) (*tasks.RunResult, error)
}

// TokenSource hands out the playback access token.
type TokenSource interface {
	Token() (*oauth2.Token, error)
}

// APIOpts wires the collaborators of an [API]. Engine and Tokens are optional; their endpoints answer
// 503 and 401 when unset.
type APIOpts struct {
	Store       PlaylistStore
	Engine      Engine
	Tokens      TokenSource
	UploadLimit int64
	Logger      *log.Logger
}

// API serves the playlist endpoints under /api/.
type API struct {
	store       PlaylistStore
	engine      Engine
	tokens      TokenSource
	uploadLimit int64
	logger      *log.Logger
	mux         *http.ServeMux
	now         func() time.Time
}

type resolveRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type generateRequest struct {
	Instructions string `json:"instructions"`
}

// ResolveResponse is the JSON body returned by /api/resolve and /api/generate-playlist.
type ResolveResponse struct {
	File     string   `json:"file"`
	Resolved int      `json:"resolved"`
	Dropped  []string `json:"dropped"`
	Level    string   `json:"level"`
	Summary  string   `json:"summary"`
}

// NewAPI creates the playlist API.
func NewAPI(opts APIOpts) *API {
	limit := opts.UploadLimit
	if limit <= 0 {
		limit = DefaultUploadLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	a := &API{
		store:       opts.Store,
		engine:      opts.Engine,
		tokens:      opts.Tokens,
		uploadLimit: limit,
		logger:      logger,
		mux:         http.NewServeMux(),
		now:         time.Now,
	}
	a.routes()
	return a
}

// Routes mounts the API on the /api/ subtree.
func (a *API) Routes() []string {
	return []string{"/api/"}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) routes() {
	a.mux.HandleFunc("GET /api/health", a.Health)
	a.mux.HandleFunc("GET /api/playlists", a.ListPlaylists)
	a.mux.HandleFunc("GET /api/load-playlist", a.LoadPlaylist)
	a.mux.HandleFunc("POST /api/upload-playlist", a.UploadPlaylist)
	a.mux.HandleFunc("POST /api/resolve", a.Resolve)
	a.mux.HandleFunc("POST /api/generate-playlist", a.GeneratePlaylist)
	a.mux.HandleFunc("GET /api/spotify-token", a.SpotifyToken)
}

// Health handles GET /api/health
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListPlaylists handles GET /api/playlists
func (a *API) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	names, err := a.store.List()
	if err != nil {
		a.logger.Error("failed to list playlists", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list playlists")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"playlists": names})
}

// LoadPlaylist handles GET /api/load-playlist?name=
func (a *API) LoadPlaylist(w http.ResponseWriter, r *http.Request) {
	content, err := a.store.Read(r.URL.Query().Get("name"))
	switch {
	case errors.Is(err, shared.ErrInvalidFilename):
		writeError(w, http.StatusBadRequest, "invalid name")
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, "playlist not found")
	case err != nil:
		a.logger.Error("failed to read playlist", "error", err)
		writeError(w, http.StatusInternalServerError, "error reading the file")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"content": content})
	}
}

// UploadPlaylist handles POST /api/upload-playlist (multipart field "playlist").
//
// Answers in plain text: "OK" or "invalid file: <reason>".
func (a *API) UploadPlaylist(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.uploadLimit+64*1024)

	file, header, err := r.FormFile("playlist")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusBadRequest, a.tooLargeMessage())
			return
		}
		writeText(w, http.StatusBadRequest, "no file was sent")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".tsv") {
		writeText(w, http.StatusBadRequest, "file must be .tsv")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, a.uploadLimit+1))
	if err != nil {
		writeText(w, http.StatusBadRequest, "could not read the file")
		return
	}
	if int64(len(data)) > a.uploadLimit {
		writeText(w, http.StatusBadRequest, a.tooLargeMessage())
		return
	}

	name, err := a.store.Save(header.Filename, string(data), a.now())
	var verr *formatter.ValidationError
	switch {
	case errors.As(err, &verr):
		writeText(w, http.StatusBadRequest, "invalid file: "+verr.Error())
	case err != nil:
		a.logger.Error("failed to save upload", "file", header.Filename, "error", err)
		writeText(w, http.StatusInternalServerError, "internal server error")
	default:
		a.logger.Info("playlist uploaded", "file", name)
		writeText(w, http.StatusOK, "OK")
	}
}

func (a *API) tooLargeMessage() string {
	return fmt.Sprintf("invalid file: larger than %d KB", a.uploadLimit/1024)
}

// Resolve handles POST /api/resolve
func (a *API) Resolve(w http.ResponseWriter, r *http.Request) {
	if a.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "resolver not configured")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	name := req.Name
	if name == "" {
		name = "playlist"
	}
	out, err := a.engine.Run(r.Context(), nil, tasks.RunRequest{Source: name, Name: name, Text: req.Content})
	a.writeRunResult(w, out, err)
}

// GeneratePlaylist handles POST /api/generate-playlist
func (a *API) GeneratePlaylist(w http.ResponseWriter, r *http.Request) {
	if a.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "resolver not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := a.engine.Generate(r.Context(), nil, req.Instructions, false)
	a.writeRunResult(w, out, err)
}

func (a *API) writeRunResult(w http.ResponseWriter, out *tasks.RunResult, err error) {
	var verr *formatter.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Error())
		return
	case errors.Is(err, shared.ErrMissingArgument):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, shared.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, shared.ErrAPIRequest):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		a.logger.Error("resolution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "resolution failed")
		return
	}

	level, summary := out.Result.Summary()
	writeJSON(w, http.StatusOK, ResolveResponse{
		File:     out.File,
		Resolved: len(out.Result.Resolved),
		Dropped:  out.Result.DroppedStrings(),
		Level:    level.String(),
		Summary:  summary,
	})
}

// SpotifyToken handles GET /api/spotify-token for the playback client.
func (a *API) SpotifyToken(w http.ResponseWriter, r *http.Request) {
	if a.tokens == nil {
		writeError(w, http.StatusUnauthorized, "not logged in to Spotify")
		return
	}

	token, err := a.tokens.Token()
	if err != nil || token == nil || token.AccessToken == "" {
		writeError(w, http.StatusUnauthorized, "not logged in to Spotify")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessToken": token.AccessToken})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
