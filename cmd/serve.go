package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/gilderr/internal/server"
	"github.com/desertthunder/gilderr/internal/services"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// userTokens hands out the saved Spotify user token. App tokens cannot drive playback.
type userTokens struct {
	r   *Runner
	svc *services.SpotifyService
}

func (u userTokens) Token() (*oauth2.Token, error) {
	if !u.r.hasUserToken() {
		return nil, shared.ErrNotAuthenticated
	}
	return u.svc.Token()
}

// Serve starts the playlist HTTP API and blocks until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	store, err := r.playlistStore()
	if err != nil {
		return err
	}

	opts := server.APIOpts{
		Store:       store,
		UploadLimit: cfg.UploadLimit(),
		Logger:      shared.WithLogger(r.logger, "component", "api"),
	}
	if engine, err := r.playlistEngine(); err != nil {
		r.logger.Warn("resolution endpoints disabled", "error", err)
	} else {
		opts.Engine = engine
	}

	router := server.NewMux()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))

	if svc, err := r.spotifyService(); err != nil {
		r.logger.Warn("spotify login disabled", "error", err)
	} else {
		opts.Tokens = userTokens{r: r, svc: svc}
		r.mountLogin(ctx, router, svc)
	}
	router.Mount(server.NewAPI(opts))

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("serving playlist API", "addr", cfg.Addr(), "storage", store.Dir())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// mountLogin serves GET /login, which redirects to Spotify, and the one-shot OAuth callback. The
// token received on the callback is saved and used from then on.
func (r *Runner) mountLogin(ctx context.Context, router *server.Mux, svc *services.SpotifyService) {
	path := "/callback"
	if u, err := url.Parse(r.config.Credentials.Spotify.RedirectURI); err == nil && u.Path != "" {
		path = u.Path
	}

	state := shared.GenerateID()
	callback := server.NewOAuthHandler(svc.Exchange, state, path)
	router.Mount(callback)
	router.HandleFunc(http.MethodGet, "/login", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, svc.AuthURL(state), http.StatusFound)
	})

	go func() {
		select {
		case result := <-callback.Result():
			if err := result.Error(); err != nil {
				r.logger.Error("spotify login failed", "error", err)
				return
			}
			svc.UseToken(result.Token)
			r.saveToken(result.Token)
			r.logger.Info("spotify login complete")
		case <-ctx.Done():
		}
	}()
}
