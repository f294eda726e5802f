package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/gilderr/internal/server"
	"github.com/desertthunder/gilderr/internal/services"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, exchanges the code for tokens
// and saves them to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if !r.config.Credentials.Spotify.HasClient() {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	svc, err := services.NewSpotifyService(r.config.Credentials.Spotify, services.SpotifyOpts{HTTPClient: r.httpClient})
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}

	token, err := r.doOAuth(ctx, svc, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	r.config.Credentials.Spotify.SetToken(token)
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n", r.configPath)
	return nil
}

// AuthStatus checks that the current credentials can search the catalog.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if !creds.HasClient() && r.catalog == nil {
		r.writePlain("Client credentials: ✗ not configured\n")
		return fmt.Errorf("%w: set credentials.spotify in %s", shared.ErrMissingCredentials, r.configPath)
	}

	r.writePlain("Client credentials: ✓ configured\n")
	if creds.Token() != nil {
		r.writePlain("User token: ✓ saved (expires %s)\n", creds.TokenExpiry.Format(time.RFC3339))
	} else {
		r.writePlain("User token: ✗ not saved (search uses the app token)\n")
	}

	catalog := r.catalog
	if catalog == nil {
		svc, err := r.spotifyService()
		if err != nil {
			return err
		}
		catalog = svc
	}

	r.logger.Info("checking catalog search", "catalog", catalog.Name())
	if _, err := catalog.Search(ctx, "Queen", "Bohemian Rhapsody", ""); err != nil {
		r.writePlain("Catalog search: ✗ %v\n", err)
		if errors.Is(err, shared.ErrTokenExpired) {
			r.writePlain("Run 'gilderr auth login' to authorize again\n")
		}
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return r.writePlain("Catalog search: ✓ ok\n")
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, svc *services.SpotifyService, openBrowser bool) (*oauth2.Token, error) {
	state := shared.GenerateID()
	oauthHandler := server.NewOAuthHandler(svc.Exchange, state, "")
	router := server.NewMux()
	router.Use(server.Logging(r.logger))
	router.Mount(oauthHandler)

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := svc.AuthURL(state)
	if openBrowser {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			openBrowser = false
		}
	}
	if !openBrowser {
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
