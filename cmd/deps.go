package main

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/gilderr/internal/repositories"
	"github.com/desertthunder/gilderr/internal/services"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/desertthunder/gilderr/internal/tasks"
	"github.com/mattn/go-isatty"
	"golang.org/x/oauth2"
)

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// database opens the configured database once and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

func (r *Runner) playlistStore() (*repositories.PlaylistStore, error) {
	if r.store != nil {
		return r.store, nil
	}
	store, err := repositories.NewPlaylistStore(r.config.Storage.Dir)
	if err != nil {
		return nil, err
	}
	r.store = store
	return store, nil
}

// spotifyService builds the Spotify client. A token saved by `auth login` is preferred; without one
// the client-credentials grant is used, which is enough for search.
func (r *Runner) spotifyService() (*services.SpotifyService, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}

	creds := r.config.Credentials.Spotify
	svc, err := services.NewSpotifyService(creds, services.SpotifyOpts{
		HTTPClient:  r.httpClient,
		SearchLimit: r.config.Resolver.SearchLimit,
		Market:      r.config.Resolver.Market,
		Logger:      shared.WithLogger(r.logger, "service", "spotify"),
	})
	if err != nil {
		return nil, err
	}

	if tok := creds.Token(); tok != nil {
		svc.SetTokenRefreshCallback(r.saveToken)
		svc.UseToken(tok)
	} else if err := svc.Authenticate(context.Background(), map[string]string{"grant": "client_credentials"}); err != nil {
		return nil, err
	}

	r.spotify = svc
	return svc, nil
}

// saveToken persists a refreshed user token to the config file.
func (r *Runner) saveToken(tok *oauth2.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.config.Credentials.Spotify.SetToken(tok)
	if r.configPath == "" {
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "path", r.configPath, "error", err)
		return
	}
	r.logger.Debug("refreshed token saved", "path", r.configPath)
}

func (r *Runner) hasUserToken() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Credentials.Spotify.Token() != nil
}

// searchCatalog returns the catalog the resolver drives, wrapped in the sqlite search cache when
// enabled. A database that cannot be opened only disables the cache.
func (r *Runner) searchCatalog() (services.Catalog, error) {
	catalog := r.catalog
	if catalog == nil {
		svc, err := r.spotifyService()
		if err != nil {
			return nil, err
		}
		catalog = svc
	}

	if !r.config.Resolver.Cache {
		return catalog, nil
	}
	db, err := r.database()
	if err != nil {
		r.logger.Warn("search cache disabled", "error", err)
		return catalog, nil
	}
	return tasks.NewCachingCatalog(catalog, repositories.NewSearchCacheRepository(db), r.logger), nil
}

// playlistGenerator returns nil when no generator is configured.
func (r *Runner) playlistGenerator() tasks.Generator {
	if r.generator != nil {
		return r.generator
	}
	cfg := r.config.Generator
	if cfg.URL == "" {
		return nil
	}

	client := &http.Client{Transport: r.httpClient.Transport, Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	return services.NewGeneratorService(services.NewAPIService(cfg.URL, client), cfg.Path)
}

func (r *Runner) newResolver(catalog services.Catalog) *tasks.Resolver {
	cfg := r.config.Resolver
	return tasks.NewResolver(catalog, tasks.ResolverOpts{
		Delay:     cfg.Delay(),
		Workers:   cfg.Workers,
		RateLimit: cfg.RateLimit,
		Logger:    r.logger,
	})
}

// playlistEngine wires the resolver, the playlist store and the run history. Resolution stays
// sequential unless resolver.workers is above 1.
func (r *Runner) playlistEngine() (*tasks.PlaylistEngine, error) {
	catalog, err := r.searchCatalog()
	if err != nil {
		return nil, err
	}
	store, err := r.playlistStore()
	if err != nil {
		return nil, err
	}

	opts := tasks.EngineOpts{
		Concurrent: r.config.Resolver.Workers > 1,
		Logger:     r.logger,
	}
	if gen := r.playlistGenerator(); gen != nil {
		opts.Generator = gen
	}
	if db, err := r.database(); err != nil {
		r.logger.Warn("run history disabled", "error", err)
	} else {
		opts.Runs = repositories.NewRunRepository(db)
	}

	return tasks.NewPlaylistEngine(r.newResolver(catalog), store, opts), nil
}
