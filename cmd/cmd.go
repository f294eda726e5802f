// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and config file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml template",
				Action: r.SetupConfig,
			},
			{
				Name:   "migrations",
				Usage:  "Show embedded migrations and when they were applied",
				Action: r.SetupMigrations,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles Spotify authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize gilderr with Spotify using OAuth2 and save the tokens",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check that a catalog search succeeds with the current credentials",
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistsCommand handles stored playlist files
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Stored playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show the tracks of a stored playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:      "upload",
				Usage:     "Validate a local .tsv file and store it under a timestamped name",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Action:    r.PlaylistsUpload,
			},
			{
				Name:      "export",
				Usage:     "Export a stored playlist to CSV, Markdown or text",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, markdown or txt",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// resolveCommand resolves a local playlist file
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Fill in missing track URLs of a .tsv playlist and store the result",
		Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Base name for the stored file (defaults to the input file name)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and validate without storing",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the resolved playlist",
			},
		},
		Action: r.Resolve,
	}
}

// generateCommand asks the generator for a playlist and resolves it
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a playlist from instructions and resolve it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "instructions",
				Aliases:  []string{"i"},
				Usage:    "Free-form description of the playlist",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve and validate without storing",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the resolved playlist",
			},
		},
		Action: r.Generate,
	}
}

// searchCommand runs one catalog search and shows how each candidate scores
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog for one track and show candidate scores",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name", Required: true},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Track title", Required: true},
			&cli.StringFlag{Name: "year", Aliases: []string{"y"}, Usage: "Release year"},
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.Search,
	}
}

// trackCommand looks up a single catalog track
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Look up one catalog track by id or track URL",
		Arguments: []cli.Argument{&cli.StringArg{Name: "track"}},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
		},
		Action: r.TrackInfo,
	}
}

// runsCommand shows resolution history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Resolution history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded resolution runs, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "Filter by status: pending, running, completed or failed"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs to show", Value: 20},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.RunsList,
			},
			{
				Name:      "delete",
				Usage:     "Remove a run from history",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.RunsDelete,
			},
		},
	}
}

// cacheCommand manages the search cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and clear cached catalog searches",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached searches, most used first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of entries to show", Value: 20},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached search",
				Action: r.CacheClear,
			},
		},
	}
}

// serveCommand starts the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the playlist HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI for stored playlists",
		Action:  r.TUI,
	}
}
