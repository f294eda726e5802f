package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/urfave/cli/v3"
)

type playlistSummary struct {
	Name       string `json:"name"`
	Tracks     int    `json:"tracks"`
	Unresolved int    `json:"unresolved"`
}

// PlaylistsList lists stored playlists with their track counts.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.playlistStore()
	if err != nil {
		return err
	}

	names, err := store.List()
	if err != nil {
		return err
	}

	summaries := make([]playlistSummary, 0, len(names))
	for _, name := range names {
		text, err := store.Read(name)
		if err != nil {
			r.logger.Warn("skipping unreadable playlist", "name", name, "error", err)
			continue
		}
		p := formatter.Playlist{Name: name, Records: formatter.Decode(text)}
		summaries = append(summaries, playlistSummary{Name: name, Tracks: len(p.Records), Unresolved: p.Missing()})
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}
	if len(summaries) == 0 {
		return r.writePlain("No playlists in %s\n", store.Dir())
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.Name, strconv.Itoa(s.Tracks), strconv.Itoa(s.Unresolved)}
	}
	return r.writePlain("%s\n", renderTable([]string{"Playlist", "Tracks", "Unresolved"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
}

// PlaylistsShow prints the tracks of one stored playlist.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	p, err := r.readPlaylist(cmd.StringArg("name"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(p.Records, true)
	}

	rows := make([][]string, len(p.Records))
	for i, rec := range p.Records {
		rows[i] = []string{strconv.Itoa(i + 1), rec.Artist, rec.Title, rec.Year, rec.URL}
	}
	r.writePlainHeader(p.Title())
	r.writePlain("%s\n", renderTable([]string{"#", "Artist", "Title", "Year", "URL"}, rows, []columnAlignment{alignRight}))
	if missing := p.Missing(); missing > 0 {
		r.writePlain("%d tracks without a URL; run 'gilderr resolve' to fill them in\n", missing)
	}
	return nil
}

// PlaylistsUpload validates a local file and stores it under a timestamped name.
func (r *Runner) PlaylistsUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	store, err := r.playlistStore()
	if err != nil {
		return err
	}

	name, err := store.Save(filepath.Base(path), string(data), time.Now())
	if err != nil {
		return fmt.Errorf("invalid file: %w", err)
	}

	r.logger.Info("playlist uploaded", "file", name)
	return r.writePlain("✓ Stored as %s\n", name)
}

// PlaylistsExport renders a stored playlist to CSV, Markdown or text.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	p, err := r.readPlaylist(cmd.StringArg("name"))
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(p, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("playlist exported", "name", p.Name, "format", format, "path", path)
	r.writePlain("✓ Playlist exported to %s\n", path)
	return r.writePlain("  Tracks: %d\n", len(p.Records))
}

func (r *Runner) readPlaylist(name string) (formatter.Playlist, error) {
	if name == "" {
		return formatter.Playlist{}, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	store, err := r.playlistStore()
	if err != nil {
		return formatter.Playlist{}, err
	}

	text, err := store.Read(name)
	if err != nil {
		return formatter.Playlist{}, err
	}
	return formatter.Playlist{Name: name, Records: formatter.Decode(text)}, nil
}
