package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/repositories"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/urfave/cli/v3"
)

type runSummary struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"`
	File      string           `json:"file,omitempty"`
	Status    models.RunStatus `json:"status"`
	Total     int              `json:"total"`
	Resolved  int              `json:"resolved"`
	Dropped   int              `json:"dropped"`
	Error     string           `json:"error,omitempty"`
	StartedAt *time.Time       `json:"started_at,omitempty"`
	Duration  string           `json:"duration,omitempty"`
}

func summarizeRun(run *models.ResolutionRun) runSummary {
	s := runSummary{
		ID:        run.ID(),
		Source:    run.Source(),
		File:      run.OutputFile(),
		Status:    run.Status(),
		Total:     run.RecordsTotal(),
		Resolved:  run.RecordsResolved(),
		Dropped:   run.RecordsDropped(),
		Error:     run.ErrorMessage(),
		StartedAt: run.StartedAt(),
	}
	if d := run.Duration(); d > 0 {
		s.Duration = d.Round(time.Millisecond).String()
	}
	return s
}

// RunsList shows recorded resolution runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	if status != "" && !models.RunStatus(status).Valid() {
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidArgument, status)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(map[string]any{"status": status, "limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	summaries := make([]runSummary, len(runs))
	for i, run := range runs {
		summaries[i] = summarizeRun(run)
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}
	if len(summaries) == 0 {
		return r.writePlain("No runs recorded\n")
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		started := ""
		if s.StartedAt != nil {
			started = s.StartedAt.Local().Format("2006-01-02 15:04:05")
		}
		rows[i] = []string{
			s.ID, started, s.Source, string(s.Status),
			strconv.Itoa(s.Resolved), strconv.Itoa(s.Dropped), s.File,
		}
	}
	return r.writePlain("%s\n", renderTable(
		[]string{"ID", "Started", "Source", "Status", "Resolved", "Dropped", "File"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
}

// RunsDelete removes a run from history.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	if err := repositories.NewRunRepository(db).Delete(id); err != nil {
		return err
	}
	return r.writePlain("✓ Run %s deleted\n", id)
}

// CacheList shows cached searches, most used first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	entries, err := repositories.NewSearchCacheRepository(db).List(nil)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return r.writePlain("Search cache is empty\n")
	}

	limit := cmd.Int("limit")
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Catalog(), e.QueryKey(), strconv.Itoa(len(e.Candidates())), strconv.Itoa(e.Hits()),
			e.UpdatedAt().Local().Format("2006-01-02 15:04"),
		}
	}
	return r.writePlain("%s\n", renderTable(
		[]string{"Catalog", "Query", "Candidates", "Hits", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	))
}

// CacheClear removes every cached search.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewSearchCacheRepository(db)

	entries, err := repo.List(nil)
	if err != nil {
		return err
	}

	catalogs := map[string]bool{}
	var removed int64
	for _, e := range entries {
		if catalogs[e.Catalog()] {
			continue
		}
		catalogs[e.Catalog()] = true

		n, err := repo.Clear(e.Catalog())
		if err != nil {
			return err
		}
		removed += n
	}

	r.logger.Info("search cache cleared", "entries", removed)
	return r.writePlain("✓ Removed %d cached searches\n", removed)
}
