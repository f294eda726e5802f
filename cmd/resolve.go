package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/desertthunder/gilderr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Resolve fills in missing track URLs of a local playlist file and stores the result.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	engine, err := r.playlistEngine()
	if err != nil {
		return err
	}

	source := filepath.Base(path)
	name := cmd.String("name")
	if name == "" {
		name = source
	}
	req := tasks.RunRequest{Source: source, Name: name, Text: string(data), DryRun: cmd.Bool("dry-run")}

	out, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error) {
		return engine.Run(ctx, progress, req)
	})
	return r.reportRun(out, err, cmd.Bool("print"))
}

// Generate asks the generator for a playlist and resolves it.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.playlistEngine()
	if err != nil {
		return err
	}

	instructions := cmd.String("instructions")
	out, err := r.withProgress(func(progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error) {
		return engine.Generate(ctx, progress, instructions, cmd.Bool("dry-run"))
	})
	return r.reportRun(out, err, cmd.Bool("print"))
}

// withProgress runs fn with a progress channel and renders its updates. On a terminal the resolve
// counter is redrawn in place; otherwise updates only reach the debug log.
func (r *Runner) withProgress(fn func(chan<- tasks.ProgressUpdate) (*tasks.RunResult, error)) (*tasks.RunResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		inline := false
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
			if !r.terminal {
				continue
			}
			switch update.Phase {
			case tasks.ResolveTracks:
				r.writePlain("\r%s", update.Message)
				inline = true
			case tasks.GeneratePlaylist, tasks.SavePlaylist:
				if inline {
					r.writePlain("\n")
					inline = false
				}
				r.writePlain("→ %s\n", update.Message)
			}
		}
		if inline {
			r.writePlain("\n")
		}
	}()

	out, err := fn(progress)
	close(progress)
	<-done
	return out, err
}

// reportRun prints the outcome of a run: the stored file, the summary and every dropped record.
func (r *Runner) reportRun(out *tasks.RunResult, err error, printText bool) error {
	if out != nil && out.Result != nil {
		r.writePlain("Resolved: %d\n", len(out.Result.Resolved))
		if dropped := out.Result.DroppedStrings(); len(dropped) > 0 {
			r.writePlain("Dropped: %d\n", len(dropped))
			for _, d := range dropped {
				r.writePlain("  - %s\n", d)
			}
		}
	}
	if err != nil {
		return err
	}

	level, summary := out.Result.Summary()
	mark := "✓"
	if level == log.WarnLevel {
		mark = "⚠"
	}
	r.writePlain("%s %s\n", mark, summary)

	if out.File != "" {
		r.writePlain("✓ Stored as %s\n", out.File)
	} else {
		r.writePlain("Dry run: nothing stored\n")
	}

	if printText {
		r.writePlainln("%s", out.Text)
	}
	return nil
}
