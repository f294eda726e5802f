package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/desertthunder/gilderr/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for stored playlists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they do not interfere with TUI rendering
	logPath := filepath.Join(os.TempDir(), "gilderr-tui.log")
	fileLogger, logFile, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	store, err := r.playlistStore()
	if err != nil {
		return err
	}
	engine, err := r.playlistEngine()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, store, engine)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
