package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/shared"
)

// GeneratedName is the base file name for playlists produced by the generator.
const GeneratedName = "playlist_generated"

// PlaylistStore persists validated playlist text and returns the stored file name.
type PlaylistStore interface {
	Save(original, text string, at time.Time) (string, error)
}

// RunRecorder keeps the history of resolution batches.
type RunRecorder interface {
	Create(run *models.ResolutionRun) error
	Update(run *models.ResolutionRun) error
}

// Generator produces TSV playlist text from free-form instructions.
type Generator interface {
	Generate(ctx context.Context, instructions string) (string, error)
}

// RunRequest describes one playlist to resolve.
type RunRequest struct {
	Source string // where the text came from: a file name, "upload" or "generator"
	Name   string // base name for the stored file
	Text   string // raw TSV text, header optional
	DryRun bool   // resolve and validate without storing or recording history
}

// RunResult is the outcome of [PlaylistEngine.Run].
type RunResult struct {
	File   string // stored file name, empty on dry runs
	Text   string // encoded playlist
	Result *ResolveResult
	Run    *models.ResolutionRun // nil when history is disabled or on dry runs
}

// EngineOpts wires the optional collaborators of a [PlaylistEngine].
type EngineOpts struct {
	Runs       RunRecorder
	Generator  Generator
	Concurrent bool // use Resolver.ResolveConcurrent
	Logger     *log.Logger
}

// PlaylistEngine runs the full decode, resolve, encode, validate and store path.
type PlaylistEngine struct {
	resolver   *Resolver
	store      PlaylistStore
	runs       RunRecorder
	generator  Generator
	concurrent bool
	logger     *log.Logger
	now        func() time.Time
}

// NewPlaylistEngine creates a new PlaylistEngine.
func NewPlaylistEngine(resolver *Resolver, store PlaylistStore, opts EngineOpts) *PlaylistEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &PlaylistEngine{
		resolver:   resolver,
		store:      store,
		runs:       opts.Runs,
		generator:  opts.Generator,
		concurrent: opts.Concurrent,
		logger:     logger,
		now:        time.Now,
	}
}

// Run resolves req.Text and stores the validated result under a timestamped name.
//
// Validation errors are returned untouched so callers can show them verbatim. A failed run is
// still recorded in history.
func (e *PlaylistEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, req RunRequest) (*RunResult, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not initialized", shared.ErrServiceUnavailable)
	}
	if !req.DryRun && e.store == nil {
		return nil, fmt.Errorf("%w: playlist store not initialized", shared.ErrServiceUnavailable)
	}
	if req.Name == "" {
		req.Name = req.Source
	}

	records := formatter.Decode(req.Text)
	sendProgress(progress, decodeUpdate(len(records)))

	run := e.startRun(req, len(records))

	resolve := e.resolver.Resolve
	if e.concurrent {
		resolve = e.resolver.ResolveConcurrent
	}
	res, err := resolve(ctx, records, ProgressChannel(progress))
	if err != nil {
		e.failRun(run, err)
		return nil, fmt.Errorf("resolution interrupted: %w", err)
	}

	out := &RunResult{Result: res, Run: run, Text: formatter.Encode(res.Records())}

	sendProgress(progress, validateUpdate(len(res.Resolved)))
	if err := formatter.Validate(out.Text); err != nil {
		e.failRun(run, err)
		return out, err
	}

	if !req.DryRun {
		name, err := e.store.Save(req.Name, out.Text, e.now())
		if err != nil {
			e.failRun(run, err)
			return out, fmt.Errorf("failed to save playlist: %w", err)
		}
		out.File = name
		sendProgress(progress, saveUpdate(name))
	}

	e.completeRun(run, out)

	level, msg := res.Summary()
	e.logger.Log(level, msg, "source", req.Source, "file", out.File, "resolved", len(res.Resolved), "dropped", len(res.Dropped))
	sendProgress(progress, completedUpdate(out))
	return out, nil
}

// Generate asks the generator for a playlist and runs it under [GeneratedName].
func (e *PlaylistEngine) Generate(ctx context.Context, progress chan<- ProgressUpdate, instructions string, dryRun bool) (*RunResult, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generator not configured", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, generateUpdate())
	text, err := e.generator.Generate(ctx, instructions)
	if err != nil {
		return nil, err
	}

	return e.Run(ctx, progress, RunRequest{Source: "generator", Name: GeneratedName, Text: text, DryRun: dryRun})
}

// startRun records a running batch. History faults are logged and never abort the batch.
func (e *PlaylistEngine) startRun(req RunRequest, total int) *models.ResolutionRun {
	if e.runs == nil || req.DryRun {
		return nil
	}

	run := models.NewResolutionRun(0, req.Source, total)
	run.Start(e.now())
	if err := e.runs.Create(run); err != nil {
		e.logger.Warn("failed to record run", "source", req.Source, "error", err)
		return nil
	}
	return run
}

func (e *PlaylistEngine) completeRun(run *models.ResolutionRun, out *RunResult) {
	if run == nil {
		return
	}
	run.Complete(e.now(), out.File, len(out.Result.Resolved), len(out.Result.Dropped))
	if err := e.runs.Update(run); err != nil {
		e.logger.Warn("failed to update run", "id", run.ID(), "error", err)
	}
}

func (e *PlaylistEngine) failRun(run *models.ResolutionRun, cause error) {
	if run == nil {
		return
	}
	run.Fail(e.now(), cause)
	if err := e.runs.Update(run); err != nil {
		e.logger.Warn("failed to update run", "id", run.ID(), "error", err)
	}
}
