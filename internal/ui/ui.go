package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	ResolveView
	ResultView
)

// PlaylistSource lists and reads stored playlists.
type PlaylistSource interface {
	List() ([]string, error)
	Read(name string) (string, error)
}

// Engine resolves a playlist and stores the result.
type Engine interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, req tasks.RunRequest) (*tasks.RunResult, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	store        PlaylistSource
	engine       Engine
	width        int
	height       int
	loaded       bool
	tracksLoaded bool
	playlistList list.Model
	trackList    list.Model
	selected     formatter.Playlist
	progressChan chan tasks.ProgressUpdate
	done         chan resolveData
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, store PlaylistSource, engine Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   PlaylistListView,
		store:  store,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the stored playlists.
func (m *Model) Init() tea.Cmd {
	return m.loadPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.listSize()
		if m.loaded {
			m.playlistList.SetSize(w, h)
		}
		if m.tracksLoaded {
			m.trackList.SetSize(w, h)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResolveView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsLoaded:
		data := msg.data.(playlistsData)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.playlists))
		for i, p := range data.playlists {
			items[i] = playlistItem{playlist: p}
		}
		w, h := m.listSize()
		m.playlistList = list.New(items, list.NewDefaultDelegate(), w, h)
		m.playlistList.Title = "Playlists"
		m.loaded = true
		m.err = nil
		return m, nil

	case MsgTracksLoaded:
		data := msg.data.(tracksData)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = data.playlist
		items := make([]list.Item, len(data.playlist.Records))
		for i, rec := range data.playlist.Records {
			items[i] = trackItem{record: rec}
		}
		w, h := m.listSize()
		m.trackList = list.New(items, list.NewDefaultDelegate(), w, h)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", data.playlist.Title())
		m.tracksLoaded = true
		m.view = TrackListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgResolveComplete:
		data := msg.data.(resolveData)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.done = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.failed.Render(fmt.Sprintf("Error: %v\n\nPress l to reload, q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ResolveView:
		return m.renderResolve()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// listSize leaves room for the title and help lines.
func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loaded && m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.reload):
		m.err = nil
		return m, m.loadPlaylists()
	case key.Matches(msg, m.keys.enter):
		if !m.loaded {
			return m, nil
		}
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.loadTracks(pl.playlist.name)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.resolve), key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = ResolveView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startResolve()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.reload):
		m.view = PlaylistListView
		m.result = nil
		m.err = nil
		return m, m.loadPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		if m.loaded {
			m.playlistList, cmd = m.playlistList.Update(msg)
		}
	case TrackListView:
		if m.tracksLoaded {
			m.trackList, cmd = m.trackList.Update(msg)
		}
	}
	return m, cmd
}

func (m *Model) loadPlaylists() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		names, err := store.List()
		if err != nil {
			return playlistsLoadedMsg(nil, err)
		}

		entries := make([]playlistEntry, len(names))
		for i, name := range names {
			entries[i].name = name
			text, err := store.Read(name)
			if err != nil {
				entries[i].err = err
				continue
			}
			p := formatter.Playlist{Name: name, Records: formatter.Decode(text)}
			entries[i].tracks = len(p.Records)
			entries[i].unresolved = p.Missing()
		}
		return playlistsLoadedMsg(entries, nil)
	}
}

func (m *Model) loadTracks(name string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		text, err := store.Read(name)
		if err != nil {
			return tracksLoadedMsg(formatter.Playlist{}, err)
		}
		return tracksLoadedMsg(formatter.Playlist{Name: name, Records: formatter.Decode(text)}, nil)
	}
}

// startResolve runs the engine in the background. The progress channel is closed once the engine
// returns, and the outcome follows on done.
func (m *Model) startResolve() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan resolveData, 1)
	m.progressChan = progress
	m.done = done

	ctx, engine := m.ctx, m.engine
	req := tasks.RunRequest{
		Source: m.selected.Name,
		Name:   m.selected.Name,
		Text:   formatter.Encode(m.selected.Records),
	}

	go func() {
		result, err := engine.Run(ctx, progress, req)
		close(progress)
		done <- resolveData{result: result, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		data := <-done
		return resolveCompleteMsg(data.result, data.err)
	}
}

func (m *Model) renderPlaylistList() string {
	if !m.loaded {
		return styles.muted.Render("Loading playlists...")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.reload, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.resolve, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	p := m.selected
	title := styles.heading.Render(fmt.Sprintf("Resolve '%s'?", p.Title()))
	info := fmt.Sprintf("\nTracks: %d\nWithout URL: %d\n", len(p.Records), p.Missing())
	if p.Missing() == 0 {
		info += styles.muted.Render("Every track already has a URL; the playlist will only be re-validated and stored.") + "\n"
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderResolve() string {
	title := styles.heading.Render("Resolving Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.DecodePlaylist:
		phase = "Reading playlist..."
	case tasks.ResolveTracks:
		phase = fmt.Sprintf("Resolving tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ValidatePlaylist:
		phase = "Validating..."
	case tasks.SavePlaylist, tasks.Completed:
		phase = "Saving..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.err != nil {
		return styles.failed.Render(fmt.Sprintf("Resolution failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil || m.result.Result == nil {
		return styles.failed.Render("No result available") + "\n\n" + helpView
	}

	level, summary := m.result.Result.Summary()
	title := styles.summary(level, summary)

	var b strings.Builder
	fmt.Fprintf(&b, "\nStored as: %s\nResolved: %d", m.result.File, len(m.result.Result.Resolved))
	if dropped := m.result.Result.DroppedStrings(); len(dropped) > 0 {
		b.WriteString("\n\n" + styles.dropped.Render(fmt.Sprintf("Removed %d tracks:", len(dropped))))
		for _, d := range dropped {
			fmt.Fprintf(&b, "\n  • %s", d)
		}
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, b.String(), helpView)
}
