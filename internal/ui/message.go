package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsLoaded MsgKind = iota
	MsgTracksLoaded
	MsgProgressUpdate
	MsgResolveComplete
)

type playlistsData struct {
	playlists []playlistEntry
	err       error
}

type tracksData struct {
	playlist formatter.Playlist
	err      error
}

type resolveData struct {
	result *tasks.RunResult
	err    error
}

// playlistsLoadedMsg is the constructor for [MsgPlaylistsLoaded]
func playlistsLoadedMsg(playlists []playlistEntry, err error) Msg {
	return Msg{kind: MsgPlaylistsLoaded, data: playlistsData{playlists, err}}
}

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(playlist formatter.Playlist, err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: tracksData{playlist, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// resolveCompleteMsg is the constructor for [MsgResolveComplete]
func resolveCompleteMsg(result *tasks.RunResult, err error) Msg {
	return Msg{kind: MsgResolveComplete, data: resolveData{result, err}}
}
