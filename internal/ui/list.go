package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/gilderr/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistEntry is a stored playlist with its counts.
type playlistEntry struct {
	name       string
	tracks     int
	unresolved int
	err        error
}

// playlistItem wraps a [playlistEntry] to implement [list.Item].
type playlistItem struct {
	playlist playlistEntry
}

func (i playlistItem) FilterValue() string { return i.playlist.name }
func (i playlistItem) Title() string       { return i.playlist.name }
func (i playlistItem) Description() string {
	if i.playlist.err != nil {
		return "unreadable: " + i.playlist.err.Error()
	}
	desc := fmt.Sprintf("%d tracks", i.playlist.tracks)
	if i.playlist.unresolved > 0 {
		desc = fmt.Sprintf("%s • %d without URL", desc, i.playlist.unresolved)
	}
	return desc
}

// trackItem wraps [models.SourceRecord] to implement [list.Item].
type trackItem struct {
	record models.SourceRecord
}

func (i trackItem) FilterValue() string { return i.record.Artist + " " + i.record.Title }
func (i trackItem) Title() string       { return i.record.Title }
func (i trackItem) Description() string {
	desc := i.record.Artist
	if i.record.Year != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.record.Year)
	}
	if i.record.URL == "" {
		desc += " • no URL"
	}
	return desc
}
