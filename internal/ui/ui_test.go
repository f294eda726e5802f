package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/formatter"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/shared"
	"github.com/desertthunder/gilderr/internal/tasks"
)

type memStore map[string]string

func (s memStore) List() ([]string, error) {
	names := []string{}
	for _, n := range []string{"a.tsv", "b.tsv"} {
		if _, ok := s[n]; ok {
			names = append(names, n)
		}
	}
	return names, nil
}

func (s memStore) Read(name string) (string, error) {
	text, ok := s[name]
	if !ok {
		return "", shared.ErrPlaylistNotFound
	}
	return text, nil
}

type fakeEngine struct {
	req tasks.RunRequest
	err error
}

func (f *fakeEngine) Run(_ context.Context, progress chan<- tasks.ProgressUpdate, req tasks.RunRequest) (*tasks.RunResult, error) {
	f.req = req
	progress <- tasks.ProgressUpdate{Phase: tasks.ResolveTracks, Step: 1, Total: 2, Message: "[1/2] Resolving tracks..."}
	if f.err != nil {
		return nil, f.err
	}
	return &tasks.RunResult{
		File: "a_2024-03-09_14-05-06.tsv",
		Result: &tasks.ResolveResult{
			Resolved: []models.ResolvedRecord{{Artist: "Blur", Title: "Song 2", Year: "1997", URL: "https://open.spotify.com/track/x"}},
			Dropped:  []models.DroppedRecord{{Artist: "Nobody", Title: "Nothing"}},
		},
	}, nil
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// drain runs cmd and feeds every resulting message back into the model until no command is left.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 20 {
			t.Fatal("too many commands")
		}
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

const sampleText = "Blur\tSong 2\t1997\t\nNobody\tNothing\t2000\t\n"

func TestModel(t *testing.T) {
	newModel := func(engine Engine) *Model {
		m := NewModel(context.Background(), memStore{"a.tsv": sampleText, "b.tsv": ""}, engine)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
		return m
	}

	t.Run("loads playlists", func(t *testing.T) {
		m := newModel(&fakeEngine{})
		if !strings.Contains(m.View(), "Loading") {
			t.Errorf("expected loading view, got %q", m.View())
		}

		drain(t, m, m.Init())
		if !m.loaded || len(m.playlistList.Items()) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(m.playlistList.Items()))
		}
		item := m.playlistList.Items()[0].(playlistItem)
		if item.playlist.tracks != 2 || item.playlist.unresolved != 2 {
			t.Errorf("unexpected counts %+v", item.playlist)
		}
		if !strings.Contains(item.Description(), "2 without URL") {
			t.Errorf("unexpected description %q", item.Description())
		}
	})

	t.Run("resolve flow", func(t *testing.T) {
		engine := &fakeEngine{}
		m := newModel(engine)
		drain(t, m, m.Init())

		_, cmd := m.Update(keyMsg("enter"))
		drain(t, m, cmd)
		if m.view != TrackListView || m.selected.Name != "a.tsv" || len(m.trackList.Items()) != 2 {
			t.Fatalf("expected track list for a.tsv, got view %d %q", m.view, m.selected.Name)
		}

		m.Update(keyMsg("r"))
		if m.view != ConfirmView || !strings.Contains(m.View(), "Without URL: 2") {
			t.Fatalf("expected confirm view, got %q", m.View())
		}

		_, cmd = m.Update(keyMsg("y"))
		if m.view != ResolveView {
			t.Fatalf("expected resolve view, got %d", m.view)
		}
		drain(t, m, cmd)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		if engine.req.Name != "a.tsv" || !strings.Contains(engine.req.Text, "Blur\tSong 2") {
			t.Errorf("unexpected request %+v", engine.req)
		}
		view := m.View()
		for _, want := range []string{"⚠ 1 songs removed, not found", "a_2024-03-09_14-05-06.tsv", "Nobody – Nothing"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected result view to contain %q, got %q", want, view)
			}
		}
	})

	t.Run("resolve failure", func(t *testing.T) {
		m := newModel(&fakeEngine{err: errors.New("catalog down")})
		drain(t, m, m.Init())
		_, cmd := m.Update(keyMsg("enter"))
		drain(t, m, cmd)
		m.Update(keyMsg("r"))
		_, cmd = m.Update(keyMsg("y"))
		drain(t, m, cmd)

		if m.view != ResultView || !strings.Contains(m.View(), "catalog down") {
			t.Errorf("expected failure in result view, got %q", m.View())
		}
	})

	t.Run("navigation", func(t *testing.T) {
		m := newModel(&fakeEngine{})
		drain(t, m, m.Init())
		_, cmd := m.Update(keyMsg("enter"))
		drain(t, m, cmd)

		m.Update(keyMsg("r"))
		m.Update(keyMsg("n"))
		if m.view != TrackListView {
			t.Errorf("expected n to return to track list, got %d", m.view)
		}

		m.Update(keyMsg("esc"))
		if m.view != PlaylistListView {
			t.Errorf("expected esc to return to playlists, got %d", m.view)
		}

		if _, cmd := m.Update(keyMsg("q")); cmd == nil {
			t.Error("expected quit command")
		}
	})

	t.Run("missing playlist", func(t *testing.T) {
		m := newModel(&fakeEngine{})
		_, cmd := m.Update(tracksLoadedMsg(formatter.Playlist{}, shared.ErrPlaylistNotFound))
		drain(t, m, cmd)
		if m.view != PlaylistListView || !strings.Contains(m.View(), "playlist not found") {
			t.Errorf("expected error view, got %q", m.View())
		}
	})
}

func TestThemeSummary(t *testing.T) {
	tests := []struct {
		level log.Level
		mark  string
	}{
		{log.InfoLevel, "✓ "},
		{log.WarnLevel, "⚠ "},
	}
	for _, tt := range tests {
		if got := styles.summary(tt.level, "done"); !strings.Contains(got, tt.mark+"done") {
			t.Errorf("%v: expected %q in %q", tt.level, tt.mark+"done", got)
		}
	}
}
