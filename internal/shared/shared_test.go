package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		l.Info("resolved", "count", 3)

		if !strings.Contains(buf.String(), "resolved") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithLogger(NewLogger(&buf), "component", "pipeline")
		l.Warn("dropped")

		if !strings.Contains(buf.String(), "component=pipeline") {
			t.Errorf("expected child logger fields, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		SetLogLevel(l, log.InfoLevel)
		l.Debug("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected debug output to be filtered, got %q", buf.String())
		}

		SetLogLevel(l, log.DebugLevel)
		l.Debug("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("expected debug output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger appends to file", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "gilderr.log")
		l, f, err := NewFileLogger(p)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		l.Info("tui started")
		f.Close()

		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "tui started") {
			t.Errorf("expected log file to contain message, got %q", string(data))
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %d", len(a))
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"resolved": 2}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(compact) != `{"resolved":2}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"resolved\": 2") {
		t.Errorf("unexpected pretty output %s", pretty)
	}
}

func TestBrowserCommand(t *testing.T) {
	const url = "https://accounts.spotify.com/authorize?state=x"

	tests := []struct {
		goos    string
		want    []string
		wantErr bool
	}{
		{goos: "darwin", want: []string{"open", url}},
		{goos: "linux", want: []string{"xdg-open", url}},
		{goos: "windows", want: []string{"rundll32", "url.dll,FileProtocolHandler", url}},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Setenv("BROWSER", "")
			cmd, err := browserCommand(tt.goos, url)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected unsupported platform error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(cmd.Args, " ") != strings.Join(tt.want, " ") {
				t.Errorf("expected %v, got %v", tt.want, cmd.Args)
			}
		})
	}

	t.Run("BROWSER overrides the platform opener", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox")
		cmd, err := browserCommand("plan9", url)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Args[0] != "firefox" || cmd.Args[1] != url {
			t.Errorf("unexpected args %v", cmd.Args)
		}
	})
}
