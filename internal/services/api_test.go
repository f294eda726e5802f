package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/gilderr/internal/shared"
	th "github.com/desertthunder/gilderr/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != "http://127.0.0.1:8090" {
				t.Errorf("expected default baseURL, got %s", srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET, got %s", r.Method)
				}
				if r.URL.Path != "/health" {
					t.Errorf("expected /health, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":"ok"}`))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, server.Client()).Get(context.Background(), "/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Errorf("expected OK JSON response, got %d json=%v", resp.StatusCode, resp.IsJSON)
			}

			var body map[string]string
			if err := resp.Decode(&body); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if body["status"] != "ok" {
				t.Errorf("expected status ok, got %v", body)
			}
			if resp.Headers.Get("Content-Type") != "application/json" {
				t.Errorf("expected headers to be kept, got %v", resp.Headers)
			}
		})

		t.Run("Plain Text Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusTeapot)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, server.Client()).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() || resp.IsJSON {
				t.Errorf("expected non-OK text response, got %d json=%v", resp.StatusCode, resp.IsJSON)
			}
			if err := resp.Decode(&map[string]any{}); err == nil {
				t.Error("expected decode error for text body")
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("connection refused"))}
			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected request failure, got %v", err)
			}
		})

		t.Run("Body Read Error", func(t *testing.T) {
			client := &http.Client{Transport: th.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &th.FCloser{},
				Header:     http.Header{},
			}, nil)}
			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read failure, got %v", err)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}
			data, _ := io.ReadAll(r.Body)
			w.Write(data)
		}))
		defer server.Close()

		resp, err := NewAPIService(server.URL, server.Client()).Post(context.Background(), "/echo", map[string]int{"n": 1})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(resp.Body) != `{"n":1}` {
			t.Errorf("expected echoed body, got %s", resp.Body)
		}

		if _, err := NewAPIService(server.URL, nil).Post(context.Background(), "/", func() {}); err == nil {
			t.Error("expected encode error for unsupported value")
		}
	})
}

func TestGeneratorService(t *testing.T) {
	newGenerator := func(t *testing.T, h http.HandlerFunc) *GeneratorService {
		t.Helper()
		server := httptest.NewServer(h)
		t.Cleanup(server.Close)
		return NewGeneratorService(NewAPIService(server.URL, server.Client()), "")
	}

	t.Run("Returns Playlist", func(t *testing.T) {
		g := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/generate" {
				t.Errorf("expected default path /generate, got %s", r.URL.Path)
			}
			var req generateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("bad request body: %v", err)
			}
			if req.Instructions != "90s britpop" {
				t.Errorf("expected trimmed instructions, got %q", req.Instructions)
			}
			json.NewEncoder(w).Encode(generateResponse{Playlist: "Blur\tSong 2\t1997\t\n"})
		})

		got, err := g.Generate(context.Background(), "  90s britpop ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != "Blur\tSong 2\t1997\t\n" {
			t.Errorf("unexpected playlist %q", got)
		}
		if g.Name() != "generator" {
			t.Errorf("unexpected name %s", g.Name())
		}
	})

	t.Run("Missing Instructions", func(t *testing.T) {
		g := NewGeneratorService(NewAPIService("", nil), "")
		if _, err := g.Generate(context.Background(), "   "); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Error Status", func(t *testing.T) {
		g := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"model offline"}`))
		})

		_, err := g.Generate(context.Background(), "anything")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "model offline") {
			t.Errorf("expected generator message in error, got %v", err)
		}
	})

	t.Run("Empty Playlist", func(t *testing.T) {
		g := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"playlist":"  "}`))
		})
		if _, err := g.Generate(context.Background(), "anything"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Non JSON Body", func(t *testing.T) {
		g := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Blur\tSong 2"))
		})
		if _, err := g.Generate(context.Background(), "anything"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("dial tcp: refused"))}
		g := NewGeneratorService(NewAPIService("http://generator.invalid", client), "/gen")
		if _, err := g.Generate(context.Background(), "anything"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
