package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/gilderr/internal/shared"
)

// GeneratorService asks an external text generator for a playlist in TSV form.
//
// The generator receives {"instructions": "..."} and answers {"playlist": "<tsv text>"}.
type GeneratorService struct {
	api  *APIService
	path string
}

type generateRequest struct {
	Instructions string `json:"instructions"`
}

type generateResponse struct {
	Playlist string `json:"playlist"`
	Error    string `json:"error,omitempty"`
}

// NewGeneratorService creates a generator client posting to path on api.
func NewGeneratorService(api *APIService, path string) *GeneratorService {
	if path == "" {
		path = "/generate"
	}
	return &GeneratorService{api: api, path: path}
}

// Generate returns the TSV text produced for instructions.
func (g *GeneratorService) Generate(ctx context.Context, instructions string) (string, error) {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return "", fmt.Errorf("%w: instructions", shared.ErrMissingArgument)
	}

	resp, err := g.api.Post(ctx, g.path, generateRequest{Instructions: instructions})
	if err != nil {
		return "", fmt.Errorf("%w: generator: %v", shared.ErrServiceUnavailable, err)
	}

	var body generateResponse
	if resp.IsJSON {
		_ = resp.Decode(&body)
	}

	if !resp.OK() {
		msg := body.Error
		if msg == "" {
			msg = strings.TrimSpace(string(resp.Body))
		}
		return "", fmt.Errorf("%w: generator returned status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
	if !resp.IsJSON {
		return "", fmt.Errorf("%w: generator returned non-JSON body", shared.ErrAPIRequest)
	}
	if strings.TrimSpace(body.Playlist) == "" {
		return "", fmt.Errorf("%w: generator returned an empty playlist", shared.ErrAPIRequest)
	}
	return body.Playlist, nil
}

func (g *GeneratorService) Name() string { return "generator" }
