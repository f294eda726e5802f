// package services defines the interfaces gilderr uses to reach external collaborators: a music
// [Catalog] to search, and the playlist generator.
package services

import (
	"context"

	"github.com/desertthunder/gilderr/internal/models"
)

// Service defines the behaviour shared by authenticated providers.
type Service interface {
	// Authenticate configures credentials for subsequent requests.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Catalog searches a music catalog for candidate tracks.
//
// Search may return zero candidates. Any error means the catalog could not answer; callers treat it
// like an empty result.
type Catalog interface {
	Search(ctx context.Context, artist, title, year string) ([]models.CatalogCandidate, error)
	Name() string
}

// SearchFunc adapts a plain function to [Catalog].
type SearchFunc func(ctx context.Context, artist, title, year string) ([]models.CatalogCandidate, error)

func (f SearchFunc) Search(ctx context.Context, artist, title, year string) ([]models.CatalogCandidate, error) {
	return f(ctx, artist, title, year)
}

func (f SearchFunc) Name() string { return "func" }
