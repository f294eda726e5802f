package shared

import "errors"

// Sentinels are wrapped with %w and matched with errors.Is. The HTTP API answers
// 400 for ErrInvalidFilename and ErrMissingArgument, 404 for ErrPlaylistNotFound,
// 502 for ErrAPIRequest and 503 for ErrServiceUnavailable.
var (
	// config.toml, .env and the environment
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")

	// Spotify login and the stored token
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTokenExpired     = errors.New("access token expired")
	ErrTimeout          = errors.New("operation timed out")

	// catalog search, the generator and the run store
	ErrAPIRequest         = errors.New("API request failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrTrackNotFound      = errors.New("track not found")
	ErrRunNotFound        = errors.New("resolution run not found")
	ErrCacheMiss          = errors.New("search cache miss")

	// playlist names, TSV content and CLI flags
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidFilename = errors.New("invalid playlist filename")
)
