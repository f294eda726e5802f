// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gilderr/internal/models"
	"github.com/desertthunder/gilderr/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
	spotifyTrackURL = "https://open.spotify.com/track/"

	defaultSearchLimit = 10
)

// playbackScopes are requested by `auth login` so the token also drives a playback client.
var playbackScopes = []string{
	"streaming",
	"user-read-email",
	"user-read-private",
	"user-modify-playback-state",
	"user-read-playback-state",
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

// Candidate maps the track to a [models.CatalogCandidate].
func (t SpotifyTrack) Candidate() models.CatalogCandidate {
	c := models.CatalogCandidate{Name: t.Name, ID: t.ID, URL: t.ExternalURLs.Spotify}
	if len(t.Artists) > 0 {
		c.ArtistName = t.Artists[0].Name
	}
	if len(t.Album.ReleaseDate) >= 4 {
		if y, err := strconv.Atoi(t.Album.ReleaseDate[:4]); err == nil {
			c = c.WithReleaseYear(y)
		}
	}
	if c.URL == "" && t.ID != "" {
		c.URL = spotifyTrackURL + t.ID
	}
	return c
}

// SpotifyOpts configures a [SpotifyService]. Zero values fall back to the public API.
type SpotifyOpts struct {
	BaseURL     string
	TokenURL    string
	HTTPClient  *http.Client // transport used for API and token requests
	SearchLimit int
	Market      string
	Logger      *log.Logger
}

// SpotifyService implements [Catalog] against the Spotify Web API.
// Uses [oauth2] for the user flow and [clientcredentials] for app-only access.
type SpotifyService struct {
	config      *oauth2.Config
	clientCreds *clientcredentials.Config
	baseURL     string
	base        *http.Client
	limit       int
	market      string
	retry       retrier
	logger      *log.Logger

	mu             sync.RWMutex
	tokens         oauth2.TokenSource
	httpClient     *http.Client
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a Spotify client from configured credentials.
func NewSpotifyService(creds shared.SpotifyConfig, opts SpotifyOpts) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	limit := opts.SearchLimit
	if limit <= 0 || limit > 50 {
		limit = defaultSearchLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       playbackScopes,
			Endpoint:     oauth2.Endpoint{AuthURL: spotifyAuthURL, TokenURL: tokenURL},
		},
		clientCreds: &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
		},
		baseURL: baseURL,
		base:    base,
		limit:   limit,
		market:  opts.Market,
		retry:   newRetrier(logger),
		logger:  logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "spotify"
}

// OAuthConfig exposes the authorization-code configuration for callback handlers.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// SetTokenRefreshCallback registers fn to receive every new user token, including refreshes.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = fn
}

// tokenContext carries the base HTTP client to oauth2 token requests.
func (s *SpotifyService) tokenContext() context.Context {
	return context.WithValue(context.Background(), oauth2.HTTPClient, s.base)
}

// Authenticate accepts one of:
//   - "access_token" (optionally "refresh_token"): a stored user token
//   - "auth_code": an authorization code to exchange
//   - "grant" = "client_credentials": app-only access, enough for search
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		s.UseToken(&oauth2.Token{AccessToken: accessToken, RefreshToken: credentials["refresh_token"], TokenType: "Bearer"})
		return nil
	}

	if code := credentials["auth_code"]; code != "" {
		token, err := s.Exchange(ctx, code)
		if err != nil {
			return err
		}
		s.UseToken(token)
		return nil
	}

	if credentials["grant"] == "client_credentials" {
		s.UseClientCredentials()
		return nil
	}

	return fmt.Errorf("%w: missing access_token, auth_code or grant", shared.ErrMissingCredentials)
}

// Exchange trades an authorization code for a user token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.base)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// UseToken authenticates requests with a user token that refreshes itself when it expires.
func (s *SpotifyService) UseToken(token *oauth2.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := &refreshableTokenSource{
		source:   s.config.TokenSource(s.tokenContext(), token),
		callback: s.notifyRefresh,
	}
	s.setSource(oauth2.ReuseTokenSource(token, src))
}

// UseClientCredentials authenticates requests with an app token.
func (s *SpotifyService) UseClientCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSource(s.clientCreds.TokenSource(s.tokenContext()))
}

func (s *SpotifyService) setSource(ts oauth2.TokenSource) {
	s.tokens = ts
	s.httpClient = &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: s.base.Transport},
		Timeout:   s.base.Timeout,
	}
}

func (s *SpotifyService) notifyRefresh(token *oauth2.Token) {
	s.mu.RLock()
	fn := s.onTokenRefresh
	s.mu.RUnlock()
	if fn != nil {
		fn(token)
	}
}

// Token returns a currently valid access token, refreshing it if needed.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	ts := s.tokens
	s.mu.RUnlock()
	if ts == nil {
		return nil, shared.ErrNotAuthenticated
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}
	return token, nil
}

func (s *SpotifyService) client() (*http.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.httpClient == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.httpClient, nil
}

// doRequest performs an authenticated GET against the API and decodes the JSON body into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	client, err := s.client()
	if err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	resp, err := s.retry.do(ctx, client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// SearchQuery builds the field-filtered query string sent to the search endpoint.
func SearchQuery(artist, title string) string {
	return fmt.Sprintf("track:%s artist:%s", title, artist)
}

// Search looks up tracks by title and artist. The year is not sent; ranking uses it.
func (s *SpotifyService) Search(ctx context.Context, artist, title, year string) ([]models.CatalogCandidate, error) {
	query := url.Values{}
	query.Set("q", SearchQuery(artist, title))
	query.Set("type", "track")
	query.Set("limit", strconv.Itoa(s.limit))
	if s.market != "" {
		query.Set("market", s.market)
	}

	var response spotifySearchResponse
	if err := s.doRequest(ctx, "/search", query, &response); err != nil {
		return nil, err
	}

	candidates := make([]models.CatalogCandidate, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		candidates = append(candidates, item.Candidate())
	}
	s.logger.Debug("catalog search", "artist", artist, "title", title, "results", len(candidates))
	return candidates, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	var track SpotifyTrack
	if err := s.doRequest(ctx, "/tracks/"+url.PathEscape(trackID), nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// refreshableTokenSource reports every token that differs from the previous one.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
