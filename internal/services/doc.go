// Package services talks to the systems gilderr depends on but does not own.
//
// # Catalog
//
// [Catalog] is the search collaborator the resolution pipeline drives. [SpotifyService] implements it
// against the Spotify Web API and [SearchFunc] adapts any function for tests and decorators.
//
// # Spotify
//
// [SpotifyService] authenticates either with a user token obtained through the authorization-code flow
// (refreshed automatically by [oauth2]) or with an app token from the client-credentials grant, which
// is enough for search. Requests that fail with 429 or 5xx are retried with exponential backoff,
// honoring Retry-After.
//
// # Generator
//
// [GeneratorService] posts free-form instructions to an external generator and returns the TSV text it
// produces. [APIService] is the raw JSON client underneath.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no credentials configured yet
//   - [shared.ErrTokenExpired] : the catalog answered 401
//   - [shared.ErrAPIRequest] : non-success response or undecodable body
//   - [shared.ErrServiceUnavailable] : the generator could not be reached
package services
