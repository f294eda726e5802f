// Package server provides HTTP routing, middleware, the playlist API and the OAuth callback.
//
// # Router Infrastructure
//
// [Mux] implements [Router] on [http.ServeMux] method patterns, so a wrong method gets a 405.
//
// [Middleware] runs in the order it was added to the chain. [Recover] and [Logging] are the two the
// serve command installs.
//
// # Playlist API
//
// [API] serves everything under /api/:
//
//	GET  /api/health               {"status":"ok"}
//	GET  /api/playlists            {"playlists":[...]}
//	GET  /api/load-playlist?name=  {"content":"..."}
//	POST /api/upload-playlist      multipart field "playlist", answers "OK" or "invalid file: ..."
//	POST /api/resolve              {"name","content"} -> [ResolveResponse]
//	POST /api/generate-playlist    {"instructions"} -> [ResolveResponse]
//	GET  /api/spotify-token        {"accessToken":"..."}
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code and publishes the result
// through a channel. It only processes one callback.
//
// # Endpoint Groups
//
// [API] and [OAuthHandler] implement [Endpoints]; [Mux.Mount] registers every pattern a group lists.
package server
