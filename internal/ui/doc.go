// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through stored playlists:
//  1. [PlaylistListView] : browse the playlist directory
//  2. [TrackListView] : preview the records of one playlist
//  3. [ConfirmView] : confirm resolving its missing URLs
//  4. [ResolveView] : follow progress while records resolve
//  5. [ResultView] : the stored file, the summary and every dropped record
//
// The [Model] implements bubbletea's Init/Update/View pattern, receiving messages via the [Msg] union type.
// Progress updates flow through a channel from the playlist engine and never block it.
//
// Keyboard navigation uses the bindings in keyMap with contextual help from charmbracelet/bubbles/help.
package ui
