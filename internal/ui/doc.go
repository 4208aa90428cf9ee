// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The TUI mirrors the web dashboard: a now-playing pane, home-control pane,
// and a catalog search workflow across three views:
//  1. [DashboardView] : Playback transport, service selection, and home controls
//  2. [SearchInputView] : Free-text catalog query
//  3. [SearchResultsView] : Browse results and start local playback
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// State frames flow through a sync-loop watcher channel, so every surface (TUI, web) renders the same snapshots.
//
// Keyboard bindings mirror the dashboard command surface (space, n/p, s, l, [/], +/-, /) with contextual help displayed via charmbracelet/bubbles/help.
package ui
