// Package music defines the playback domain model shared by every backend.
//
// The package contains value types only; all mutable playback state lives in
// the backends that own it.
//
// # Tracks and Sources
//
//   - [Track] : One playable unit with a media locator and display metadata
//   - [Source] : Which origin produced a track and which backend can play it
//   - [Playlist] : Ordered tracks; insertion order is playback order
//
// # State and Presentation
//
//   - [PlaybackState] : A backend's snapshot (current track, index, position)
//   - [NowPlaying] : The merged presentation view the UI renders
//   - [Service] : The selectable playback backends
//
// # Degraded Results
//
// [Result] wraps data with a degraded flag so callers can distinguish live
// origin data from fallback data without inspecting it.
package music
