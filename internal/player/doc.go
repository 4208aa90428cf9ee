// Package player implements the local playback engine.
//
// # State Machine
//
// [Engine] runs a state machine over [Status] values (Idle, Loading, Playing,
// Paused, Ended, Error) around one [media.Element]. Commands are serialized
// by the engine's lock; asynchronous element completions are reconciled under
// the same lock.
//
// # Command Generations
//
// Every state-mutating command bumps a monotonic generation counter. End-of-
// media completions carry the generation they were issued under and are
// discarded when a later command has superseded them, so a stale completion
// can never overwrite fresher state.
//
// # Events
//
// Consumers call [Engine.Subscribe] for typed, buffered event channels
// ([TrackChange], [StateChange], [PlaylistUpdate], [ErrorEvent]). Sends never
// block: a subscriber that falls more than a buffer behind loses the oldest
// events rather than stalling playback.
package player
