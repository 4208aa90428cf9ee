// Package media provides the streaming media element the local playback
// engine drives.
//
// # Element Contract
//
// [Element] models one logical audio output. The engine owning an element is
// its only mutator; nothing else touches it. Each successful [Element.Load]
// returns a fresh end channel that receives exactly one value if that load
// finishes naturally, then closes. Replacing the load (another Load, Stop, or
// Close) closes the previous channel without a send, so a watcher can
// distinguish natural end from abandonment with a single comma-ok receive.
//
// # Implementations
//
//   - [Sim] : a timer-driven element for demos and development; position
//     advances on a wall-clock tick and tracks end after a configurable
//     simulated length
//   - [MPD] : drives a Music Player Daemon over gompd, with the reconnect
//     behavior a long-lived TCP client needs
//   - [Mock] : a recording test double
package media
