// Package hub unifies the playback backends behind one facade and keeps the
// UI in sync with them.
//
// # Facade
//
// [Facade] owns the service selector. Every transport command routes to the
// active backend only; backends are constructed lazily on first use through
// injected constructors. Switching services re-synchronizes the presentation
// state from the new backend but deliberately does not stop the old one:
// no cross-backend exclusivity is enforced, a known limitation carried over
// from the product behavior.
//
// An authentication failure from the remote backend forces the selector back
// to local and raises the needs-auth flag until a switch back succeeds.
//
// # Synchronization
//
// [SyncLoop] reconciles state on two triggers: an immediate [SyncLoop.Poke]
// after every command, and a fixed-interval poll (remote playback can change
// from outside this process). An atomic in-flight guard keeps slow polls
// from piling up. Each cycle publishes a [Snapshot] to subscribers.
//
// # Simulated Devices
//
// [Home] holds the demo lighting and temperature state. It has no device
// protocol behind it; commands mutate in-memory state published with every
// snapshot.
package hub
