// package media defines the streaming element contract for local playback
package media

import (
	"context"
	"time"
)

// Element is a single streaming media output. Implementations must be safe
// for concurrent use; the owning engine serializes commands but watches end
// channels from other goroutines.
type Element interface {
	// Load opens the locator and starts playback. The returned channel
	// receives one value on natural end-of-media, then closes. A subsequent
	// Load, Stop, or Close closes it without a send.
	Load(ctx context.Context, url string) (<-chan struct{}, error)

	// Play resumes suspended output. No-op when nothing is loaded.
	Play() error

	// Pause suspends output, keeping the locator and position.
	Pause() error

	// Stop releases the current locator and resets the position to zero.
	Stop() error

	// Seek moves the playhead within the current load.
	Seek(pos time.Duration) error

	// SetVolume takes a unit volume in [0, 1].
	SetVolume(v float64) error

	// Position reports the current playhead, zero when nothing is loaded.
	Position() time.Duration

	// Duration reports the current load's total length, zero when unknown.
	Duration() time.Duration

	// Close releases the element. The element is unusable afterwards.
	Close() error
}
