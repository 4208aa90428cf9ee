package hub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/shared"
)

const (
	defaultSyncInterval = 3 * time.Second
	snapshotBufferSize  = 8
)

// Snapshot is one published view of the dashboard: playback, selector,
// auth prompt, and simulated devices.
type Snapshot struct {
	NowPlaying music.NowPlaying `json:"now_playing"`
	Service    music.Service    `json:"service"`
	NeedsAuth  bool             `json:"needs_auth"`
	Home       HomeState        `json:"home"`
	At         time.Time        `json:"at"`
}

// Watcher receives published snapshots on a buffered channel. Slow watchers
// miss snapshots rather than stalling the loop.
type Watcher struct {
	Snapshots <-chan Snapshot
	Done      <-chan struct{}

	snapCh chan Snapshot
	doneCh chan struct{}
}

func newWatcher() *Watcher {
	w := &Watcher{
		snapCh: make(chan Snapshot, snapshotBufferSize),
		doneCh: make(chan struct{}),
	}
	w.Snapshots = w.snapCh
	w.Done = w.doneCh
	return w
}

func (w *Watcher) close() {
	close(w.doneCh)
}

// send delivers a snapshot without blocking.
func (w *Watcher) send(s Snapshot) {
	select {
	case w.snapCh <- s:
	default:
	}
}

// SyncOptions configures the synchronization loop.
type SyncOptions struct {
	Facade   *Facade
	Home     *Home
	Interval time.Duration
	Logger   *log.Logger
}

// SyncLoop periodically re-reads playback and device state and publishes
// snapshots to watchers. Refreshes fire on a fixed interval and immediately
// after every command via [SyncLoop.Poke]; a cycle is skipped when the
// previous one is still in flight, so slow remote polls never pile up.
type SyncLoop struct {
	facade   *Facade
	home     *Home
	interval time.Duration
	logger   *log.Logger

	poke     chan struct{}
	inFlight atomic.Bool

	mu       sync.Mutex
	watchers map[*Watcher]struct{}
	last     Snapshot
	closed   bool
}

// NewSyncLoop builds a loop for a facade. A nil Home gets fresh simulated
// devices; the interval defaults to 3 seconds.
func NewSyncLoop(opts SyncOptions) *SyncLoop {
	if opts.Interval <= 0 {
		opts.Interval = defaultSyncInterval
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Home == nil {
		opts.Home = NewHome()
	}

	l := &SyncLoop{
		facade:   opts.Facade,
		home:     opts.Home,
		interval: opts.Interval,
		logger:   opts.Logger,
		poke:     make(chan struct{}, 1),
		watchers: make(map[*Watcher]struct{}),
	}
	l.last = Snapshot{
		NowPlaying: opts.Facade.NowPlaying(),
		Service:    opts.Facade.Selected(),
		Home:       opts.Home.State(),
		At:         time.Now(),
	}
	return l
}

// Run drives the loop until ctx is cancelled. The first cycle fires
// immediately; watchers are closed on exit.
func (l *SyncLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.kick(ctx)
	for {
		select {
		case <-ctx.Done():
			l.closeWatchers()
			return
		case <-ticker.C:
			l.kick(ctx)
		case <-l.poke:
			l.kick(ctx)
		}
	}
}

// Poke requests an immediate refresh, coalescing with any pending request.
func (l *SyncLoop) Poke() {
	select {
	case l.poke <- struct{}{}:
	default:
	}
}

// kick starts one refresh cycle unless a previous one is still running.
func (l *SyncLoop) kick(ctx context.Context) {
	if !l.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer l.inFlight.Store(false)
		l.cycle(ctx)
	}()
}

// cycle re-reads backend and device state and publishes the snapshot.
// Refresh failures still publish; the facade folds them into the view.
func (l *SyncLoop) cycle(ctx context.Context) {
	now, err := l.facade.Refresh(ctx)
	if err != nil {
		l.logger.Debug("state refresh failed", "error", err)
	}

	l.publish(Snapshot{
		NowPlaying: now,
		Service:    l.facade.Selected(),
		NeedsAuth:  l.facade.NeedsAuth(),
		Home:       l.home.State(),
		At:         time.Now(),
	})
}

func (l *SyncLoop) publish(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = snap
	for w := range l.watchers {
		w.send(snap)
	}
}

// Snapshot returns the most recently published snapshot.
func (l *SyncLoop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Subscribe registers a watcher for future snapshots.
func (l *SyncLoop) Subscribe() *Watcher {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := newWatcher()
	if l.closed {
		w.close()
		return w
	}
	l.watchers[w] = struct{}{}
	return w
}

// Unsubscribe removes a watcher and closes its Done channel. Safe to call
// more than once.
func (l *SyncLoop) Unsubscribe(w *Watcher) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.watchers[w]; ok {
		delete(l.watchers, w)
		w.close()
	}
}

func (l *SyncLoop) closeWatchers() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	for w := range l.watchers {
		delete(l.watchers, w)
		w.close()
	}
}
