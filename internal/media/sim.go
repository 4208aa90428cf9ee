package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultTrackLength = 30 * time.Second
	defaultTick        = 250 * time.Millisecond
)

// SimOptions configures a simulated element.
type SimOptions struct {
	// TrackLength is the simulated duration assigned to every load.
	TrackLength time.Duration
	// Tick is the wall-clock resolution the playhead advances at.
	Tick   time.Duration
	Logger *log.Logger
}

// Sim is a timer-driven media element. Nothing audible plays; the playhead
// advances in wall-clock time and the load ends after TrackLength.
type Sim struct {
	mu      sync.Mutex
	logger  *log.Logger
	length  time.Duration
	tick    time.Duration
	url     string
	playing bool
	pos     time.Duration
	dur     time.Duration
	vol     float64
	endCh   chan struct{}
	stop    chan struct{}
	closed  bool
}

// NewSim creates a simulated element.
func NewSim(opts SimOptions) *Sim {
	if opts.TrackLength <= 0 {
		opts.TrackLength = defaultTrackLength
	}
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Sim{
		logger: opts.Logger,
		length: opts.TrackLength,
		tick:   opts.Tick,
		vol:    1,
	}
}

// Load begins a simulated playback of the locator. Only http, https, and
// file locators are accepted.
func (s *Sim) Load(ctx context.Context, rawURL string) (<-chan struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("bad media locator %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return nil, fmt.Errorf("unsupported media scheme %q", u.Scheme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("element closed")
	}

	s.abandonLocked()

	s.url = rawURL
	s.pos = 0
	s.dur = s.length
	s.playing = true
	s.endCh = make(chan struct{}, 1)
	s.stop = make(chan struct{})

	go s.clock(s.endCh, s.stop)

	s.logger.Debug("media load", "url", rawURL, "length", s.dur)
	return s.endCh, nil
}

// abandonLocked tells the current load's clock to close its end channel
// without a send. The clock goroutine is the only closer of an end channel.
func (s *Sim) abandonLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.endCh = nil
}

// clock advances the playhead until the load ends naturally or is abandoned.
func (s *Sim) clock(endCh chan struct{}, stop chan struct{}) {
	t := time.NewTicker(s.tick)
	defer t.Stop()

	for {
		select {
		case <-stop:
			close(endCh)
			return
		case <-t.C:
			if s.advance() {
				endCh <- struct{}{}
				close(endCh)
				return
			}
		}
	}
}

// advance moves the playhead one tick and reports whether the load just
// reached its end.
func (s *Sim) advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return false
	}

	s.pos += s.tick
	if s.pos >= s.dur {
		s.pos = s.dur
		s.playing = false
		return true
	}
	return false
}

func (s *Sim) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.url != "" && s.pos < s.dur {
		s.playing = true
	}
	return nil
}

func (s *Sim) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playing = false
	return nil
}

func (s *Sim) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abandonLocked()
	s.url = ""
	s.playing = false
	s.pos = 0
	s.dur = 0
	return nil
}

func (s *Sim) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if s.dur > 0 && pos > s.dur {
		pos = s.dur
	}
	s.pos = pos
	return nil
}

func (s *Sim) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.vol = v
	return nil
}

// Volume reports the last set unit volume.
func (s *Sim) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol
}

func (s *Sim) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *Sim) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dur
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abandonLocked()
	s.closed = true
	return nil
}

// Verify Sim implements Element at compile time.
var _ Element = (*Sim)(nil)
