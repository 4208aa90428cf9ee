package media

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fhs/gompd/v2/mpd"
)

const mpdPollInterval = 500 * time.Millisecond

// MPD drives a Music Player Daemon as the engine's media element. The daemon
// connection is dialed lazily and re-established after network drops.
type MPD struct {
	mu     sync.Mutex
	addr   string
	logger *log.Logger
	client *mpd.Client
	endCh  chan struct{}
	stop   chan struct{}
	closed bool
}

// NewMPD creates an element for the daemon at addr (host:port).
func NewMPD(addr string, logger *log.Logger) *MPD {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &MPD{addr: addr, logger: logger}
}

// connectLocked dials the daemon (must hold lock).
func (m *MPD) connectLocked() error {
	client, err := mpd.Dial("tcp", m.addr)
	if err != nil {
		return fmt.Errorf("failed to connect to mpd at %s: %w", m.addr, err)
	}
	m.client = client
	m.logger.Info("connected to mpd", "addr", m.addr)
	return nil
}

// ensureConnectedLocked pings and reconnects when the connection is gone.
func (m *MPD) ensureConnectedLocked() error {
	if m.closed {
		return fmt.Errorf("element closed")
	}
	if m.client == nil {
		return m.connectLocked()
	}
	if err := m.client.Ping(); err != nil {
		m.logger.Warn("mpd connection lost, reconnecting", "err", err)
		m.client.Close()
		m.client = nil
		return m.connectLocked()
	}
	return nil
}

// Load replaces the daemon queue with the locator and starts playback.
func (m *MPD) Load(ctx context.Context, url string) (<-chan struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return nil, err
	}

	m.abandonLocked()

	if err := m.client.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear mpd queue: %w", err)
	}
	if err := m.client.Add(url); err != nil {
		return nil, fmt.Errorf("failed to queue %q: %w", url, err)
	}
	if err := m.client.Play(-1); err != nil {
		return nil, fmt.Errorf("failed to start playback: %w", err)
	}

	m.endCh = make(chan struct{}, 1)
	m.stop = make(chan struct{})
	go m.watch(m.endCh, m.stop)

	m.logger.Debug("media load", "url", url)
	return m.endCh, nil
}

// abandonLocked tells the current load's watcher to close its end channel
// without a send. The watcher goroutine is the only closer of an end channel.
func (m *MPD) abandonLocked() {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.endCh = nil
}

// watch polls daemon status until the load ends naturally or is abandoned.
// A single-entry queue means a natural end leaves the daemon stopped.
func (m *MPD) watch(endCh chan struct{}, stop chan struct{}) {
	t := time.NewTicker(mpdPollInterval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			close(endCh)
			return
		case <-t.C:
			attrs, err := m.status()
			if err != nil {
				continue
			}
			if attrs["state"] == "stop" {
				endCh <- struct{}{}
				close(endCh)
				return
			}
		}
	}
}

// status fetches the daemon status map.
func (m *MPD) status() (mpd.Attrs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return nil, err
	}
	return m.client.Status()
}

func (m *MPD) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return err
	}
	return m.client.Pause(false)
}

func (m *MPD) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return err
	}
	return m.client.Pause(true)
}

func (m *MPD) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return err
	}

	// Abandon first so the watcher never reports the stop as a natural end.
	m.abandonLocked()

	if err := m.client.Stop(); err != nil {
		return err
	}
	return m.client.Clear()
}

func (m *MPD) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return err
	}

	status, err := m.client.Status()
	if err != nil {
		return err
	}

	songPos, err := strconv.Atoi(status["song"])
	if err != nil {
		return fmt.Errorf("no song playing")
	}

	if pos < 0 {
		pos = 0
	}
	return m.client.Seek(songPos, int(pos.Seconds()))
}

func (m *MPD) SetVolume(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureConnectedLocked(); err != nil {
		return err
	}

	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return m.client.SetVolume(int(v*100 + 0.5))
}

func (m *MPD) Position() time.Duration {
	attrs, err := m.status()
	if err != nil {
		return 0
	}
	return secondsAttr(attrs, "elapsed")
}

func (m *MPD) Duration() time.Duration {
	attrs, err := m.status()
	if err != nil {
		return 0
	}
	return secondsAttr(attrs, "duration")
}

func (m *MPD) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.abandonLocked()
	m.closed = true

	if m.client != nil {
		err := m.client.Close()
		m.client = nil
		return err
	}
	return nil
}

// secondsAttr parses a fractional-seconds status attribute.
func secondsAttr(attrs mpd.Attrs, key string) time.Duration {
	v, err := strconv.ParseFloat(attrs[key], 64)
	if err != nil {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}

// Verify MPD implements Element at compile time.
var _ Element = (*MPD)(nil)
