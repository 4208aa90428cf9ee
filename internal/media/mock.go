package media

import (
	"context"
	"sync"
	"time"
)

// Mock is a recording test double for Element.
type Mock struct {
	mu        sync.Mutex
	loadErr   error
	loadCalls []string
	seekCalls []time.Duration
	loaded    bool
	playing   bool
	pos       time.Duration
	dur       time.Duration
	vol       float64
	endCh     chan struct{}
}

// NewMock creates a mock element for testing.
func NewMock() *Mock {
	return &Mock{vol: 1}
}

func (m *Mock) Load(_ context.Context, url string) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadCalls = append(m.loadCalls, url)
	if m.loadErr != nil {
		return nil, m.loadErr
	}

	if m.endCh != nil {
		close(m.endCh)
	}
	m.endCh = make(chan struct{}, 1)
	m.loaded = true
	m.playing = true
	m.pos = 0
	return m.endCh, nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		m.playing = true
	}
	return nil
}

func (m *Mock) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	return nil
}

func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.endCh != nil {
		close(m.endCh)
		m.endCh = nil
	}
	m.loaded = false
	m.playing = false
	m.pos = 0
	return nil
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	m.pos = pos
	return nil
}

func (m *Mock) SetVolume(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vol = v
	return nil
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dur
}

func (m *Mock) Close() error {
	return m.Stop()
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vol
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dur = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = d
}

// SimulateEnded delivers a natural end-of-media signal for the current load.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	ch := m.endCh
	m.endCh = nil
	m.playing = false
	if m.dur > 0 {
		m.pos = m.dur
	}
	m.mu.Unlock()

	if ch != nil {
		ch <- struct{}{}
		close(ch)
	}
}

// Verify Mock implements Element at compile time.
var _ Element = (*Mock)(nil)
