package media

import (
	"context"
	"testing"
	"time"
)

func newTestSim() *Sim {
	return NewSim(SimOptions{
		TrackLength: 10 * time.Millisecond,
		Tick:        time.Millisecond,
	})
}

func TestSimLoad(t *testing.T) {
	t.Run("rejects unsupported scheme", func(t *testing.T) {
		s := newTestSim()
		defer s.Close()

		if _, err := s.Load(context.Background(), "ftp://example.com/a.mp3"); err == nil {
			t.Fatal("expected error for ftp locator")
		}
	})

	t.Run("starts playing", func(t *testing.T) {
		s := newTestSim()
		defer s.Close()

		end, err := s.Load(context.Background(), "https://example.com/a.mp3")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if end == nil {
			t.Fatal("expected end channel")
		}
		if s.Duration() != 10*time.Millisecond {
			t.Errorf("expected simulated duration, got %s", s.Duration())
		}
	})

	t.Run("natural end sends then closes", func(t *testing.T) {
		s := newTestSim()
		defer s.Close()

		end, err := s.Load(context.Background(), "https://example.com/a.mp3")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		select {
		case _, ok := <-end:
			if !ok {
				t.Fatal("end channel closed without a natural-end signal")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for natural end")
		}

		if s.Position() != s.Duration() {
			t.Errorf("expected playhead at end, got %s of %s", s.Position(), s.Duration())
		}
	})

	t.Run("replacement load abandons previous channel", func(t *testing.T) {
		s := NewSim(SimOptions{TrackLength: time.Hour, Tick: time.Millisecond})
		defer s.Close()

		first, err := s.Load(context.Background(), "https://example.com/a.mp3")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		if _, err := s.Load(context.Background(), "https://example.com/b.mp3"); err != nil {
			t.Fatalf("second load failed: %v", err)
		}

		select {
		case _, ok := <-first:
			if ok {
				t.Fatal("abandoned load delivered a natural-end signal")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for abandonment")
		}
	})
}

func TestSimPauseHoldsPlayhead(t *testing.T) {
	s := NewSim(SimOptions{TrackLength: time.Hour, Tick: time.Millisecond})
	defer s.Close()

	if _, err := s.Load(context.Background(), "https://example.com/a.mp3"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := s.Pause(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}

	before := s.Position()
	time.Sleep(10 * time.Millisecond)
	if got := s.Position(); got != before {
		t.Errorf("playhead moved while paused: %s -> %s", before, got)
	}
}

func TestSimStopResets(t *testing.T) {
	s := NewSim(SimOptions{TrackLength: time.Hour, Tick: time.Millisecond})
	defer s.Close()

	end, err := s.Load(context.Background(), "https://example.com/a.mp3")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	select {
	case _, ok := <-end:
		if ok {
			t.Fatal("stop delivered a natural-end signal")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for abandonment")
	}

	if s.Position() != 0 || s.Duration() != 0 {
		t.Errorf("expected reset element, got pos=%s dur=%s", s.Position(), s.Duration())
	}
}

func TestSimVolumeClamp(t *testing.T) {
	s := newTestSim()
	defer s.Close()

	if err := s.SetVolume(-0.5); err != nil {
		t.Fatalf("set volume failed: %v", err)
	}
	if got := s.Volume(); got != 0 {
		t.Errorf("expected clamp to 0, got %f", got)
	}

	if err := s.SetVolume(1.5); err != nil {
		t.Fatalf("set volume failed: %v", err)
	}
	if got := s.Volume(); got != 1 {
		t.Errorf("expected clamp to 1, got %f", got)
	}
}

func TestSimSeekClamp(t *testing.T) {
	s := newTestSim()
	defer s.Close()

	if _, err := s.Load(context.Background(), "https://example.com/a.mp3"); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := s.Seek(-time.Second); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got := s.Position(); got != 0 {
		t.Errorf("expected clamp to 0, got %s", got)
	}

	if err := s.Seek(time.Hour); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got := s.Position(); got != s.Duration() {
		t.Errorf("expected clamp to duration, got %s", got)
	}
}
