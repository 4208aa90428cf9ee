package hub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/domo/internal/catalog"
	"github.com/desertthunder/domo/internal/media"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/player"
	"github.com/desertthunder/domo/internal/shared"
)

// fakeBackend records commands and returns scripted failures.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
	state music.PlaybackState

	// blockState, when set, holds State calls until released.
	blockState chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{errs: make(map[string]error), state: music.PlaybackState{CurrentIndex: -1}}
}

func (b *fakeBackend) record(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, op)
	return b.errs[op]
}

func (b *fakeBackend) callCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (b *fakeBackend) setState(s music.PlaybackState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
}

func (b *fakeBackend) Play(context.Context) error     { return b.record("play") }
func (b *fakeBackend) Pause(context.Context) error    { return b.record("pause") }
func (b *fakeBackend) Stop(context.Context) error     { return b.record("stop") }
func (b *fakeBackend) Next(context.Context) error     { return b.record("next") }
func (b *fakeBackend) Previous(context.Context) error { return b.record("previous") }

func (b *fakeBackend) Seek(context.Context, time.Duration) error {
	return b.record("seek")
}

func (b *fakeBackend) SetVolume(context.Context, float64) error {
	return b.record("set-volume")
}

func (b *fakeBackend) State(context.Context) (music.PlaybackState, error) {
	err := b.record("state")

	b.mu.Lock()
	block := b.blockState
	b.mu.Unlock()
	if block != nil {
		<-block
	}

	if err != nil {
		return music.PlaybackState{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, nil
}

// countConstructor wraps a backend so tests can observe lazy construction.
func countConstructor(b Backend, n *int) Constructor {
	return func() (Backend, error) {
		*n++
		return b, nil
	}
}

func remoteTrackState(title string) music.PlaybackState {
	return music.PlaybackState{
		CurrentTrack: &music.Track{
			ID:     "spotify:" + strings.ToLower(title),
			Title:  title,
			Artist: "Remote Artist",
			Source: music.SourceSpotify,
		},
		IsPlaying:    true,
		CurrentIndex: -1,
		Duration:     3 * time.Minute,
	}
}

func TestFacadeSelector(t *testing.T) {
	ctx := context.Background()

	t.Run("starts on the local service", func(t *testing.T) {
		var localN, remoteN int
		f := NewFacade(FacadeOptions{
			Local:  countConstructor(newFakeBackend(), &localN),
			Remote: countConstructor(newFakeBackend(), &remoteN),
		})

		if got := f.Selected(); got != music.ServiceLocal {
			t.Fatalf("expected initial service local, got %s", got)
		}
		if localN != 0 || remoteN != 0 {
			t.Errorf("expected no backend constructed before first use, got local=%d remote=%d", localN, remoteN)
		}
		if got := f.NowPlaying().Service; got != music.ServiceLocal {
			t.Errorf("expected now-playing service local, got %s", got)
		}
	})

	t.Run("constructs a backend once on first use", func(t *testing.T) {
		var localN, remoteN int
		local := newFakeBackend()
		f := NewFacade(FacadeOptions{
			Local:  countConstructor(local, &localN),
			Remote: countConstructor(newFakeBackend(), &remoteN),
		})

		if err := f.PlayPause(ctx); err != nil {
			t.Fatalf("play-pause failed: %v", err)
		}
		if err := f.Next(ctx); err != nil {
			t.Fatalf("next failed: %v", err)
		}

		if localN != 1 {
			t.Errorf("expected local backend constructed once, got %d", localN)
		}
		if remoteN != 0 {
			t.Errorf("expected remote backend untouched, got %d constructions", remoteN)
		}
	})

	t.Run("rejects unknown services", func(t *testing.T) {
		f := NewFacade(FacadeOptions{
			Local:  countConstructor(newFakeBackend(), new(int)),
			Remote: countConstructor(newFakeBackend(), new(int)),
		})

		err := f.SwitchService(ctx, music.Service("tidal"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if got := f.Selected(); got != music.ServiceLocal {
			t.Errorf("expected selector unchanged, got %s", got)
		}
	})
}

func TestFacadePlayPause(t *testing.T) {
	ctx := context.Background()
	local := newFakeBackend()
	f := NewFacade(FacadeOptions{
		Local:  countConstructor(local, new(int)),
		Remote: countConstructor(newFakeBackend(), new(int)),
	})

	if err := f.PlayPause(ctx); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if local.callCount("play") != 1 || local.callCount("pause") != 0 {
		t.Fatalf("expected play from a stopped state, got calls %v", local.calls)
	}
	if !f.NowPlaying().IsPlaying {
		t.Error("expected view to show playing after toggle")
	}

	if err := f.PlayPause(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if local.callCount("pause") != 1 {
		t.Fatalf("expected pause from a playing state, got calls %v", local.calls)
	}
	if f.NowPlaying().IsPlaying {
		t.Error("expected view to show paused after second toggle")
	}
}

func TestFacadeRoutesToActiveBackend(t *testing.T) {
	ctx := context.Background()
	local := newFakeBackend()
	remote := newFakeBackend()
	remote.setState(remoteTrackState("Satellite"))
	f := NewFacade(FacadeOptions{
		Local:  countConstructor(local, new(int)),
		Remote: countConstructor(remote, new(int)),
	})

	ops := []struct {
		name string
		call func() error
	}{
		{"next", func() error { return f.Next(ctx) }},
		{"previous", func() error { return f.Previous(ctx) }},
		{"stop", func() error { return f.Stop(ctx) }},
		{"seek", func() error { return f.Seek(ctx, 30*time.Second) }},
		{"set-volume", func() error { return f.SetVolume(ctx, 0.5) }},
	}
	for _, op := range ops {
		if err := op.call(); err != nil {
			t.Fatalf("%s failed: %v", op.name, err)
		}
		if local.callCount(op.name) != 1 {
			t.Errorf("expected local backend to receive %s, got calls %v", op.name, local.calls)
		}
	}
	if len(remote.calls) != 0 {
		t.Fatalf("expected remote backend untouched while local active, got %v", remote.calls)
	}

	if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if err := f.Next(ctx); err != nil {
		t.Fatalf("next after switch failed: %v", err)
	}
	if remote.callCount("next") != 1 {
		t.Errorf("expected remote backend to receive next, got %v", remote.calls)
	}
	if local.callCount("next") != 1 {
		t.Errorf("expected local backend to receive no further commands, got %v", local.calls)
	}
}

func TestFacadeSwitchResynchronizes(t *testing.T) {
	ctx := context.Background()
	remote := newFakeBackend()
	remote.setState(remoteTrackState("Glass Houses"))
	f := NewFacade(FacadeOptions{
		Local:  countConstructor(newFakeBackend(), new(int)),
		Remote: countConstructor(remote, new(int)),
	})

	if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	now := f.NowPlaying()
	if now.DisplayTitle != "Glass Houses" {
		t.Errorf("expected remote track title after switch, got %q", now.DisplayTitle)
	}
	if now.Service != music.ServiceSpotify {
		t.Errorf("expected spotify service in view, got %s", now.Service)
	}
	if !now.IsPlaying {
		t.Error("expected remote playing state after switch")
	}

	// Switching back re-reads the local backend's empty state.
	if err := f.SwitchService(ctx, music.ServiceLocal); err != nil {
		t.Fatalf("switch back failed: %v", err)
	}
	now = f.NowPlaying()
	if now.DisplayTitle != "" || now.Service != music.ServiceLocal {
		t.Errorf("expected empty local view after switch back, got %+v", now)
	}
}

func TestFacadeAuthFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("command auth failure forces local", func(t *testing.T) {
		remote := newFakeBackend()
		remote.setState(remoteTrackState("Satellite"))
		f := NewFacade(FacadeOptions{
			Local:  countConstructor(newFakeBackend(), new(int)),
			Remote: countConstructor(remote, new(int)),
		})

		if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
			t.Fatalf("switch failed: %v", err)
		}
		if f.NeedsAuth() {
			t.Fatal("expected no auth prompt after successful switch")
		}

		remote.mu.Lock()
		remote.errs["next"] = fmt.Errorf("%w: session expired", shared.ErrAuthRequired)
		remote.mu.Unlock()

		err := f.Next(ctx)
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if got := f.Selected(); got != music.ServiceLocal {
			t.Errorf("expected selector forced back to local, got %s", got)
		}
		if !f.NeedsAuth() {
			t.Error("expected auth prompt state")
		}
		if f.LastError() != nil {
			t.Errorf("auth failure is a prompt, not a transient error, got %v", f.LastError())
		}
	})

	t.Run("switch auth failure forces local", func(t *testing.T) {
		remote := newFakeBackend()
		remote.errs["state"] = fmt.Errorf("%w: no stored token", shared.ErrAuthRequired)
		f := NewFacade(FacadeOptions{
			Local:  countConstructor(newFakeBackend(), new(int)),
			Remote: countConstructor(remote, new(int)),
		})

		err := f.SwitchService(ctx, music.ServiceSpotify)
		if !errors.Is(err, shared.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
		if got := f.Selected(); got != music.ServiceLocal {
			t.Errorf("expected selector forced back to local, got %s", got)
		}
		if !f.NeedsAuth() {
			t.Error("expected auth prompt state")
		}
	})

	t.Run("successful switch clears the prompt", func(t *testing.T) {
		remote := newFakeBackend()
		remote.errs["state"] = fmt.Errorf("%w: no stored token", shared.ErrAuthRequired)
		f := NewFacade(FacadeOptions{
			Local:  countConstructor(newFakeBackend(), new(int)),
			Remote: countConstructor(remote, new(int)),
		})

		if err := f.SwitchService(ctx, music.ServiceSpotify); err == nil {
			t.Fatal("expected first switch to fail")
		}

		remote.mu.Lock()
		delete(remote.errs, "state")
		remote.mu.Unlock()
		remote.setState(remoteTrackState("Satellite"))

		if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
			t.Fatalf("second switch failed: %v", err)
		}
		if f.NeedsAuth() {
			t.Error("expected auth prompt cleared after successful switch")
		}
		if got := f.Selected(); got != music.ServiceSpotify {
			t.Errorf("expected spotify selected, got %s", got)
		}
	})
}

func TestFacadeTransientError(t *testing.T) {
	ctx := context.Background()
	remote := newFakeBackend()
	remote.setState(remoteTrackState("Satellite"))
	f := NewFacade(FacadeOptions{
		Local:  countConstructor(newFakeBackend(), new(int)),
		Remote: countConstructor(remote, new(int)),
	})

	if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	remote.mu.Lock()
	remote.errs["next"] = fmt.Errorf("%w: remote player returned status 502", shared.ErrRemoteService)
	remote.mu.Unlock()

	if err := f.Next(ctx); err == nil {
		t.Fatal("expected next to fail")
	}

	now := f.NowPlaying()
	if now.DisplayTitle != "Playback error" {
		t.Fatalf("expected error overlay, got %q", now.DisplayTitle)
	}
	if !strings.Contains(now.DisplaySubtitle, "502") {
		t.Errorf("expected error detail in subtitle, got %q", now.DisplaySubtitle)
	}
	if got := f.Selected(); got != music.ServiceSpotify {
		t.Errorf("expected selector unchanged on remote error, got %s", got)
	}

	// The next successful refresh clears the overlay.
	if _, err := f.Refresh(ctx); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	now = f.NowPlaying()
	if now.DisplayTitle != "Satellite" {
		t.Errorf("expected track view restored, got %q", now.DisplayTitle)
	}
}

func TestFacadeRefreshFailureKeepsLastState(t *testing.T) {
	ctx := context.Background()
	remote := newFakeBackend()
	remote.setState(remoteTrackState("Satellite"))
	f := NewFacade(FacadeOptions{
		Local:  countConstructor(newFakeBackend(), new(int)),
		Remote: countConstructor(remote, new(int)),
	})

	if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	remote.mu.Lock()
	remote.errs["state"] = fmt.Errorf("%w: remote player returned status 503", shared.ErrRemoteService)
	remote.mu.Unlock()

	now, err := f.Refresh(ctx)
	if err == nil {
		t.Fatal("expected refresh to fail")
	}
	if now.DisplayTitle != "Playback error" {
		t.Errorf("expected error overlay from failed refresh, got %q", now.DisplayTitle)
	}
	if got := f.State(); got.CurrentTrack == nil || got.CurrentTrack.Title != "Satellite" {
		t.Errorf("expected stored snapshot unchanged, got %+v", got)
	}
}

// Switching services must not stop the deactivated backend; both keep their
// independent state.
func TestFacadeSwitchKeepsLocalPlaying(t *testing.T) {
	ctx := context.Background()

	element := media.NewMock()
	engine := player.NewEngine(player.Options{Element: element, LoopSingle: true})
	defer engine.Close()
	engine.SetPlaylist(catalog.New(catalog.Options{}).DemoTracks())

	remote := newFakeBackend()
	remote.setState(remoteTrackState("Glass Houses"))

	f := NewFacade(FacadeOptions{
		Local:  func() (Backend, error) { return LocalBackend(engine), nil },
		Remote: countConstructor(remote, new(int)),
	})

	if err := f.PlayPause(ctx); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if !element.Playing() {
		t.Fatal("expected local element playing")
	}

	if err := f.SwitchService(ctx, music.ServiceSpotify); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	if !element.Playing() {
		t.Error("expected local element still playing after switch")
	}
	if got := f.NowPlaying().DisplayTitle; got != "Glass Houses" {
		t.Errorf("expected remote track in view, got %q", got)
	}
	if got := engine.Status(); got != player.StatusPlaying {
		t.Errorf("expected engine still playing, got %s", got)
	}
}

// End to end on the local path: demo tracks load into the engine and a
// single toggle starts the first one.
func TestFacadeLocalDemoPlayback(t *testing.T) {
	ctx := context.Background()

	element := media.NewMock()
	engine := player.NewEngine(player.Options{Element: element, LoopSingle: true})
	defer engine.Close()

	demo := catalog.New(catalog.Options{}).DemoTracks()
	engine.SetPlaylist(demo)

	f := NewFacade(FacadeOptions{
		Local:  func() (Backend, error) { return LocalBackend(engine), nil },
		Remote: countConstructor(newFakeBackend(), new(int)),
	})

	if err := f.PlayPause(ctx); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	now, err := f.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if now.DisplayTitle != demo[0].Title {
		t.Errorf("expected first demo track %q, got %q", demo[0].Title, now.DisplayTitle)
	}
	if !now.IsPlaying {
		t.Error("expected playing view")
	}
	if got := engine.State().CurrentIndex; got != 0 {
		t.Errorf("expected playlist index 0, got %d", got)
	}
	if got := element.LoadCalls(); len(got) != 1 || got[0] != demo[0].PlayURL {
		t.Errorf("expected element loaded with %q, got %v", demo[0].PlayURL, got)
	}
}
