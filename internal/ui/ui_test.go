package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/domo/internal/catalog"
	"github.com/desertthunder/domo/internal/hub"
	"github.com/desertthunder/domo/internal/media"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/player"
)

// stubRemote is a canned remote backend for exercising service switches.
type stubRemote struct {
	state music.PlaybackState
}

func (s *stubRemote) Play(context.Context) error                { return nil }
func (s *stubRemote) Pause(context.Context) error               { return nil }
func (s *stubRemote) Stop(context.Context) error                { return nil }
func (s *stubRemote) Next(context.Context) error                { return nil }
func (s *stubRemote) Previous(context.Context) error            { return nil }
func (s *stubRemote) Seek(context.Context, time.Duration) error { return nil }
func (s *stubRemote) SetVolume(context.Context, float64) error  { return nil }
func (s *stubRemote) State(context.Context) (music.PlaybackState, error) {
	return s.state, nil
}

type fixture struct {
	model   *Model
	element *media.Mock
	engine  *player.Engine
	facade  *hub.Facade
	home    *hub.Home
	demo    []music.Track
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	element := media.NewMock()
	engine := player.NewEngine(player.Options{Element: element, LoopSingle: true})
	t.Cleanup(func() { engine.Close() })

	provider := catalog.New(catalog.Options{})
	demo := provider.DemoTracks()
	engine.SetPlaylist(demo)

	remote := &stubRemote{state: music.PlaybackState{
		IsPlaying:    true,
		CurrentIndex: 0,
		CurrentTrack: &music.Track{Title: "Glass Houses", Artist: "Night Commute"},
	}}

	facade := hub.NewFacade(hub.FacadeOptions{
		Local:  func() (hub.Backend, error) { return hub.LocalBackend(engine), nil },
		Remote: func() (hub.Backend, error) { return remote, nil },
	})
	home := hub.NewHome()
	loop := hub.NewSyncLoop(hub.SyncOptions{Facade: facade, Home: home, Interval: time.Minute})

	model := NewModel(context.Background(), Options{
		Facade:  facade,
		Engine:  engine,
		Catalog: provider,
		Home:    home,
		Loop:    loop,
	})
	model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	return &fixture{model: model, element: element, engine: engine, facade: facade, home: home, demo: demo}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press feeds a keypress through Update and runs the resulting command
// synchronously, delivering its message back to the model the way the
// bubbletea runtime would.
func press(t *testing.T, m *Model, msg tea.KeyMsg) {
	t.Helper()

	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		m.Update(out)
	}
}

func TestDashboardKeys(t *testing.T) {
	t.Run("space toggles playback", func(t *testing.T) {
		f := newFixture(t)

		press(t, f.model, tea.KeyMsg{Type: tea.KeySpace})
		if !f.element.Playing() {
			t.Fatal("expected playback to start")
		}

		press(t, f.model, tea.KeyMsg{Type: tea.KeySpace})
		if f.element.Playing() {
			t.Fatal("expected playback to pause")
		}
	})

	t.Run("n and p move through the playlist", func(t *testing.T) {
		f := newFixture(t)
		press(t, f.model, tea.KeyMsg{Type: tea.KeySpace})

		press(t, f.model, keyRune('n'))
		if got := f.engine.State().CurrentIndex; got != 1 {
			t.Fatalf("expected index 1 after next, got %d", got)
		}

		press(t, f.model, keyRune('p'))
		if got := f.engine.State().CurrentIndex; got != 0 {
			t.Fatalf("expected index 0 after previous, got %d", got)
		}

		calls := f.element.LoadCalls()
		if len(calls) != 3 || calls[1] != f.demo[1].PlayURL {
			t.Fatalf("unexpected load sequence: %v", calls)
		}
	})

	t.Run("l toggles the lights", func(t *testing.T) {
		f := newFixture(t)

		press(t, f.model, keyRune('l'))
		if !f.home.State().Lighting {
			t.Fatal("expected lighting on")
		}
	})

	t.Run("brackets step the dimmer", func(t *testing.T) {
		f := newFixture(t)

		press(t, f.model, keyRune(']'))
		if got := f.home.State().Dimmer; got != 80 {
			t.Fatalf("expected dimmer 80, got %d", got)
		}

		press(t, f.model, keyRune('['))
		if got := f.home.State().Dimmer; got != 75 {
			t.Fatalf("expected dimmer 75, got %d", got)
		}
	})

	t.Run("plus and minus step the thermostat", func(t *testing.T) {
		f := newFixture(t)

		press(t, f.model, keyRune('+'))
		if got := f.home.State().TempF; got != 71 {
			t.Fatalf("expected 71°F, got %d", got)
		}

		press(t, f.model, keyRune('-'))
		if got := f.home.State().TempF; got != 70 {
			t.Fatalf("expected 70°F, got %d", got)
		}
	})

	t.Run("s cycles the service", func(t *testing.T) {
		f := newFixture(t)

		press(t, f.model, keyRune('s'))
		if got := f.facade.Selected(); got != music.ServiceSpotify {
			t.Fatalf("expected spotify selected, got %s", got)
		}

		// A fresh frame tells the model which service is live now.
		f.model.Update(snapshotMsg(hub.Snapshot{Service: music.ServiceSpotify}))

		press(t, f.model, keyRune('s'))
		if got := f.facade.Selected(); got != music.ServiceLocal {
			t.Fatalf("expected local selected, got %s", got)
		}
	})

	t.Run("q quits and releases the watcher", func(t *testing.T) {
		f := newFixture(t)

		_, cmd := f.model.Update(keyRune('q'))
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatal("expected tea.QuitMsg")
		}

		select {
		case <-f.model.watcher.Done:
		default:
			t.Fatal("expected the watcher to be closed")
		}
	})
}

func TestSearchFlow(t *testing.T) {
	f := newFixture(t)

	press(t, f.model, keyRune('/'))
	if f.model.view != SearchInputView {
		t.Fatalf("expected search input view, got %d", f.model.view)
	}

	t.Run("q types into the query", func(t *testing.T) {
		f.model.Update(keyRune('q'))
		if f.model.view != SearchInputView {
			t.Fatal("expected to stay in the search input view")
		}
		if got := f.model.searchInput.Value(); got != "q" {
			t.Fatalf("expected query %q, got %q", "q", got)
		}
		f.model.searchInput.SetValue("")
	})

	t.Run("enter searches and falls back to the demo set", func(t *testing.T) {
		f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("sunset drive")})
		press(t, f.model, tea.KeyMsg{Type: tea.KeyEnter})

		if f.model.view != SearchResultsView {
			t.Fatalf("expected results view, got %d", f.model.view)
		}
		if len(f.model.results) != len(f.demo) {
			t.Fatalf("expected %d demo results, got %d", len(f.demo), len(f.model.results))
		}
		if f.model.degraded == "" {
			t.Fatal("expected a degraded reason with no origins configured")
		}
		if view := f.model.View(); !strings.Contains(view, "offline results") {
			t.Fatalf("expected the degraded banner, got:\n%s", view)
		}
	})

	t.Run("enter plays the selection locally", func(t *testing.T) {
		press(t, f.model, tea.KeyMsg{Type: tea.KeyEnter})

		if f.model.view != DashboardView {
			t.Fatalf("expected dashboard view, got %d", f.model.view)
		}
		if !f.element.Playing() {
			t.Fatal("expected local playback")
		}
		if got := f.engine.State().CurrentTrack.Title; got != f.demo[0].Title {
			t.Fatalf("expected %q playing, got %q", f.demo[0].Title, got)
		}
	})

	t.Run("esc walks back to the dashboard", func(t *testing.T) {
		press(t, f.model, keyRune('/'))
		f.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
		press(t, f.model, tea.KeyMsg{Type: tea.KeyEnter})
		if f.model.view != SearchResultsView {
			t.Fatal("expected results view")
		}

		f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if f.model.view != SearchInputView {
			t.Fatal("expected search input view after esc")
		}

		f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if f.model.view != DashboardView {
			t.Fatal("expected dashboard view after esc")
		}
	})
}

func TestDashboardRendering(t *testing.T) {
	t.Run("renders the current frame", func(t *testing.T) {
		f := newFixture(t)

		f.model.Update(snapshotMsg(hub.Snapshot{
			NowPlaying: music.NowPlaying{
				DisplayTitle:    "Golden Hour",
				DisplaySubtitle: "Sunset Collective",
				IsPlaying:       true,
				Service:         music.ServiceSpotify,
			},
			Service: music.ServiceSpotify,
			Home:    hub.HomeState{Lighting: true, Dimmer: 40, TempF: 68},
		}))

		view := f.model.View()
		for _, want := range []string{"Golden Hour", "Sunset Collective", "Lights on", "Dimmer 40%", "Thermostat 68°F"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q, got:\n%s", want, view)
			}
		}
	})

	t.Run("prompts for sign-in when the session is gone", func(t *testing.T) {
		f := newFixture(t)

		f.model.Update(snapshotMsg(hub.Snapshot{Service: music.ServiceLocal, NeedsAuth: true}))
		if view := f.model.View(); !strings.Contains(view, "domo auth login") {
			t.Fatalf("expected the sign-in prompt, got:\n%s", view)
		}
	})

	t.Run("shows the empty state before any playback", func(t *testing.T) {
		f := newFixture(t)

		if view := f.model.View(); !strings.Contains(view, "Nothing playing") {
			t.Fatalf("expected the empty state, got:\n%s", view)
		}
	})

	t.Run("surfaces command errors", func(t *testing.T) {
		f := newFixture(t)

		f.model.Update(commandDoneMsg(context.DeadlineExceeded))
		if view := f.model.View(); !strings.Contains(view, "Error:") {
			t.Fatalf("expected an error line, got:\n%s", view)
		}

		f.model.Update(commandDoneMsg(nil))
		if view := f.model.View(); strings.Contains(view, "Error:") {
			t.Fatalf("expected the error line to clear, got:\n%s", view)
		}
	})
}

func TestWatcherShutdownQuits(t *testing.T) {
	f := newFixture(t)

	_, cmd := f.model.Update(watcherClosedMsg())
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
