package music

import (
	"testing"
	"time"
)

func testPlaylist(n int) Playlist {
	p := make(Playlist, 0, n)
	for i := 0; i < n; i++ {
		p = append(p, Track{
			ID:      string(rune('a' + i)),
			Title:   "Track " + string(rune('A'+i)),
			Artist:  "Artist",
			PlayURL: "https://example.com/" + string(rune('a'+i)) + ".mp3",
			Source:  SourceLocal,
		})
	}
	return p
}

func TestPlaylistWrap(t *testing.T) {
	p := testPlaylist(3)

	tc := []struct {
		name  string
		index int
		step  int
		want  int
	}{
		{"forward", 0, 1, 1},
		{"forward wraps at end", 2, 1, 0},
		{"backward", 2, -1, 1},
		{"backward wraps at start", 0, -1, 2},
		{"no step", 1, 0, 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Wrap(tt.index, tt.step); got != tt.want {
				t.Errorf("Wrap(%d, %d) = %d, want %d", tt.index, tt.step, got, tt.want)
			}
		})
	}

	t.Run("empty playlist", func(t *testing.T) {
		var empty Playlist
		if got := empty.Wrap(0, 1); got != -1 {
			t.Errorf("Wrap on empty playlist = %d, want -1", got)
		}
	})
}

func TestPlaylistIndexOf(t *testing.T) {
	p := testPlaylist(3)

	if got := p.IndexOf("b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}

	if got := p.IndexOf("missing"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestPlaylistClone(t *testing.T) {
	p := testPlaylist(2)
	c := p.Clone()

	c[0].Title = "mutated"
	if p[0].Title == "mutated" {
		t.Error("clone shares backing array with original")
	}

	var nilPlaylist Playlist
	if got := nilPlaylist.Clone(); got != nil {
		t.Errorf("Clone of nil playlist = %v, want nil", got)
	}
}

func TestNowPlayingProjection(t *testing.T) {
	t.Run("with track", func(t *testing.T) {
		track := &Track{
			Title:      "Evening Light",
			Artist:     "The Porch Band",
			ArtworkURL: "https://example.com/art.jpg",
		}
		state := PlaybackState{
			CurrentTrack: track,
			IsPlaying:    true,
			CurrentIndex: 1,
			Position:     4 * time.Second,
		}

		np := state.NowPlaying(ServiceLocal)
		if np.DisplayTitle != "Evening Light" {
			t.Errorf("expected title Evening Light, got %s", np.DisplayTitle)
		}
		if np.DisplaySubtitle != "The Porch Band" {
			t.Errorf("expected subtitle The Porch Band, got %s", np.DisplaySubtitle)
		}
		if !np.IsPlaying {
			t.Error("expected playing")
		}
		if np.Service != ServiceLocal {
			t.Errorf("expected local service, got %s", np.Service)
		}
	})

	t.Run("empty state", func(t *testing.T) {
		np := PlaybackState{}.NowPlaying(ServiceSpotify)
		if np.DisplayTitle != "" || np.DisplaySubtitle != "" {
			t.Errorf("expected empty display fields, got %q / %q", np.DisplayTitle, np.DisplaySubtitle)
		}
		if np.IsPlaying {
			t.Error("expected not playing")
		}
	})
}

func TestResult(t *testing.T) {
	fresh := Fresh([]int{1, 2})
	if fresh.Degraded {
		t.Error("Fresh result should not be degraded")
	}

	fb := Fallback([]int{3}, "catalog unreachable")
	if !fb.Degraded {
		t.Error("Fallback result should be degraded")
	}
	if fb.Reason != "catalog unreachable" {
		t.Errorf("unexpected reason %q", fb.Reason)
	}
}
