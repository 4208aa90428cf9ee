package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/domo/internal/music"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps [music.Track] to implement [list.Item].
type trackItem struct {
	track music.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.License != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.License)
	}
	return desc
}

func trackItems(tracks []music.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for idx, track := range tracks {
		items[idx] = trackItem{track: track}
	}
	return items
}

func newTrackList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}
