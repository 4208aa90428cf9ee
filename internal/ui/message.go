package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/domo/internal/hub"
	"github.com/desertthunder/domo/internal/music"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSnapshot MsgKind = iota
	MsgWatcherClosed
	MsgCommandDone
	MsgSearchResult
)

// searchResult carries a completed catalog query through [MsgSearchResult].
type searchResult struct {
	query  string
	result music.Result[[]music.Track]
}

// snapshotMsg is the constructor for [MsgSnapshot]
func snapshotMsg(snap hub.Snapshot) Msg {
	return Msg{kind: MsgSnapshot, data: snap}
}

// watcherClosedMsg is the constructor for [MsgWatcherClosed]
func watcherClosedMsg() Msg {
	return Msg{kind: MsgWatcherClosed}
}

// commandDoneMsg is the constructor for [MsgCommandDone]
func commandDoneMsg(err error) Msg {
	return Msg{kind: MsgCommandDone, data: err}
}

// searchResultMsg is the constructor for [MsgSearchResult]
func searchResultMsg(query string, result music.Result[[]music.Track]) Msg {
	return Msg{kind: MsgSearchResult, data: searchResult{query: query, result: result}}
}
