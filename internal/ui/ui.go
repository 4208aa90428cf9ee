package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/domo/internal/catalog"
	"github.com/desertthunder/domo/internal/hub"
	"github.com/desertthunder/domo/internal/music"
	"github.com/desertthunder/domo/internal/player"
)

// dimStep is the dimmer delta applied per `[` or `]` keypress.
const dimStep = 5

// ViewState represents the current view in the TUI.
type ViewState int

const (
	DashboardView ViewState = iota
	SearchInputView
	SearchResultsView
)

// Options carries the dashboard's collaborators.
type Options struct {
	Facade  *hub.Facade
	Engine  *player.Engine
	Catalog *catalog.Provider
	Home    *hub.Home
	Loop    *hub.SyncLoop
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	facade      *hub.Facade
	engine      *player.Engine
	catalog     *catalog.Provider
	home        *hub.Home
	loop        *hub.SyncLoop
	watcher     *hub.Watcher
	snapshot    hub.Snapshot
	width       int
	height      int
	searchInput textinput.Model
	resultList  list.Model
	results     []music.Track
	degraded    string
	cmdErr      error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new dashboard model with the provided dependencies. The
// model subscribes to the sync loop immediately so the first frame renders
// the latest known snapshot.
func NewModel(ctx context.Context, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "song, artist, or genre"
	input.CharLimit = 64
	input.Width = 40

	return &Model{
		ctx:         ctx,
		view:        DashboardView,
		facade:      opts.Facade,
		engine:      opts.Engine,
		catalog:     opts.Catalog,
		home:        opts.Home,
		loop:        opts.Loop,
		watcher:     opts.Loop.Subscribe(),
		snapshot:    opts.Loop.Snapshot(),
		searchInput: input,
		resultList:  newTrackList("Search Results"),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the snapshot consumer.
func (m *Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchInputView:
			return m.handleSearchInputKeys(msg)
		case SearchResultsView:
			return m.handleSearchResultsKeys(msg)
		default:
			return m.handleDashboardKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.snapshot = msg.data.(hub.Snapshot)
		return m, m.waitForSnapshot()

	case MsgWatcherClosed:
		return m, tea.Quit

	case MsgCommandDone:
		m.cmdErr = nil
		if err, ok := msg.data.(error); ok {
			m.cmdErr = err
		}
		return m, nil

	case MsgSearchResult:
		res := msg.data.(searchResult)
		m.results = res.result.Data
		m.degraded = ""
		if res.result.Degraded {
			m.degraded = res.result.Reason
		}
		m.resultList.Title = fmt.Sprintf("Results for '%s'", res.query)
		cmd := m.resultList.SetItems(trackItems(res.result.Data))
		m.resultList.Select(0)
		m.resultList.SetSize(m.width-4, m.height-10)
		m.view = SearchResultsView
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchInputView:
		return m.renderSearchInput()
	case SearchResultsView:
		return m.renderSearchResults()
	default:
		return m.renderDashboard()
	}
}

func (m *Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.playPause):
		return m, m.transport(m.facade.PlayPause)
	case key.Matches(msg, m.keys.next):
		return m, m.transport(m.facade.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.transport(m.facade.Previous)
	case key.Matches(msg, m.keys.service):
		return m, m.switchService()
	case key.Matches(msg, m.keys.lighting):
		return m, m.device(func() { m.home.ToggleLighting() })
	case key.Matches(msg, m.keys.dimDown):
		return m, m.device(func() { m.home.AdjustDimmer(-dimStep) })
	case key.Matches(msg, m.keys.dimUp):
		return m, m.device(func() { m.home.AdjustDimmer(dimStep) })
	case key.Matches(msg, m.keys.tempUp):
		return m, m.device(func() { m.home.IncreaseTemp() })
	case key.Matches(msg, m.keys.tempDown):
		return m, m.device(func() { m.home.DecreaseTemp() })
	case key.Matches(msg, m.keys.search):
		m.view = SearchInputView
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()
	}
	return m, nil
}

func (m *Model) handleSearchInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = DashboardView
		m.searchInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		m.searchInput.Blur()
		return m, m.runSearch(query)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.back):
		m.view = SearchInputView
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.resultList.SelectedItem().(trackItem); ok {
			m.view = DashboardView
			return m, m.playResult(item.track)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) quit() tea.Cmd {
	m.loop.Unsubscribe(m.watcher)
	return tea.Quit
}

// waitForSnapshot blocks on the sync-loop watcher and re-arms itself after
// every frame via [Model.handleMsg].
func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-m.watcher.Snapshots:
			return snapshotMsg(snap)
		case <-m.watcher.Done:
			return watcherClosedMsg()
		}
	}
}

// transport runs a playback command off the update loop, then pokes the sync
// loop so the next frame reflects the result.
func (m *Model) transport(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(m.ctx)
		m.loop.Poke()
		return commandDoneMsg(err)
	}
}

func (m *Model) device(apply func()) tea.Cmd {
	return func() tea.Msg {
		apply()
		m.loop.Poke()
		return commandDoneMsg(nil)
	}
}

func (m *Model) switchService() tea.Cmd {
	target := music.ServiceSpotify
	if m.snapshot.Service == music.ServiceSpotify {
		target = music.ServiceLocal
	}
	return m.transport(func(ctx context.Context) error {
		return m.facade.SwitchService(ctx, target)
	})
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		return searchResultMsg(query, m.catalog.Search(m.ctx, query))
	}
}

// playResult loads the current result set as the local playlist and starts
// the chosen track, switching the facade back to the local service first so
// the dashboard reflects what is audible.
func (m *Model) playResult(track music.Track) tea.Cmd {
	tracks := make(music.Playlist, len(m.results))
	copy(tracks, m.results)

	return func() tea.Msg {
		var err error
		if m.snapshot.Service != music.ServiceLocal {
			err = m.facade.SwitchService(m.ctx, music.ServiceLocal)
		}
		if err == nil {
			m.engine.SetPlaylist(tracks)
			err = m.engine.Play(m.ctx, &track)
		}
		m.loop.Poke()
		return commandDoneMsg(err)
	}
}

func (m *Model) renderDashboard() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("domo"))
	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n\n")
	b.WriteString(m.renderHome())

	if m.snapshot.NeedsAuth {
		b.WriteString("\n\n")
		b.WriteString(styles.warn.Render("Spotify session expired: run `domo auth login` to reconnect"))
	}
	if m.cmdErr != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.cmdErr)))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderNowPlaying() string {
	np := m.snapshot.NowPlaying

	indicator := styles.muted.Render("⏸")
	if np.IsPlaying {
		indicator = styles.ok.Render("▶")
	}

	title := np.DisplayTitle
	if title == "" {
		title = "Nothing playing"
	}

	lines := []string{fmt.Sprintf("%s %s %s", indicator, title, styles.muted.Render(fmt.Sprintf("[%s]", m.snapshot.Service)))}
	if np.DisplaySubtitle != "" {
		lines = append(lines, "  "+styles.muted.Render(np.DisplaySubtitle))
	}
	if np.ArtworkURL != "" {
		lines = append(lines, "  "+styles.muted.Render(np.ArtworkURL))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHome() string {
	h := m.snapshot.Home

	lights := "off"
	lightStyle := styles.muted
	if h.Lighting {
		lights = "on"
		lightStyle = styles.ok
	}

	return fmt.Sprintf("%s   %s   %s",
		lightStyle.Render(fmt.Sprintf("Lights %s", lights)),
		styles.muted.Render(fmt.Sprintf("Dimmer %d%%", h.Dimmer)),
		styles.muted.Render(fmt.Sprintf("Thermostat %d°F", h.TempF)),
	)
}

func (m *Model) renderSearchInput() string {
	title := styles.title.Render("Search the catalog")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.searchInput.View(), helpView)
}

func (m *Model) renderSearchResults() string {
	var b strings.Builder
	if m.degraded != "" {
		b.WriteString(styles.warn.Render(fmt.Sprintf("offline results: %s", m.degraded)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.resultList.View())
	b.WriteString("\n\n")

	playKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{playKey, m.keys.back, m.keys.quit}))
	return b.String()
}
