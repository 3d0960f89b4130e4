package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/paging"
	"github.com/mmcdole/citadel/internal/search"
	"github.com/mmcdole/citadel/internal/tui/styles"
)

// ApplicationState represents the current screen
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateDetail
	StateHelp
)

// ChromeHeight is the number of lines used by the header and footer
const ChromeHeight = 2

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState
	Ready bool

	Projector  *catalog.Projector
	ShowStatus bool

	sub *subscription

	// Data
	Items    []domain.Character
	States   paging.LoadStates
	DetailID int

	// Filter
	Filtering bool
	Filter    textinput.Model
	Matches   []search.Result // nil when no filter is applied

	// Dimensions
	Width  int
	Height int

	// UI state
	Cursor      int
	Offset      int
	Spinner     spinner.Model
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model bound to the projector's scope
func NewModel(projector *catalog.Projector, showStatus bool) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter characters"
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	sp := spinner.New(
		spinner.WithSpinner(spinner.Spinner{Frames: styles.SpinnerFrames, FPS: time.Second / 10}),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	return Model{
		State:      StateBrowsing,
		Projector:  projector,
		ShowStatus: showStatus,
		sub:        &subscription{},
		Filter:     ti,
		Spinner:    sp,
	}
}

// Init subscribes to the projector and starts the spinner
func (m Model) Init() tea.Cmd {
	m.sub.attach(m.Projector)
	return tea.Batch(
		m.sub.waitStream(),
		m.Spinner.Tick,
	)
}

// Detach cancels the model's subscriptions without closing the projector
func (m Model) Detach() {
	m.sub.detach()
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Filter.Width = msg.Width - 4
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case StreamUpdatedMsg:
		return m.applyStreamState(msg.State)

	case StreamClosedMsg:
		return m, nil

	case ErrMsg:
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// applyStreamState replaces the visible items and keeps the cursor on the
// same character when pages are prepended
func (m Model) applyStreamState(state paging.StreamState) (tea.Model, tea.Cmd) {
	var selectedID int
	if c, ok := m.Selected(); ok {
		selectedID = c.ID
	}

	var cmd tea.Cmd
	if err := state.States.FirstError(); err != nil && m.States.FirstError() == nil {
		cmd = func() tea.Msg { return ErrMsg{Err: err, Context: "loading characters"} }
	}

	m.Items = state.Items
	m.States = state.States
	if m.Matches != nil {
		m.Matches = search.NewIndex(m.Items).Filter(m.Filter.Value())
	}

	if selectedID != 0 {
		for i := 0; i < m.visibleLen(); i++ {
			if c, _ := m.itemAt(i); c.ID == selectedID {
				m.Cursor = i
				break
			}
		}
	}
	m.clampCursor()
	m.ensureVisible()

	return m, tea.Batch(m.sub.waitStream(), cmd)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Quit) && !(m.Filtering && msg.String() == "q") {
		m.sub.detach()
		return m, tea.Quit
	}

	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil
	case StateDetail:
		if key.Matches(msg, Keys.Back, Keys.Escape) {
			m.State = StateBrowsing
		}
		return m, nil
	}

	if m.Filtering {
		return m.handleFilterKey(msg)
	}

	page := max(m.listHeight(), 1)
	switch {
	case key.Matches(msg, Keys.Up):
		return m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		return m.moveCursor(1)
	case key.Matches(msg, Keys.HalfUp):
		return m.moveCursor(-page / 2)
	case key.Matches(msg, Keys.HalfDown):
		return m.moveCursor(page / 2)
	case key.Matches(msg, Keys.PageUp):
		return m.moveCursor(-page)
	case key.Matches(msg, Keys.PageDown):
		return m.moveCursor(page)
	case key.Matches(msg, Keys.Home):
		return m.moveCursor(-m.Cursor)
	case key.Matches(msg, Keys.End):
		return m.moveCursor(m.visibleLen() - 1 - m.Cursor)
	case key.Matches(msg, Keys.Enter):
		if c, ok := m.Selected(); ok {
			m.DetailID = c.ID
			m.State = StateDetail
		}
		return m, nil
	case key.Matches(msg, Keys.Escape):
		m.clearFilter()
		return m, nil
	case key.Matches(msg, Keys.Filter):
		m.Filtering = true
		cmd := m.Filter.Focus()
		return m, cmd
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil
	case key.Matches(msg, Keys.Retry):
		if n := m.Projector.Stream().Retry(); n > 0 {
			return m, StatusCmd("Retrying...", false)
		}
		return m, StatusCmd("Nothing to retry", false)
	case key.Matches(msg, Keys.Refresh):
		m.Projector.Stream().Refresh()
		m.Projector.Reload()
		return m, StatusCmd("Refreshing...", false)
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		m.clearFilter()
		return m, nil
	case msg.Type == tea.KeyEnter:
		m.Filtering = false
		m.Filter.Blur()
		return m, nil
	case key.Matches(msg, Keys.Up):
		if msg.Type != tea.KeyRunes {
			return m.moveCursor(-1)
		}
	case key.Matches(msg, Keys.Down):
		if msg.Type != tea.KeyRunes {
			return m.moveCursor(1)
		}
	}

	var cmd tea.Cmd
	m.Filter, cmd = m.Filter.Update(msg)
	m.Matches = search.NewIndex(m.Items).Filter(m.Filter.Value())
	m.Cursor = 0
	m.Offset = 0
	return m, cmd
}

func (m *Model) clearFilter() {
	m.Filtering = false
	m.Filter.Blur()
	m.Filter.SetValue("")
	m.Matches = nil
	m.clampCursor()
	m.ensureVisible()
}

// moveCursor moves the selection and reports the new position to the stream
// so it can prefetch near either edge
func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	m.Cursor += delta
	m.clampCursor()
	m.ensureVisible()

	if pos, ok := m.streamPosition(m.Cursor); ok {
		m.Projector.Stream().Access(pos)
	} else if m.Matches == nil {
		m.Projector.Stream().Access(0)
	}
	return m, nil
}

// Selected returns the character under the cursor
func (m Model) Selected() (domain.Character, bool) {
	return m.itemAt(m.Cursor)
}

func (m Model) itemAt(i int) (domain.Character, bool) {
	if m.Matches != nil {
		if i < 0 || i >= len(m.Matches) {
			return domain.Character{}, false
		}
		return m.Matches[i].Character, true
	}
	if i < 0 || i >= len(m.Items) {
		return domain.Character{}, false
	}
	return m.Items[i], true
}

// streamPosition maps a visible row to its position in the stream
func (m Model) streamPosition(i int) (int, bool) {
	if m.Matches != nil {
		if i < 0 || i >= len(m.Matches) {
			return 0, false
		}
		return m.Matches[i].Position, true
	}
	if i < 0 || i >= len(m.Items) {
		return 0, false
	}
	return i, true
}

func (m Model) visibleLen() int {
	if m.Matches != nil {
		return len(m.Matches)
	}
	return len(m.Items)
}

func (m *Model) clampCursor() {
	if m.Cursor >= m.visibleLen() {
		m.Cursor = m.visibleLen() - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m Model) listHeight() int {
	h := m.Height - ChromeHeight
	if m.Filtering || m.Matches != nil {
		h--
	}
	return h
}

func (m *Model) ensureVisible() {
	h := m.listHeight()
	if h <= 0 {
		m.Offset = m.Cursor
		return
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+h {
		m.Offset = m.Cursor - h + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// statusLine describes the stream's load states for the footer
func (m Model) statusLine() (string, bool) {
	st := m.States
	switch {
	case st.Refresh.Status == paging.StatusLoading:
		return "Loading characters...", false
	case st.Refresh.Status == paging.StatusError:
		return fmt.Sprintf("Failed to load: %v (r to retry)", st.Refresh.Err), true
	case st.End.Status == paging.StatusLoading, st.Start.Status == paging.StatusLoading:
		return "Loading more...", false
	case st.End.Status == paging.StatusError:
		return fmt.Sprintf("Failed to load more: %v (r to retry)", st.End.Err), true
	case st.Start.Status == paging.StatusError:
		return fmt.Sprintf("Failed to load earlier: %v (r to retry)", st.Start.Err), true
	case st.End.Exhausted && len(m.Items) > 0:
		return fmt.Sprintf("%d characters · end of catalog", len(m.Items)), false
	default:
		return fmt.Sprintf("%d characters", len(m.Items)), false
	}
}
