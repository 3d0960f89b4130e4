package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/paging"
	"github.com/mmcdole/citadel/internal/tui/styles"
)

// View renders the current screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateDetail:
		return m.renderDetail()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.Filtering || m.Matches != nil {
		b.WriteString(m.Filter.View())
		b.WriteString("\n")
	}
	b.WriteString(m.renderList())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("Citadel")
	sub := styles.SubtitleStyle.Render(" · character catalog")
	if m.Matches != nil {
		sub += styles.DimStyle.Render(fmt.Sprintf(" · %d/%d match", len(m.Matches), len(m.Items)))
	}
	return title + sub
}

// renderList renders exactly listHeight lines, each ending in a newline
func (m Model) renderList() string {
	h := m.listHeight()
	if h <= 0 {
		return ""
	}

	lines := make([]string, 0, h)
	if m.visibleLen() == 0 {
		lines = append(lines, m.renderEmpty())
	}

	for i := m.Offset; i < m.visibleLen() && len(lines) < h; i++ {
		c, _ := m.itemAt(i)
		var matched []int
		if m.Matches != nil {
			matched = m.Matches[i].MatchedIndexes
		}
		lines = append(lines, m.renderRow(c, matched, i == m.Cursor))
	}

	// Trailing placeholder while the next page is on its way
	if len(lines) < h && m.Matches == nil && len(m.Items) > 0 {
		switch m.States.End.Status {
		case paging.StatusLoading:
			lines = append(lines, "  "+m.Spinner.View()+styles.DimStyle.Render(" loading more..."))
		case paging.StatusError:
			lines = append(lines, "  "+styles.ErrorStyle.Render("could not load more · r to retry"))
		}
	}

	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) renderEmpty() string {
	switch {
	case m.States.Refresh.Status == paging.StatusLoading:
		return "  " + m.Spinner.View() + styles.DimStyle.Render(" loading characters...")
	case m.States.Refresh.Status == paging.StatusError:
		return "  " + styles.ErrorStyle.Render(fmt.Sprintf("failed to load: %v · r to retry", m.States.Refresh.Err))
	case m.Matches != nil:
		return styles.DimStyle.Render("  no matches")
	default:
		return styles.DimStyle.Render("  no characters")
	}
}

func (m Model) renderRow(c domain.Character, matched []int, selected bool) string {
	width := max(m.Width, 10)

	prefix := "  "
	if m.ShowStatus {
		prefix = styles.RenderStatus(c.Status) + " "
	}

	nameWidth := min(width/2, 32)
	name := styles.Pad(styles.Truncate(c.Name, nameWidth), nameWidth)
	desc := styles.Truncate(c.GetDescription(), width-nameWidth-4)

	if selected {
		row := styles.Pad(" "+name+" "+desc, width-2)
		return prefix + styles.SelectedItemStyle.Render(row)
	}
	if len(matched) > 0 && lipgloss.Width(c.Name) <= nameWidth {
		name = styles.Pad(styles.Highlight(c.Name, matched), nameWidth)
	}
	return prefix + " " + styles.NormalItemStyle.Render(name) + " " + styles.DimStyle.Render(desc)
}

func (m Model) renderDetail() string {
	c, ok := m.Projector.Character(m.DetailID)
	if !ok {
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render("Character is no longer loaded (esc to go back)"))
	}

	field := func(label, value string) string {
		if value == "" {
			value = "unknown"
		}
		return styles.DetailLabelStyle.Render(label) + value
	}

	rows := []string{
		styles.TitleStyle.Render(c.Name) + "  " + styles.RenderStatus(c.Status),
		"",
		field("Status", string(c.Status)),
		field("Species", c.Species),
		field("Type", c.Type),
		field("Gender", c.Gender),
		field("Origin", c.Origin.Name),
		field("Location", c.Location.Name),
		field("Appears in", c.FormatEpisodes()),
	}
	if !c.Created.IsZero() {
		rows = append(rows, field("Created", c.Created.Format("2006-01-02")))
	}
	rows = append(rows, "", styles.DimStyle.Render("esc/h back · q quit"))

	box := styles.ActiveBorder.Padding(0, 1).Render(strings.Join(rows, "\n"))
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderFooter() string {
	var left string
	status, isErr := m.statusLine()
	switch {
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	case m.States.IsLoading():
		left = m.Spinner.View() + " " + styles.DimStyle.Render(status)
	case isErr:
		left = styles.ErrorStyle.Render(status)
	default:
		left = styles.DimStyle.Render(status)
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      ACTIONS
  j/k        Up/down               Enter  Details
  g/Home     First character       /      Filter loaded
  G/End      Last character        r      Retry failed load
  PgUp/PgDn  Scroll page           R      Refresh
  Ctrl+u/d   Scroll half page      q      Quit
  h/Esc      Back / clear          ?      This help

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
