package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/citadel/internal/domain"
)

// Color palette
var (
	PortalGreen = lipgloss.Color("#97CE4C")
	SlateLight  = lipgloss.Color("#374151")
	DimGray     = lipgloss.Color("#6B7280")
	LightGray   = lipgloss.Color("#9CA3AF")
	White       = lipgloss.Color("#F9FAFB")
	Green       = lipgloss.Color("#10B981")
	Red         = lipgloss.Color("#EF4444")
	Amber       = lipgloss.Color("#F59E0B")
)

// SpinnerFrames drives the loading animation
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ActiveBorder frames the focused panel
var ActiveBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(PortalGreen)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)
)

// List styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DetailLabelStyle = lipgloss.NewStyle().
				Foreground(DimGray).
				Width(16)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(PortalGreen).
				Bold(true)

	FilterStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(PortalGreen).
				Bold(true)
)

// Raw status characters (unstyled)
const (
	AliveChar   = "●"
	DeadChar    = "✗"
	UnknownChar = "?"
)

// Status indicators
var (
	AliveDot    = lipgloss.NewStyle().Foreground(Green).Render(AliveChar)
	DeadMark    = lipgloss.NewStyle().Foreground(Red).Render(DeadChar)
	UnknownMark = lipgloss.NewStyle().Foreground(Amber).Render(UnknownChar)
)

// RenderStatus renders the indicator for a character status
func RenderStatus(status domain.CharacterStatus) string {
	switch status {
	case domain.StatusAlive:
		return AliveDot
	case domain.StatusDead:
		return DeadMark
	default:
		return UnknownMark
	}
}

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:min(width, len(runes))])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// Pad pads a string with spaces to the given display width
func Pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Highlight renders the runes at the matched positions with the match style
func Highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range []rune(s) {
		if set[i] {
			b.WriteString(MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ModalStyle frames full-screen overlays such as help
var ModalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(PortalGreen).
	Padding(1, 2)
