package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wrapped/internal/view"
)

// Styles used by the terminal renderer.
type Styles struct {
	Banner  lipgloss.Style
	Title   lipgloss.Style
	Line    lipgloss.Style
	Stale   lipgloss.Style
	Section lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d29b1d")),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bbbbbb")),
		Line:    lipgloss.NewStyle().PaddingLeft(2),
		Stale:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
		Section: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Render lays out m for a terminal. The loading model renders as the
// placeholder alone.
func Render(m view.Model, styles Styles) string {
	if m.Loading {
		return view.LoadingText + "\n"
	}

	blocks := []string{styles.Banner.Render("hey, Wrap")}
	for _, sec := range view.Sections(m) {
		// untitled sections are notices, e.g. the stale-data banner
		if sec.Title == "" {
			blocks = append(blocks, styles.Stale.Render(strings.Join(sec.Lines, "\n")))
			continue
		}

		var b strings.Builder
		b.WriteString(styles.Title.Render(sec.Title))
		for _, line := range sec.Lines {
			b.WriteString("\n")
			b.WriteString(styles.Line.Render(line))
		}
		blocks = append(blocks, styles.Section.Render(b.String()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}
