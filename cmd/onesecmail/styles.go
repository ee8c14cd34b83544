package main

import (
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// messageStyles renders message lines. Colors are dropped when w is not
// a terminal.
type messageStyles struct {
	id      lipgloss.Style
	subject lipgloss.Style
	from    lipgloss.Style
	date    lipgloss.Style
	err     lipgloss.Style
	header  lipgloss.Style
}

func newMessageStyles(w io.Writer) messageStyles {
	r := lipgloss.NewRenderer(w)
	return messageStyles{
		id:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		subject: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"}),
		from:    r.NewStyle().Foreground(lipgloss.Color("63")),
		date:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"}),
		err:     r.NewStyle().Foreground(lipgloss.Color("196")),
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
	}
}

// line renders one message summary.
func (s messageStyles) line(id int64, from, subject, date string) string {
	return s.id.Render("#"+strconv.FormatInt(id, 10)) + " " +
		s.date.Render(date) + " " +
		s.from.Render(from) + " " +
		s.subject.Render(subject)
}
