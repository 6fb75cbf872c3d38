package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/vibesync/internal/models"
)

var styles = NewPalette("#1DB954", "#18E96A", "#FF5050", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	code  lipgloss.Style
	card  lipgloss.Style
	sets  map[models.Set]lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		code:  NewBold(s).Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)),
		card:  lipgloss.NewStyle().Padding(1, 3).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color(t)),
		sets: map[models.Set]lipgloss.Style{
			models.OnlyA:  NewBold(s),
			models.OnlyB:  NewBold("#5096FF"),
			models.Common: NewBold(t),
		},
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
