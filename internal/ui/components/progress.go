package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabdrill/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := max(p.Width-lipgloss.Width(result)-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// VerdictStrip renders one cell per item, colored by its mark, with the
// current position underlined.
type VerdictStrip struct {
	Marks   []Mark
	Current int
}

// View renders the strip.
func (v VerdictStrip) View() string {
	var b strings.Builder
	for i, m := range v.Marks {
		cell := "·"
		style := theme.Pending
		switch m {
		case MarkCorrect:
			cell, style = "●", theme.Correct
		case MarkClose:
			cell, style = "●", theme.Close
		case MarkWrong:
			cell, style = "●", theme.Incorrect
		}
		if i == v.Current {
			style = style.Underline(true)
			if m == MarkNone {
				cell = "○"
			}
		}
		b.WriteString(style.Render(cell))
		if i < len(v.Marks)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}
