package drill

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabdrill/internal/quiz"
	"github.com/abhisek/vocabdrill/internal/ui/components"
	"github.com/abhisek/vocabdrill/internal/ui/theme"
)

func (d *DrillScreen) View(width, height int) string {
	if d.quitConfirm {
		return renderQuitConfirm(width)
	}

	item, ok := d.session.Current()
	if !ok {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Wrapping up...")
	}

	var b strings.Builder
	b.WriteString(d.renderInfoLine(item, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(theme.Prompt.Width(width).Render(item.Prompt))
	b.WriteString("\n")
	if d.showHint && item.Hint != "" {
		b.WriteString(theme.Subtitle.Width(width).Render("Hint: " + item.Hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Answer: " + d.input.View()))
	b.WriteString("\n\n")

	if fb := d.renderFeedback(width); fb != "" {
		b.WriteString(fb)
		b.WriteString("\n")
	}

	if d.session.Phase() == quiz.PhaseAwaitingConfirmation {
		b.WriteString(d.renderCandidates(width))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Width(width).Render("[Y] Accept   [N] Reject"))
		b.WriteString("\n")
	} else if d.input.Locked() {
		v := d.session.Verdict(d.session.Index())
		b.WriteString(theme.Subtitle.Width(width).Render(
			fmt.Sprintf("Already graded: %s. Press Enter for the next item.", v)))
		b.WriteString("\n")
	}

	if d.warn != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Warning).
			Render(d.warn))
	}

	return b.String()
}

func (d *DrillScreen) renderInfoLine(item *quiz.Item, width int) string {
	items := d.session.Items()
	verdicts := d.session.Verdicts()
	marks := make([]components.Mark, len(verdicts))
	for i, v := range verdicts {
		marks[i] = markFor(v)
	}
	idx := d.session.Index()

	label := fmt.Sprintf("  Item %d/%d", idx+1, len(items))
	if item.Level > 0 || item.Lesson > 0 {
		label += fmt.Sprintf("  ·  Level %d Lesson %d", item.Level, item.Lesson)
	}
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(label)

	strip := components.VerdictStrip{Marks: marks, Current: idx}.View()
	if lipgloss.Width(left)+lipgloss.Width(strip)+4 > width {
		// Long drills: position only.
		return left
	}
	pad := width - lipgloss.Width(left) - lipgloss.Width(strip) - 4
	return left + strings.Repeat(" ", max(pad, 1)) + strip
}

func (d *DrillScreen) renderFeedback(width int) string {
	if d.feedback == "" {
		return ""
	}
	style := theme.Body
	switch d.feedbackKnd {
	case feedbackCorrect:
		style = theme.Correct
	case feedbackClose:
		style = theme.Close
	case feedbackWrong:
		style = theme.Incorrect
	}
	return style.Width(width).Align(lipgloss.Center).Render(d.feedback)
}

// renderCandidates lists the closest canonical answers for a pending item.
func (d *DrillScreen) renderCandidates(width int) string {
	ev, ok := d.session.Pending()
	if !ok || len(ev.Ranked) < 2 {
		return ""
	}

	var b strings.Builder
	for i, c := range ev.Ranked {
		if i == 3 {
			break
		}
		b.WriteString(fmt.Sprintf("%5.1f%%  %s\n", c.Probability, c.Text))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render(strings.TrimRight(b.String(), "\n")))
}

// renderQuitConfirm renders the end-drill confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("End drill early?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Graded items are already saved."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, end drill"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

