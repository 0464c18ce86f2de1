package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/quiz"
	"github.com/abhisek/vocabdrill/internal/screen"
	"github.com/abhisek/vocabdrill/internal/ui/components"
	"github.com/abhisek/vocabdrill/internal/ui/layout"
	"github.com/abhisek/vocabdrill/internal/ui/theme"
)

// Row is one item's result.
type Row struct {
	Prompt      string
	Input       string
	Expected    string
	Verdict     grading.Verdict
	Probability float64
}

// Result is what the summary screen shows.
type Result struct {
	SessionID string
	Summary   quiz.Summary
	Rows      []Row
}

// FromSession collects the final state of s.
func FromSession(s *quiz.Session) *Result {
	items := s.Items()
	verdicts := s.Verdicts()

	r := &Result{
		SessionID: s.ID(),
		Summary:   s.Summary(),
		Rows:      make([]Row, len(items)),
	}
	for i, it := range items {
		in, _ := s.InputAt(i)
		r.Rows[i] = Row{
			Prompt:      it.Prompt,
			Input:       in,
			Expected:    it.Answers[0],
			Verdict:     verdicts[i],
			Probability: s.Probability(i),
		}
	}
	return r
}

// SummaryScreen displays the drill summary.
type SummaryScreen struct {
	result *Result
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(result *Result) *SummaryScreen {
	return &SummaryScreen{result: result}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
	}
}

// Result returns the summarized drill.
func (s *SummaryScreen) Result() *Result {
	return s.result
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	if res == nil {
		return ""
	}
	sum := res.Summary

	var b strings.Builder

	heading := "Drill complete!"
	if sum.Unanswered > 0 {
		heading = "Drill ended early"
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(heading))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Items: %d    Perfect: %d    Partial: %d    Wrong: %d    Skipped: %d",
		sum.Total, sum.Perfect, sum.Partial, sum.Wrong, sum.Unanswered)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Accepted", sum.AcceptedRate(), true, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n")

	// Leave room for the header block above.
	room := max(height-8, 0)
	for i, row := range res.Rows {
		if i >= room {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				theme.Hint.Render(fmt.Sprintf("… %d more", len(res.Rows)-i))))
			break
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderRow(row)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderRow(r Row) string {
	var glyph string
	style := theme.Pending
	switch r.Verdict {
	case grading.Perfect:
		glyph, style = "✓", theme.Correct
	case grading.Partial:
		glyph, style = "~", theme.Close
	case grading.Wrong:
		glyph, style = "✗", theme.Incorrect
	default:
		glyph = "·"
	}

	line := fmt.Sprintf("%s  %s", style.Render(glyph), r.Prompt)
	switch r.Verdict {
	case grading.Unanswered:
		line += theme.Hint.Render("  (skipped)")
	case grading.Perfect:
		line += "  " + theme.Body.Render(r.Input)
	default:
		line += "  " + theme.Body.Render(r.Input) +
			theme.Hint.Render(fmt.Sprintf("  → %s (%.0f%%)", r.Expected, r.Probability))
	}
	return line
}
