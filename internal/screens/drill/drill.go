// Package drill is the interactive practice screen.
package drill

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vocabdrill/internal/grading"
	"github.com/abhisek/vocabdrill/internal/quiz"
	"github.com/abhisek/vocabdrill/internal/router"
	"github.com/abhisek/vocabdrill/internal/screen"
	"github.com/abhisek/vocabdrill/internal/screens/summary"
	"github.com/abhisek/vocabdrill/internal/ui/components"
	"github.com/abhisek/vocabdrill/internal/ui/layout"
)

const maxAnswerLen = 200

// feedbackKind selects the feedback line style.
type feedbackKind int

const (
	feedbackNone feedbackKind = iota
	feedbackCorrect
	feedbackClose
	feedbackWrong
)

// DrillScreen implements screen.Screen over a quiz.Session.
type DrillScreen struct {
	session     *quiz.Session
	input       components.TextInput
	feedback    string
	feedbackKnd feedbackKind
	showHint    bool
	quitConfirm bool
	warn        string
}

var _ screen.Screen = (*DrillScreen)(nil)
var _ screen.KeyHintProvider = (*DrillScreen)(nil)
var _ screen.StatusProvider = (*DrillScreen)(nil)

// New builds and starts a session over items. The screen registers itself
// as the session observer; callers pass emitter, evaluator and resume
// options.
func New(items []quiz.Item, opts ...quiz.Option) (*DrillScreen, error) {
	d := &DrillScreen{
		input: components.NewTextInput("Type your answer...", maxAnswerLen),
	}

	opts = append(opts, quiz.WithObserver(d.onTransition))
	sess, err := quiz.NewSession(items, opts...)
	if err != nil {
		return nil, err
	}
	if err := sess.Start(); err != nil {
		return nil, err
	}
	d.session = sess
	d.syncInput(sess.Index())
	return d, nil
}

// Session returns the underlying session.
func (d *DrillScreen) Session() *quiz.Session {
	return d.session
}

func (d *DrillScreen) Init() tea.Cmd {
	if d.session.Phase() == quiz.PhaseCompleted {
		return finish
	}
	return d.input.Init()
}

func (d *DrillScreen) Title() string {
	return "Drill"
}

// Status shows the running verdict tally.
func (d *DrillScreen) Status() string {
	sum := d.session.Summary()
	return fmt.Sprintf("✓ %d  ~ %d  ✗ %d", sum.Perfect, sum.Partial, sum.Wrong)
}

func (d *DrillScreen) KeyHints() []layout.KeyHint {
	if d.quitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "End drill"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if d.session.Phase() == quiz.PhaseAwaitingConfirmation {
		return []layout.KeyHint{
			{Key: "Y", Description: "Accept"},
			{Key: "N", Description: "Reject"},
		}
	}
	submit := layout.KeyHint{Key: "Enter", Description: "Submit"}
	if d.input.Locked() {
		submit.Description = "Next"
	}
	return []layout.KeyHint{
		submit,
		{Key: "Tab/Shift+Tab", Description: "Next/Prev"},
		{Key: "F1", Description: "Hint"},
		{Key: "Esc", Description: "End"},
	}
}

func (d *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case PersistFailedMsg:
		if msg.Err != nil {
			d.warn = fmt.Sprintf("Progress for item %s was not saved: %v", msg.Err.Event.ItemID, msg.Err.Err)
		}
		return d, nil

	case finishMsg:
		return d, d.showSummary()

	case tea.KeyMsg:
		return d.handleKey(msg)
	}

	if d.session.Phase() == quiz.PhaseInProgress && !d.quitConfirm {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d *DrillScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if d.quitConfirm {
		switch key {
		case "y", "Y":
			d.quitConfirm = false
			return d, finish
		case "n", "N", "esc":
			d.quitConfirm = false
		}
		return d, nil
	}

	switch d.session.Phase() {
	case quiz.PhaseAwaitingConfirmation:
		switch key {
		case "y", "Y":
			return d.confirm(quiz.Accept)
		case "n", "N":
			return d.confirm(quiz.Reject)
		case "esc":
			d.quitConfirm = true
		}
		return d, nil

	case quiz.PhaseInProgress:
		switch key {
		case "esc":
			d.quitConfirm = true
			return d, nil
		case "enter":
			if d.input.Locked() {
				return d.navigate(d.session.Next)
			}
			return d.submit()
		case "tab", "ctrl+n", "pgdown":
			return d.navigate(d.session.Next)
		case "shift+tab", "ctrl+p", "pgup":
			return d.navigate(d.session.Previous)
		case "f1":
			d.showHint = !d.showHint
			return d, nil
		}

		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}

	return d, nil
}

func (d *DrillScreen) submit() (screen.Screen, tea.Cmd) {
	raw := d.input.Value()
	if strings.TrimSpace(raw) == "" {
		return d, nil
	}

	out, err := d.session.Submit(raw)
	if err != nil {
		d.warn = err.Error()
		return d, nil
	}

	ev := out.Evaluation
	switch {
	case out.Advanced:
		d.setFeedback(feedbackCorrect, fmt.Sprintf("Perfect! %s", ev.BestMatch))
	case ev.Verdict == grading.Partial:
		d.input.Show(raw, components.MarkClose)
		d.setFeedback(feedbackClose, fmt.Sprintf("Close: %s (%.0f%%). Count it as correct?", ev.BestMatch, ev.Probability))
	default:
		d.input.Show(raw, components.MarkWrong)
		d.setFeedback(feedbackWrong, fmt.Sprintf("Not quite. Expected %s (%.0f%%). Count it anyway?", ev.BestMatch, ev.Probability))
	}
	return d, d.afterStep()
}

func (d *DrillScreen) confirm(o quiz.Override) (screen.Screen, tea.Cmd) {
	out, err := d.session.Confirm(o)
	if err != nil {
		d.warn = err.Error()
		return d, nil
	}

	switch out.Verdict {
	case grading.Perfect:
		d.setFeedback(feedbackCorrect, "Accepted.")
	case grading.Partial:
		d.setFeedback(feedbackClose, "Accepted as partial.")
	default:
		d.setFeedback(feedbackWrong, fmt.Sprintf("Marked wrong. Answer: %s", out.Evaluation.BestMatch))
	}
	return d, d.afterStep()
}

func (d *DrillScreen) navigate(move func() error) (screen.Screen, tea.Cmd) {
	if err := move(); err != nil {
		if !errors.Is(err, quiz.ErrNavigationInFlight) {
			d.warn = err.Error()
		}
		return d, nil
	}
	d.setFeedback(feedbackNone, "")
	return d, d.afterStep()
}

// afterStep ends the drill once the session completes.
func (d *DrillScreen) afterStep() tea.Cmd {
	if d.session.Phase() == quiz.PhaseCompleted {
		return finish
	}
	return nil
}

// onTransition is the session observer. It runs synchronously inside the
// Submit/Confirm/Next/Previous call made from Update.
func (d *DrillScreen) onTransition(t quiz.Transition) {
	d.showHint = false
	d.syncInput(t.To)
}

// syncInput shows the saved answer for a graded item, or an empty input.
func (d *DrillScreen) syncInput(index int) {
	if index >= len(d.session.Items()) {
		return
	}
	if v := d.session.Verdict(index); v != grading.Unanswered {
		in, _ := d.session.InputAt(index)
		d.input.Show(in, markFor(v))
		return
	}
	d.input.Reset()
}

func (d *DrillScreen) setFeedback(k feedbackKind, text string) {
	d.feedbackKnd = k
	d.feedback = text
}

func (d *DrillScreen) showSummary() tea.Cmd {
	res := summary.FromSession(d.session)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(res)}
	}
}

func finish() tea.Msg {
	return finishMsg{}
}

func markFor(v grading.Verdict) components.Mark {
	switch v {
	case grading.Perfect:
		return components.MarkCorrect
	case grading.Partial:
		return components.MarkClose
	case grading.Wrong:
		return components.MarkWrong
	}
	return components.MarkNone
}
