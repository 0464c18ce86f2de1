package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/vocabdrill/internal/ui/theme"
)

// Mark is the verdict glyph shown after a graded answer.
type Mark int

const (
	MarkNone Mark = iota
	MarkCorrect
	MarkClose
	MarkWrong
)

// TextInput wraps bubbles/textinput with answer styling. A locked input
// shows a graded answer and ignores typing.
type TextInput struct {
	Model    textinput.Model
	MaxWidth int
	locked   bool
	mark     Mark
}

// NewTextInput creates a new styled text input.
func NewTextInput(placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. Locked inputs ignore keys.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.locked {
		if _, ok := msg.(tea.KeyMsg); ok {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	switch t.mark {
	case MarkCorrect:
		view += " " + theme.Correct.Render("✓")
	case MarkClose:
		view += " " + theme.Close.Render("~")
	case MarkWrong:
		view += " " + theme.Incorrect.Render("✗")
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Locked reports whether the input shows a graded answer.
func (t TextInput) Locked() bool {
	return t.locked
}

// Show displays a previously graded answer read-only.
func (t *TextInput) Show(value string, mark Mark) {
	t.Model.SetValue(value)
	t.Model.Blur()
	t.locked = true
	t.mark = mark
}

// Reset clears the input for a new answer.
func (t *TextInput) Reset() tea.Cmd {
	t.Model.Reset()
	t.locked = false
	t.mark = MarkNone
	return t.Model.Focus()
}
