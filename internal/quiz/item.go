package quiz

// Kind describes how an item is presented to the learner.
type Kind string

const (
	KindSentence    Kind = "sentence"      // compose a sentence from a prompt word
	KindFillInBlank Kind = "fill_in_blank" // complete the gap in a sentence
	KindVocabulary  Kind = "vocabulary"    // give the meaning or form of a word
)

// Item is one gradable prompt. Items are immutable once loaded; a Session
// keeps the slice it was built with and never copies or mutates them.
type Item struct {
	ID      string
	Prompt  string
	Answers []string // canonical answers, in preference order; never empty
	Kind    Kind

	// Level and Lesson group items for filtering and bookmarks.
	Level  int
	Lesson int

	// Hint is optional text shown on request.
	Hint string
}

// Submittable reports whether the item can be graded.
func (it Item) Submittable() bool {
	return len(it.Answers) > 0
}
