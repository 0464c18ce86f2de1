package drill

import "github.com/abhisek/vocabdrill/internal/progress"

// PersistFailedMsg reports a grade that could not be saved. The verdict on
// screen stands.
type PersistFailedMsg struct {
	Err *progress.PersistenceError
}

// finishMsg ends the drill and shows the summary.
type finishMsg struct{}
