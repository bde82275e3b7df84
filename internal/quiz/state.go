package quiz

import "github.com/learnloop/activity-service/internal/models"

// State is the serializable snapshot of a session, used to persist live
// sessions across process restarts.
type State struct {
	Phase      Phase               `json:"phase"`
	Questions  []models.Question   `json:"questions"`
	Index      int                 `json:"index"`
	Selections map[string][]string `json:"selections"`
	Score      int                 `json:"score"`
	TotalMarks int                 `json:"total_marks"`
}

// Snapshot captures the session state.
func (s *Session) Snapshot() State {
	return State{
		Phase:      s.phase,
		Questions:  s.questions,
		Index:      s.index,
		Selections: s.Selections(),
		Score:      s.score,
		TotalMarks: s.totalMarks,
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(state State) *Session {
	selections := state.Selections
	if selections == nil {
		selections = make(map[string][]string)
	}
	return &Session{
		phase:      state.Phase,
		questions:  state.Questions,
		index:      state.Index,
		selections: selections,
		score:      state.Score,
		totalMarks: state.TotalMarks,
	}
}
