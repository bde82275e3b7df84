package quiz

import (
	"errors"
	"time"

	"github.com/learnloop/activity-service/internal/models"
)

// Phase is the lifecycle state of a quiz session.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseAnswering   Phase = "answering"
	PhaseSummarizing Phase = "summarizing"
	PhaseSubmitted   Phase = "submitted"
)

var (
	ErrAlreadyLoaded    = errors.New("questions already loaded")
	ErrNoQuestions      = errors.New("cannot load an empty question list")
	ErrNotAnswering     = errors.New("session is not in the answering phase")
	ErrNotSummarizing   = errors.New("session is not in the summary phase")
	ErrAlreadySubmitted = errors.New("session already submitted")
)

// EffectKind identifies a side effect the caller must perform after a
// transition. Effects are emitted as values so the transition logic stays
// free of I/O and timers.
type EffectKind string

const (
	// EffectSubmit hands the payload to the external submission flow.
	EffectSubmit EffectKind = "submit"
	// EffectNavigate moves to the next learning item. Delay is the minimum
	// wait before navigating, so the submission side effect visibly starts
	// before the hosting view is torn down.
	EffectNavigate EffectKind = "navigate"
)

// NavigateDelay is the at-least guarantee between submit and navigate.
const NavigateDelay = 2 * time.Second

type Effect struct {
	Kind  EffectKind    `json:"kind"`
	Delay time.Duration `json:"delay,omitempty"`
}

// Outcome is the terminal result of a session.
type Outcome struct {
	Payload         models.SubmissionPayload `json:"payload"`
	Score           int                      `json:"score"`
	TotalMarks      int                      `json:"total_marks"`
	ScorePercentage float64                  `json:"score_percentage"`
	Effects         []Effect                 `json:"effects"`
}

// Session is the quiz lifecycle state machine:
// Loading -> Answering (with bounded navigation) -> Summarizing -> Submitted.
// All transitions are synchronous; the session is not safe for concurrent
// use and must be guarded by its owner.
type Session struct {
	phase      Phase
	questions  []models.Question
	index      int
	selections map[string][]string
	score      int
	totalMarks int
}

// NewSession creates an empty session in the loading phase.
func NewSession() *Session {
	return &Session{
		phase:      PhaseLoading,
		selections: make(map[string][]string),
	}
}

// Load populates the session with parsed questions. It succeeds exactly
// once; an empty list is rejected so the host can distinguish "still
// loading" from "nothing to answer".
func (s *Session) Load(questions []models.Question) error {
	if s.phase != PhaseLoading {
		return ErrAlreadyLoaded
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.questions = questions
	s.totalMarks = 0
	for _, q := range questions {
		s.totalMarks += q.Marks
	}
	s.phase = PhaseAnswering
	return nil
}

func (s *Session) Phase() Phase    { return s.phase }
func (s *Session) Index() int      { return s.index }
func (s *Session) TotalMarks() int { return s.totalMarks }
func (s *Session) Score() int      { return s.score }

func (s *Session) Questions() []models.Question { return s.questions }

// CurrentQuestion returns the question at the cursor, if any.
func (s *Session) CurrentQuestion() (models.Question, bool) {
	if s.phase == PhaseLoading || s.index >= len(s.questions) {
		return models.Question{}, false
	}
	return s.questions[s.index], true
}

// Selections returns a copy of the selection map (questionID -> optionIDs).
func (s *Session) Selections() map[string][]string {
	out := make(map[string][]string, len(s.selections))
	for id, opts := range s.selections {
		out[id] = append([]string(nil), opts...)
	}
	return out
}

// SelectOption records an option choice for the current question. Single
// questions replace the selection set; multiple questions toggle membership.
// The option id is not validated against the question; selection is a
// caller-trusted interaction, per the authored contract.
func (s *Session) SelectOption(optionID string) error {
	if s.phase != PhaseAnswering {
		return ErrNotAnswering
	}

	question := s.questions[s.index]
	current := s.selections[question.ID]

	if question.Kind == models.QuestionSingle {
		s.selections[question.ID] = []string{optionID}
		return nil
	}

	for i, id := range current {
		if id == optionID {
			s.selections[question.ID] = append(current[:i:i], current[i+1:]...)
			if len(s.selections[question.ID]) == 0 {
				delete(s.selections, question.ID)
			}
			return nil
		}
	}
	s.selections[question.ID] = append(current, optionID)
	return nil
}

// CanProceed reports whether the current question has a non-empty selection.
// It is advisory only: Next does not enforce it.
func (s *Session) CanProceed() bool {
	if s.phase != PhaseAnswering {
		return false
	}
	return len(s.selections[s.questions[s.index].ID]) > 0
}

// Next advances the cursor; no-op at the last question. The transition
// deliberately does not re-check CanProceed — gating is the caller's call.
func (s *Session) Next() error {
	if s.phase != PhaseAnswering {
		return ErrNotAnswering
	}
	if s.index < len(s.questions)-1 {
		s.index++
	}
	return nil
}

// Previous moves the cursor back; no-op at the first question.
func (s *Session) Previous() error {
	if s.phase != PhaseAnswering {
		return ErrNotAnswering
	}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// SubmitAssessment evaluates every question exactly once and transitions to
// the summary phase. Returns the total score.
func (s *Session) SubmitAssessment() (int, error) {
	if s.phase != PhaseAnswering {
		if s.phase == PhaseSummarizing || s.phase == PhaseSubmitted {
			return 0, ErrAlreadySubmitted
		}
		return 0, ErrNotAnswering
	}

	s.score = Evaluate(s.questions, s.selections)
	s.phase = PhaseSummarizing
	return s.score, nil
}

// ContinueFromSummary closes the session: it computes the percentage against
// the externally supplied subconcept maximum (which may differ from the
// session's own total marks), builds the submission payload, and emits the
// submit-then-navigate effect sequence for the caller to perform.
func (s *Session) ContinueFromSummary(subconceptMaxScore float64) (*Outcome, error) {
	if s.phase != PhaseSummarizing {
		if s.phase == PhaseSubmitted {
			return nil, ErrAlreadySubmitted
		}
		return nil, ErrNotSummarizing
	}

	var percentage float64
	if subconceptMaxScore > 0 {
		percentage = float64(s.score) / subconceptMaxScore * 100
	}

	s.phase = PhaseSubmitted
	return &Outcome{
		Payload: models.SubmissionPayload{
			UserAttemptFlag:  true,
			UserAttemptScore: s.score,
		},
		Score:           s.score,
		TotalMarks:      s.totalMarks,
		ScorePercentage: percentage,
		Effects: []Effect{
			{Kind: EffectSubmit},
			{Kind: EffectNavigate, Delay: NavigateDelay},
		},
	}, nil
}

// Evaluate scores a full selection map against a question list. It is pure
// and deterministic: the same selections always produce the same score.
// Single questions score iff exactly the one correct option is selected;
// multiple questions score iff the selected set equals the correct set, with
// no partial credit in either direction.
func Evaluate(questions []models.Question, selections map[string][]string) int {
	score := 0
	for _, q := range questions {
		if questionCorrect(q, selections[q.ID]) {
			score += q.Marks
		}
	}
	return score
}

func questionCorrect(q models.Question, selected []string) bool {
	correct := q.CorrectOptionIDs()
	if len(correct) == 0 {
		// Legal authored content: an unscored item that can never be correct.
		return false
	}

	if q.Kind == models.QuestionSingle {
		return len(selected) == 1 && selected[0] == correct[0]
	}

	// Compare as sets: duplicate ids in a selection slice (possible via a
	// restored snapshot, never via SelectOption) must not pad the count.
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		seen[id] = true
	}
	if len(seen) != len(correct) {
		return false
	}
	for _, id := range correct {
		if !seen[id] {
			return false
		}
	}
	return true
}
