package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/activity-service/internal/cache"
	"github.com/learnloop/activity-service/internal/events"
	"github.com/learnloop/activity-service/internal/matching"
	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/quiz"
	"github.com/learnloop/activity-service/internal/repositories"
)

// ===== SESSION VIEWS =====

// QuizView is the learner-facing slice of a quiz session.
type QuizView struct {
	Phase         quiz.Phase          `json:"phase"`
	QuestionIndex int                 `json:"question_index"`
	TotalItems    int                 `json:"total_items"`
	CanProceed    bool                `json:"can_proceed"`
	Selections    map[string][]string `json:"selections"`
	Score         *int                `json:"score,omitempty"`
	TotalMarks    *int                `json:"total_marks,omitempty"`
}

// MatchingView is the learner-facing slice of a matching drill.
type MatchingView struct {
	PageIndex     int               `json:"page_index"`
	TotalPages    int               `json:"total_pages"`
	Placements    map[string]string `json:"placements"`
	PageSubmitted bool              `json:"page_submitted"`
	PageCorrect   bool              `json:"page_correct"`
	Score         int               `json:"score"`
	Complete      bool              `json:"complete"`
}

type SessionView struct {
	SessionID  string         `json:"session_id"`
	ActivityID uint           `json:"activity_id"`
	Dialect    models.Dialect `json:"dialect"`
	StartedAt  time.Time      `json:"started_at"`
	Quiz       *QuizView      `json:"quiz,omitempty"`
	Matching   *MatchingView  `json:"matching,omitempty"`
}

// PlacementResult reports a single placement transition back to the client.
type PlacementResult struct {
	Evaluated bool          `json:"evaluated"`
	Correct   bool          `json:"correct"`
	View      *MatchingView `json:"view"`
}

// SessionService drives live quiz sessions and matching drills. Sessions
// live in memory with a per-session mutex and are snapshotted to Redis after
// every transition, so a restarted process can pick them back up.
type SessionService interface {
	Start(ctx context.Context, activityID uint, userID string) (*SessionView, error)
	Get(ctx context.Context, sessionID, userID string) (*SessionView, error)

	// Quiz operations
	SelectOption(ctx context.Context, sessionID, userID, optionID string) (*SessionView, error)
	NextQuestion(ctx context.Context, sessionID, userID string) (*SessionView, error)
	PreviousQuestion(ctx context.Context, sessionID, userID string) (*SessionView, error)
	SubmitQuiz(ctx context.Context, sessionID, userID string) (*SessionView, error)

	// Matching operations
	PlaceKeyword(ctx context.Context, sessionID, userID, keywordID, target string) (*PlacementResult, error)
	SubmitPage(ctx context.Context, sessionID, userID string) (*PlacementResult, error)
	AdvancePage(ctx context.Context, sessionID, userID string) (*SessionView, error)

	// Finalize closes the session (quiz: from the summary phase; matching:
	// once every page is scored), persists the attempt record, publishes the
	// submission event, and returns the outcome with its effect sequence.
	Finalize(ctx context.Context, sessionID, userID string) (*quiz.Outcome, error)
}

type liveSession struct {
	mu sync.Mutex

	id        string
	activity  *models.Activity
	userID    string
	startedAt time.Time

	quiz  *quiz.Session
	drill *matching.Drill
}

// sessionState is the Redis-persisted form of a live session.
type sessionState struct {
	SessionID string          `json:"session_id"`
	Activity  models.Activity `json:"activity"`
	UserID    string          `json:"user_id"`
	StartedAt time.Time       `json:"started_at"`
	Quiz      *quiz.State     `json:"quiz,omitempty"`
	Drill     *matching.State `json:"drill,omitempty"`
}

type sessionService struct {
	activities ActivityService
	attempts   repositories.AttemptRepository
	store      cache.CacheService
	publisher  events.EventPublisher
	logger     *slog.Logger
	ttl        time.Duration

	mu   sync.Mutex
	live map[string]*liveSession
}

func NewSessionService(
	activities ActivityService,
	attempts repositories.AttemptRepository,
	store cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	ttl time.Duration,
) SessionService {
	return &sessionService{
		activities: activities,
		attempts:   attempts,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		ttl:        ttl,
		live:       make(map[string]*liveSession),
	}
}

func (s *sessionService) Start(ctx context.Context, activityID uint, userID string) (*SessionView, error) {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity.Dialect == models.DialectFlashcardSlider {
		// Flashcard content is browsed, not attempted; there is nothing to score.
		return nil, ErrSessionWrongDialect
	}

	parsed, err := s.activities.LoadContent(ctx, activity)
	if err != nil {
		return nil, err
	}

	sess := &liveSession{
		id:        uuid.NewString(),
		activity:  activity,
		userID:    userID,
		startedAt: time.Now(),
	}

	switch activity.Dialect {
	case models.DialectQuiz:
		sess.quiz = quiz.NewSession()
		if err := sess.quiz.Load(parsed.Questions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContentInvalid, err)
		}
	case models.DialectMatchingPairs:
		drill, err := matching.NewDrill(parsed.Pages, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContentInvalid, err)
		}
		sess.drill = drill
	}

	s.mu.Lock()
	s.live[sess.id] = sess
	s.mu.Unlock()

	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn("Failed to persist session snapshot", "session_id", sess.id, "error", err)
	}

	event := events.NewSessionStartedEvent(events.SessionStartedEvent{
		SessionID:  sess.id,
		ActivityID: activity.ID,
		UserID:     userID,
		Dialect:    string(activity.Dialect),
		StartedAt:  sess.startedAt,
	})
	if err := s.publisher.PublishActivityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish session started event", "session_id", sess.id, "error", err)
	}

	s.logger.Info("Session started",
		"session_id", sess.id,
		"activity_id", activity.ID,
		"dialect", activity.Dialect,
		"user_id", userID)
	return s.view(sess), nil
}

func (s *sessionService) Get(ctx context.Context, sessionID, userID string) (*SessionView, error) {
	sess, err := s.acquire(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()
	return s.view(sess), nil
}

// ===== QUIZ OPERATIONS =====

func (s *sessionService) SelectOption(ctx context.Context, sessionID, userID, optionID string) (*SessionView, error) {
	return s.quizOp(ctx, sessionID, userID, func(q *quiz.Session) error {
		return q.SelectOption(optionID)
	})
}

func (s *sessionService) NextQuestion(ctx context.Context, sessionID, userID string) (*SessionView, error) {
	return s.quizOp(ctx, sessionID, userID, func(q *quiz.Session) error {
		return q.Next()
	})
}

func (s *sessionService) PreviousQuestion(ctx context.Context, sessionID, userID string) (*SessionView, error) {
	return s.quizOp(ctx, sessionID, userID, func(q *quiz.Session) error {
		return q.Previous()
	})
}

func (s *sessionService) SubmitQuiz(ctx context.Context, sessionID, userID string) (*SessionView, error) {
	return s.quizOp(ctx, sessionID, userID, func(q *quiz.Session) error {
		_, err := q.SubmitAssessment()
		return err
	})
}

func (s *sessionService) quizOp(ctx context.Context, sessionID, userID string, op func(*quiz.Session) error) (*SessionView, error) {
	sess, err := s.acquire(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.quiz == nil {
		return nil, ErrSessionWrongDialect
	}
	if err := op(sess.quiz); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn("Failed to persist session snapshot", "session_id", sess.id, "error", err)
	}
	return s.view(sess), nil
}

// ===== MATCHING OPERATIONS =====

func (s *sessionService) PlaceKeyword(ctx context.Context, sessionID, userID, keywordID, target string) (*PlacementResult, error) {
	sess, err := s.acquire(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.drill == nil {
		return nil, ErrSessionWrongDialect
	}

	page := sess.drill.CurrentPage()
	evaluated, err := page.Place(keywordID, target)
	if err != nil {
		return nil, err
	}

	if evaluated {
		s.publishPageScored(ctx, sess, page)
	}
	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn("Failed to persist session snapshot", "session_id", sess.id, "error", err)
	}

	return &PlacementResult{
		Evaluated: evaluated,
		Correct:   page.IsCorrect(),
		View:      s.matchingView(sess),
	}, nil
}

func (s *sessionService) SubmitPage(ctx context.Context, sessionID, userID string) (*PlacementResult, error) {
	sess, err := s.acquire(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.drill == nil {
		return nil, ErrSessionWrongDialect
	}

	page := sess.drill.CurrentPage()
	correct, err := page.Submit()
	if err != nil {
		return nil, err
	}

	s.publishPageScored(ctx, sess, page)
	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn("Failed to persist session snapshot", "session_id", sess.id, "error", err)
	}

	return &PlacementResult{
		Evaluated: true,
		Correct:   correct,
		View:      s.matchingView(sess),
	}, nil
}

func (s *sessionService) AdvancePage(ctx context.Context, sessionID, userID string) (*SessionView, error) {
	sess, err := s.acquire(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.drill == nil {
		return nil, ErrSessionWrongDialect
	}
	if _, err := sess.drill.NextPage(); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn("Failed to persist session snapshot", "session_id", sess.id, "error", err)
	}
	return s.view(sess), nil
}

// ===== FINALIZATION =====

func (s *sessionService) Finalize(ctx context.Context, sessionID, userID string) (*quiz.Outcome, error) {
	sess, err := s.acquire(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	var outcome *quiz.Outcome
	var responses interface{}

	switch {
	case sess.quiz != nil:
		outcome, err = sess.quiz.ContinueFromSummary(sess.activity.SubconceptMaxScore)
		if err != nil {
			return nil, err
		}
		responses = sess.quiz.Selections()
	case sess.drill != nil:
		outcome, err = sess.drill.Finish(sess.activity.SubconceptMaxScore)
		if err != nil {
			return nil, err
		}
		responses = sess.drill.Snapshot().Pages
	default:
		return nil, ErrSessionWrongDialect
	}

	responsesJSON, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal responses: %w", err)
	}

	record := &models.AttemptRecord{
		ID:               uuid.New(),
		ActivityID:       sess.activity.ID,
		UserID:           sess.userID,
		UserAttemptFlag:  outcome.Payload.UserAttemptFlag,
		UserAttemptScore: outcome.Payload.UserAttemptScore,
		TotalMarks:       outcome.TotalMarks,
		ScorePercentage:  outcome.ScorePercentage,
		Responses:        responsesJSON,
		SubmittedAt:      time.Now(),
	}
	if err := s.attempts.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist attempt record: %w", err)
	}

	event := events.NewAttemptSubmittedEvent(events.AttemptSubmittedEvent{
		AttemptID:        record.ID.String(),
		SessionID:        sess.id,
		ActivityID:       sess.activity.ID,
		UserID:           sess.userID,
		SubconceptID:     sess.activity.SubconceptID,
		UserAttemptFlag:  record.UserAttemptFlag,
		UserAttemptScore: record.UserAttemptScore,
		TotalMarks:       record.TotalMarks,
		ScorePercentage:  record.ScorePercentage,
		SubmittedAt:      record.SubmittedAt,
	})
	if err := s.publisher.PublishActivityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt submitted event", "attempt_id", record.ID, "error", err)
	}

	s.evict(ctx, sess.id)

	s.logger.Info("Session finalized",
		"session_id", sess.id,
		"attempt_id", record.ID,
		"score", record.UserAttemptScore,
		"percentage", record.ScorePercentage)
	return outcome, nil
}

// ===== SESSION STORE =====

// acquire returns the session with its mutex held. Sessions missing from the
// in-memory map are restored from their Redis snapshot.
func (s *sessionService) acquire(ctx context.Context, sessionID, userID string) (*liveSession, error) {
	s.mu.Lock()
	sess, ok := s.live[sessionID]
	if !ok {
		restored, err := s.restore(ctx, sessionID)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.live[sessionID] = restored
		sess = restored
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if sess.userID != userID {
		sess.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) persist(ctx context.Context, sess *liveSession) error {
	state := sessionState{
		SessionID: sess.id,
		Activity:  *sess.activity,
		UserID:    sess.userID,
		StartedAt: sess.startedAt,
	}
	if sess.quiz != nil {
		snapshot := sess.quiz.Snapshot()
		state.Quiz = &snapshot
	}
	if sess.drill != nil {
		snapshot := sess.drill.Snapshot()
		state.Drill = &snapshot
	}
	return s.store.Set(ctx, sessionKey(sess.id), state, s.ttl)
}

func (s *sessionService) restore(ctx context.Context, sessionID string) (*liveSession, error) {
	var state sessionState
	if err := s.store.Get(ctx, sessionKey(sessionID), &state); err != nil {
		return nil, ErrSessionNotFound
	}

	activity := state.Activity
	sess := &liveSession{
		id:        state.SessionID,
		activity:  &activity,
		userID:    state.UserID,
		startedAt: state.StartedAt,
	}
	if state.Quiz != nil {
		sess.quiz = quiz.Restore(*state.Quiz)
	}
	if state.Drill != nil {
		sess.drill = matching.Restore(*state.Drill)
	}

	s.logger.Info("Session restored from store", "session_id", sessionID)
	return sess, nil
}

func (s *sessionService) evict(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()
	if err := s.store.Delete(ctx, sessionKey(sessionID)); err != nil {
		s.logger.Warn("Failed to delete session snapshot", "session_id", sessionID, "error", err)
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// ===== VIEWS =====

func (s *sessionService) view(sess *liveSession) *SessionView {
	view := &SessionView{
		SessionID:  sess.id,
		ActivityID: sess.activity.ID,
		Dialect:    sess.activity.Dialect,
		StartedAt:  sess.startedAt,
	}
	if sess.quiz != nil {
		view.Quiz = s.quizView(sess.quiz)
	}
	if sess.drill != nil {
		view.Matching = s.matchingView(sess)
	}
	return view
}

func (s *sessionService) quizView(q *quiz.Session) *QuizView {
	view := &QuizView{
		Phase:         q.Phase(),
		QuestionIndex: q.Index(),
		TotalItems:    len(q.Questions()),
		CanProceed:    q.CanProceed(),
		Selections:    q.Selections(),
	}
	if q.Phase() == quiz.PhaseSummarizing || q.Phase() == quiz.PhaseSubmitted {
		score := q.Score()
		totalMarks := q.TotalMarks()
		view.Score = &score
		view.TotalMarks = &totalMarks
	}
	return view
}

func (s *sessionService) matchingView(sess *liveSession) *MatchingView {
	page := sess.drill.CurrentPage()
	return &MatchingView{
		PageIndex:     sess.drill.PageIndex(),
		TotalPages:    sess.drill.TotalPages(),
		Placements:    page.Placements(),
		PageSubmitted: page.IsSubmitted(),
		PageCorrect:   page.IsCorrect(),
		Score:         sess.drill.Score(),
		Complete:      sess.drill.Complete(),
	}
}

func (s *sessionService) publishPageScored(ctx context.Context, sess *liveSession, page *matching.Page) {
	event := events.NewPageScoredEvent(events.PageScoredEvent{
		SessionID:  sess.id,
		ActivityID: sess.activity.ID,
		UserID:     sess.userID,
		PageID:     page.ActivityID(),
		PageIndex:  sess.drill.PageIndex(),
		Correct:    page.IsCorrect(),
	})
	if err := s.publisher.PublishActivityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish page scored event", "session_id", sess.id, "error", err)
	}
}
