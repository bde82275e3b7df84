package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/activity-service/internal/cache"
	"github.com/learnloop/activity-service/internal/events"
	"github.com/learnloop/activity-service/internal/matching"
	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/quiz"
	"github.com/learnloop/activity-service/internal/repositories"
	"github.com/learnloop/activity-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== TEST DOUBLES =====

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *mockActivityRepo) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Activity), args.Error(1)
}

func (m *mockActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *mockActivityRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockActivityRepo) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Activity), args.Get(1).(int64), args.Error(2)
}

func (m *mockActivityRepo) GetBySubconcept(ctx context.Context, subconceptID string) ([]*models.Activity, error) {
	args := m.Called(ctx, subconceptID)
	return args.Get(0).([]*models.Activity), args.Error(1)
}

func (m *mockActivityRepo) ExistsByTitle(ctx context.Context, title string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, title, excludeID)
	return args.Bool(0), args.Error(1)
}

type mockAttemptRepo struct {
	mock.Mock
}

func (m *mockAttemptRepo) Create(ctx context.Context, attempt *models.AttemptRecord) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *mockAttemptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AttemptRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptRecord), args.Error(1)
}

func (m *mockAttemptRepo) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.AttemptRecord), args.Get(1).(int64), args.Error(2)
}

func (m *mockAttemptRepo) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.AttemptRecord), args.Get(1).(int64), args.Error(2)
}

func (m *mockAttemptRepo) GetByActivity(ctx context.Context, activityID uint, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	args := m.Called(ctx, activityID, filters)
	return args.Get(0).([]*models.AttemptRecord), args.Get(1).(int64), args.Error(2)
}

func (m *mockAttemptRepo) GetBestByUserAndActivity(ctx context.Context, userID string, activityID uint) (*models.AttemptRecord, error) {
	args := m.Called(ctx, userID, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AttemptRecord), args.Error(1)
}

func (m *mockAttemptRepo) GetActivityStats(ctx context.Context, activityID uint) (*repositories.ActivityStats, error) {
	args := m.Called(ctx, activityID)
	return args.Get(0).(*repositories.ActivityStats), args.Error(1)
}

// stubFetcher serves fixed XML regardless of URL.
type stubFetcher struct {
	data []byte
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.data, nil
}

// memoryCache is a map-backed CacheService; TTLs are ignored.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

// ===== FIXTURES =====

const quizXML = `<activities headertext="Unit 3">
	<question id="q1" desc="Pick one">
		<option slno="a" correct="true" desc="Right"/>
		<option slno="b" correct="false" desc="Wrong"/>
	</question>
	<question id="q2" desc="Pick two">
		<option slno="a" correct="true" desc="First"/>
		<option slno="b" correct="true" desc="Second"/>
		<option slno="c" correct="false" desc="Third"/>
	</question>
</activities>`

const matchingXML = `<activities>
	<activity activityid="page-1">
		<question id="p1" word="cat" correctOption="a small domestic feline"/>
		<question id="p2" word="dog" correctOption="a loyal domestic canine"/>
	</activity>
</activities>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func quizActivity() *models.Activity {
	return &models.Activity{
		ID:                 1,
		Title:              "Unit 3 Quiz",
		ContentURL:         "https://content.example.com/unit3.xml",
		Dialect:            models.DialectQuiz,
		SubconceptID:       "sub-3",
		SubconceptMaxScore: 4,
	}
}

func matchingActivity() *models.Activity {
	return &models.Activity{
		ID:                 2,
		Title:              "Unit 3 Matching",
		ContentURL:         "https://content.example.com/unit3-match.xml",
		Dialect:            models.DialectMatchingPairs,
		SubconceptID:       "sub-3",
		SubconceptMaxScore: 1,
	}
}

type sessionFixture struct {
	service   SessionService
	attempts  *mockAttemptRepo
	publisher *events.MockEventPublisher
	store     *memoryCache
}

func newSessionFixture(t *testing.T, activity *models.Activity, xml string) *sessionFixture {
	t.Helper()

	activityRepo := new(mockActivityRepo)
	activityRepo.On("GetByID", mock.Anything, activity.ID).Return(activity, nil)

	attemptRepo := new(mockAttemptRepo)
	publisher := events.NewMockEventPublisher(testLogger())
	store := newMemoryCache()

	activities := NewActivityService(
		activityRepo,
		attemptRepo,
		&stubFetcher{data: []byte(xml)},
		publisher,
		validator.New(),
		testLogger(),
	)

	return &sessionFixture{
		service:   NewSessionService(activities, attemptRepo, store, publisher, testLogger(), time.Hour),
		attempts:  attemptRepo,
		publisher: publisher,
		store:     store,
	}
}

// ===== QUIZ SESSION TESTS =====

func TestSessionService_QuizFullRun(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, quizActivity(), quizXML)
	fx.attempts.On("Create", mock.Anything, mock.AnythingOfType("*models.AttemptRecord")).Return(nil)

	view, err := fx.service.Start(ctx, 1, "user-1")
	require.NoError(t, err)
	require.NotNil(t, view.Quiz)
	assert.Equal(t, quiz.PhaseAnswering, view.Quiz.Phase)
	assert.Equal(t, 2, view.Quiz.TotalItems)

	id := view.SessionID

	_, err = fx.service.SelectOption(ctx, id, "user-1", "a")
	require.NoError(t, err)
	_, err = fx.service.NextQuestion(ctx, id, "user-1")
	require.NoError(t, err)
	_, err = fx.service.SelectOption(ctx, id, "user-1", "a")
	require.NoError(t, err)
	_, err = fx.service.SelectOption(ctx, id, "user-1", "b")
	require.NoError(t, err)

	view, err = fx.service.SubmitQuiz(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, quiz.PhaseSummarizing, view.Quiz.Phase)
	require.NotNil(t, view.Quiz.Score)
	assert.Equal(t, 2, *view.Quiz.Score)

	outcome, err := fx.service.Finalize(ctx, id, "user-1")
	require.NoError(t, err)
	assert.True(t, outcome.Payload.UserAttemptFlag)
	assert.Equal(t, 2, outcome.Payload.UserAttemptScore)
	assert.Equal(t, 50.0, outcome.ScorePercentage) // 2 of subconcept max 4
	require.Len(t, outcome.Effects, 2)
	assert.Equal(t, quiz.EffectSubmit, outcome.Effects[0].Kind)
	assert.Equal(t, quiz.EffectNavigate, outcome.Effects[1].Kind)
	assert.Equal(t, quiz.NavigateDelay, outcome.Effects[1].Delay)

	fx.attempts.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(r *models.AttemptRecord) bool {
		return r.ActivityID == 1 && r.UserID == "user-1" && r.UserAttemptScore == 2
	}))

	types := make([]events.EventType, 0)
	for _, e := range fx.publisher.GetPublishedEvents() {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventSessionStarted)
	assert.Contains(t, types, events.EventAttemptSubmitted)

	// The session is gone once finalized.
	_, err = fx.service.Get(ctx, id, "user-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_FinalizeRequiresSummary(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, quizActivity(), quizXML)

	view, err := fx.service.Start(ctx, 1, "user-1")
	require.NoError(t, err)

	_, err = fx.service.Finalize(ctx, view.SessionID, "user-1")
	assert.ErrorIs(t, err, quiz.ErrNotSummarizing)
}

func TestSessionService_WrongUserIsNotFound(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, quizActivity(), quizXML)

	view, err := fx.service.Start(ctx, 1, "user-1")
	require.NoError(t, err)

	_, err = fx.service.Get(ctx, view.SessionID, "someone-else")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_MatchingOpOnQuizSession(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, quizActivity(), quizXML)

	view, err := fx.service.Start(ctx, 1, "user-1")
	require.NoError(t, err)

	_, err = fx.service.PlaceKeyword(ctx, view.SessionID, "user-1", "p1", "p1")
	assert.ErrorIs(t, err, ErrSessionWrongDialect)
}

func TestSessionService_RestoreFromStore(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, quizActivity(), quizXML)

	view, err := fx.service.Start(ctx, 1, "user-1")
	require.NoError(t, err)
	_, err = fx.service.SelectOption(ctx, view.SessionID, "user-1", "a")
	require.NoError(t, err)

	// A second service instance sharing the store stands in for a restarted
	// process with an empty in-memory map.
	restarted := NewSessionService(nil, fx.attempts, fx.store, fx.publisher, testLogger(), time.Hour)

	restored, err := restarted.Get(ctx, view.SessionID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, restored.Quiz)
	assert.Equal(t, quiz.PhaseAnswering, restored.Quiz.Phase)
	assert.Equal(t, []string{"a"}, restored.Quiz.Selections["q1"])
}

// ===== MATCHING SESSION TESTS =====

func TestSessionService_MatchingFullRun(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, matchingActivity(), matchingXML)
	fx.attempts.On("Create", mock.Anything, mock.AnythingOfType("*models.AttemptRecord")).Return(nil)

	view, err := fx.service.Start(ctx, 2, "user-1")
	require.NoError(t, err)
	require.NotNil(t, view.Matching)
	assert.Equal(t, 1, view.Matching.TotalPages)

	id := view.SessionID

	// Correct placements: each pair id maps word to its own definition.
	result, err := fx.service.PlaceKeyword(ctx, id, "user-1", "p1", "p1")
	require.NoError(t, err)
	assert.False(t, result.Evaluated)

	result, err = fx.service.PlaceKeyword(ctx, id, "user-1", "p2", "p2")
	require.NoError(t, err)
	assert.True(t, result.Evaluated)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.View.Score)
	assert.True(t, result.View.Complete)

	outcome, err := fx.service.Finalize(ctx, id, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Payload.UserAttemptScore)
	assert.Equal(t, 100.0, outcome.ScorePercentage)

	types := make([]events.EventType, 0)
	for _, e := range fx.publisher.GetPublishedEvents() {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventPageScored)
	assert.Contains(t, types, events.EventAttemptSubmitted)
}

func TestSessionService_FinalizeIncompleteDrill(t *testing.T) {
	ctx := context.Background()
	fx := newSessionFixture(t, matchingActivity(), matchingXML)

	view, err := fx.service.Start(ctx, 2, "user-1")
	require.NoError(t, err)

	_, err = fx.service.Finalize(ctx, view.SessionID, "user-1")
	assert.ErrorIs(t, err, matching.ErrNotComplete)
}

func TestSessionService_FlashcardHasNoSessions(t *testing.T) {
	ctx := context.Background()
	activity := &models.Activity{
		ID:                 3,
		Title:              "Unit 3 Vocabulary",
		ContentURL:         "https://content.example.com/unit3-vocab.xml",
		Dialect:            models.DialectFlashcardSlider,
		SubconceptID:       "sub-3",
		SubconceptMaxScore: 1,
	}
	fx := newSessionFixture(t, activity, `<activities type="flashcard"/>`)

	_, err := fx.service.Start(ctx, 3, "user-1")
	assert.ErrorIs(t, err, ErrSessionWrongDialect)
}
