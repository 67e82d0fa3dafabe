package authoring_test

import (
	"context"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"quizforge-backend/internal/authoring"
	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/models"
	"quizforge-backend/internal/repository"
	"quizforge-backend/internal/services"
)

// memStore keeps quizzes in memory and reports unknown ids the way the real
// stores do.
type memStore struct {
	mu      sync.Mutex
	quizzes map[string]models.Quiz
	seq     int
}

func (m *memStore) Create(_ context.Context, q *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	q.ID = "quiz-" + strconv.Itoa(m.seq)
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
	}
	cp := *q
	cp.Questions = models.CloneQuestions(q.Questions)
	m.quizzes[q.ID] = cp
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	q.Questions = models.CloneQuestions(q.Questions)
	return &q, nil
}

func (m *memStore) Update(_ context.Context, id string, title string, questions []models.Question, published *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return repository.ErrNotFound
	}
	q.Title = title
	q.Questions = models.CloneQuestions(questions)
	if published != nil {
		q.Published = *published
	}
	m.quizzes[id] = q
	return nil
}

func (m *memStore) SetPublished(_ context.Context, id string, published bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	q.Published = published
	m.quizzes[id] = q
	return published, nil
}

func (m *memStore) List(_ context.Context) ([]models.QuizSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.QuizSummary, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, q.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type noLock struct{}

func (noLock) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

type noEvents struct{}

func (noEvents) Publish(context.Context, string, models.WSMessage) error { return nil }

func newQuizService() (*services.QuizService, *memStore) {
	store := &memStore{quizzes: map[string]models.Quiz{}}
	return services.NewQuizService(store, noLock{}, noEvents{}, logger.Nop()), store
}

func TestEditorRoundTrip_Midterm(t *testing.T) {
	svc, _ := newQuizService()
	ctx := context.Background()

	e := authoring.New(svc, "", nil)
	_ = e.SetTitle(" Midterm ")
	_ = e.SetPrompt("Capital of France?\n")
	for i, opt := range []string{"Paris", "Rome", "Madrid", "Berlin"} {
		_ = e.UpdateOption(i, opt)
	}
	e.AddQuestion()
	_ = e.SetPrompt("2+2?")
	for i, opt := range []string{"3", "4", "5", "6"} {
		_ = e.UpdateOption(i, opt)
	}
	_ = e.SetCorrectAnswer(1)
	sent := e.Snapshot()

	exit, err := e.Save(ctx)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if exit.Location != authoring.AdminLocation || exit.QuizID == "" {
		t.Fatalf("unexpected exit: %+v", exit)
	}

	got, err := svc.GetQuiz(ctx, exit.QuizID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != sent.Title {
		t.Errorf("title: got %q, want %q", got.Title, sent.Title)
	}
	if !reflect.DeepEqual(got.Questions, sent.Questions) {
		t.Errorf("questions did not round-trip:\n got %+v\nwant %+v", got.Questions, sent.Questions)
	}
	if got.Published {
		t.Error("new quiz must start unpublished")
	}
}

func TestEditorRoundTrip_LegacyRepeatedIDs(t *testing.T) {
	svc, store := newQuizService()
	ctx := context.Background()

	const legacy = 1718000000000
	store.quizzes["legacy"] = models.Quiz{
		ID:        "legacy",
		Title:     "Old quiz",
		Published: true,
		Questions: []models.Question{
			{ID: legacy, Question: "A?", Options: []string{"a", "b", "c", "d"}},
			{ID: legacy, Question: "B?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2},
		},
	}

	stored, err := svc.GetQuiz(ctx, "legacy")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	e := authoring.New(svc, stored.ID, &models.QuizInput{Title: stored.Title, Questions: stored.Questions})
	_ = e.SetPrompt("A, edited?")
	sent := e.Snapshot()

	if _, err := e.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := svc.GetQuiz(ctx, "legacy")
	if !reflect.DeepEqual(got.Questions, sent.Questions) {
		t.Errorf("questions did not round-trip:\n got %+v\nwant %+v", got.Questions, sent.Questions)
	}
	if got.Questions[0].ID == got.Questions[1].ID {
		t.Errorf("stored ids still repeat: %d", got.Questions[0].ID)
	}
	if !got.Published {
		t.Error("editing must keep the published flag")
	}
}
