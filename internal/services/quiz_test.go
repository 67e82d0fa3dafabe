package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
)

func question(id int, prompt string, correct int) models.Question {
	return models.Question{ID: id, Question: prompt, Options: []string{"A", "B", "C", "D"}, CorrectAnswer: correct}
}

func newQuizService() (*QuizService, *memQuizStore, *memLocker, *recordingPublisher) {
	store := newMemQuizStore()
	locker := &memLocker{}
	events := &recordingPublisher{}
	return NewQuizService(store, locker, events, logger.Nop()), store, locker, events
}

func boolPtr(b bool) *bool { return &b }

func TestCreateQuiz_RoundTrip(t *testing.T) {
	svc, _, _, _ := newQuizService()
	ctx := context.Background()

	in := models.QuizInput{
		Title:     "Midterm",
		Questions: []models.Question{question(1, "Q1", 0), question(2, "Q2", 3)},
	}
	id, err := svc.CreateQuiz(ctx, in)
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}

	got, err := svc.GetQuiz(ctx, id)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != "Midterm" || got.Published {
		t.Fatalf("unexpected quiz: %+v", got)
	}
	if len(got.Questions) != 2 || got.Questions[0].Question != "Q1" || got.Questions[1].CorrectAnswer != 3 {
		t.Fatalf("questions did not round-trip in order: %+v", got.Questions)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestCreateQuiz_DefaultsAndExplicitCreatedAt(t *testing.T) {
	svc, _, _, _ := newQuizService()
	ctx := context.Background()
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	id, err := svc.CreateQuiz(ctx, models.QuizInput{
		Title:     "   ",
		Questions: []models.Question{question(1, "Q1", 0)},
		Published: boolPtr(true),
		CreatedAt: &created,
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	got, _ := svc.GetQuiz(ctx, id)
	if got.Title != models.DefaultQuizTitle {
		t.Errorf("expected default title, got %q", got.Title)
	}
	if got.Published {
		t.Error("new quizzes must start unpublished")
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %s, got %s", created, got.CreatedAt)
	}
}

func TestQuiz_WhitespaceStoredAsSent(t *testing.T) {
	svc, _, _, _ := newQuizService()
	ctx := context.Background()

	id, err := svc.CreateQuiz(ctx, models.QuizInput{
		Title:     " Midterm ",
		Questions: []models.Question{question(1, "Q1\n", 0), question(2, "  Q2", 1)},
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	got, _ := svc.GetQuiz(ctx, id)
	if got.Title != " Midterm " {
		t.Errorf("title: got %q, want %q", got.Title, " Midterm ")
	}
	if got.Questions[0].Question != "Q1\n" || got.Questions[1].Question != "  Q2" {
		t.Errorf("prompts changed: %q, %q", got.Questions[0].Question, got.Questions[1].Question)
	}

	err = svc.UpdateQuiz(ctx, id, models.QuizInput{
		Title:     "\tFinal",
		Questions: []models.Question{question(1, " Q1 ", 2)},
	})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	got, _ = svc.GetQuiz(ctx, id)
	if got.Title != "\tFinal" || got.Questions[0].Question != " Q1 " {
		t.Errorf("update changed text: title %q, prompt %q", got.Title, got.Questions[0].Question)
	}
}

func TestCreateQuiz_Validation(t *testing.T) {
	svc, store, _, _ := newQuizService()

	tests := []struct {
		name      string
		in        models.QuizInput
		wantField string
	}{
		{"missing questions", models.QuizInput{Title: "T"}, "questions"},
		{"empty questions", models.QuizInput{Title: "T", Questions: []models.Question{}}, "questions"},
		{"three options", models.QuizInput{Questions: []models.Question{{ID: 1, Options: []string{"a", "b", "c"}}}}, "questions[0].options"},
		{"answer out of range", models.QuizInput{Questions: []models.Question{question(1, "Q", 0), question(2, "Q", 4)}}, "questions[1].correct_answer"},
		{"negative answer", models.QuizInput{Questions: []models.Question{question(1, "Q", -1)}}, "questions[0].correct_answer"},
		{"duplicate ids", models.QuizInput{Questions: []models.Question{question(1, "Q", 0), question(1, "Q", 0)}}, "questions[1].id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(context.Background(), tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Fatalf("expected field %q in %v", tt.wantField, verr.Fields)
			}
		})
	}

	if len(store.quizzes) != 0 {
		t.Fatalf("invalid input must not be stored, got %d quizzes", len(store.quizzes))
	}
}

func TestGetQuiz_NotFound(t *testing.T) {
	svc, _, _, _ := newQuizService()
	_, err := svc.GetQuiz(context.Background(), "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateQuiz_PublishedPreservedUnlessExplicit(t *testing.T) {
	svc, _, _, _ := newQuizService()
	ctx := context.Background()

	id, _ := svc.CreateQuiz(ctx, models.QuizInput{Title: "T", Questions: []models.Question{question(1, "Q1", 0)}})
	if _, err := svc.SetPublished(ctx, id, true); err != nil {
		t.Fatalf("SetPublished: %v", err)
	}

	err := svc.UpdateQuiz(ctx, id, models.QuizInput{Title: "T2", Questions: []models.Question{question(1, "Q1", 1), question(2, "Q2", 2)}})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	got, _ := svc.GetQuiz(ctx, id)
	if !got.Published {
		t.Fatal("update without published must keep the stored flag")
	}
	if got.Title != "T2" || len(got.Questions) != 2 || got.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("update not applied: %+v", got)
	}

	err = svc.UpdateQuiz(ctx, id, models.QuizInput{Title: "T2", Questions: got.Questions, Published: boolPtr(false)})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	got, _ = svc.GetQuiz(ctx, id)
	if got.Published {
		t.Fatal("explicit published=false should overwrite")
	}
}

func TestUpdateQuiz_LastWriteWins(t *testing.T) {
	svc, _, _, _ := newQuizService()
	ctx := context.Background()
	id, _ := svc.CreateQuiz(ctx, models.QuizInput{Title: "T", Questions: []models.Question{question(1, "Q1", 0)}})

	_ = svc.UpdateQuiz(ctx, id, models.QuizInput{Title: "from A", Questions: []models.Question{question(1, "A", 0)}})
	_ = svc.UpdateQuiz(ctx, id, models.QuizInput{Title: "from B", Questions: []models.Question{question(1, "B", 0)}})

	got, _ := svc.GetQuiz(ctx, id)
	if got.Title != "from B" || got.Questions[0].Question != "B" {
		t.Fatalf("expected second write to win, got %+v", got)
	}
}

func TestUpdateQuiz_UnknownID(t *testing.T) {
	svc, _, _, _ := newQuizService()
	err := svc.UpdateQuiz(context.Background(), "nope", models.QuizInput{Questions: []models.Question{question(1, "Q", 0)}})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSetPublished_ReturnsStoredValueAndEmitsEvent(t *testing.T) {
	svc, _, locker, events := newQuizService()
	fixed := time.Date(2025, 2, 2, 2, 2, 2, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ctx := middleware.WithSession(context.Background(), &models.Session{Email: "admin@example.com", Role: models.RoleAdmin})
	id, _ := svc.CreateQuiz(ctx, models.QuizInput{Questions: []models.Question{question(1, "Q", 0)}})

	published, err := svc.SetPublished(ctx, id, true)
	if err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if !published {
		t.Fatal("expected published=true")
	}
	if len(locker.held) != 0 {
		t.Fatal("lock must be released")
	}

	if len(events.messages) != 1 || events.channels[0] != models.QuizEventsChannel {
		t.Fatalf("expected one event on %s, got %v", models.QuizEventsChannel, events.channels)
	}
	msg := events.messages[0]
	payload, ok := msg.Payload.(models.QuizPublishChanged)
	if msg.Type != models.EventQuizPublishChanged || !ok {
		t.Fatalf("unexpected event: %+v", msg)
	}
	want := models.QuizPublishChanged{QuizID: id, Published: true, ChangedBy: "admin@example.com", ChangedAt: fixed}
	if payload != want {
		t.Fatalf("expected %+v, got %+v", want, payload)
	}

	// Idempotent: setting the same value again succeeds.
	published, err = svc.SetPublished(ctx, id, true)
	if err != nil || !published {
		t.Fatalf("expected idempotent publish, got %v, %v", published, err)
	}
}

func TestSetPublished_EventFailureDoesNotFailToggle(t *testing.T) {
	svc, _, _, events := newQuizService()
	events.err = errors.New("pubsub down")
	ctx := context.Background()
	id, _ := svc.CreateQuiz(ctx, models.QuizInput{Questions: []models.Question{question(1, "Q", 0)}})

	if published, err := svc.SetPublished(ctx, id, true); err != nil || !published {
		t.Fatalf("expected toggle to succeed, got %v, %v", published, err)
	}
}

func TestSetPublished_ConcurrentToggleConflicts(t *testing.T) {
	svc, store, _, _ := newQuizService()
	ctx := context.Background()
	id, _ := svc.CreateQuiz(ctx, models.QuizInput{Questions: []models.Question{question(1, "Q", 0)}})

	store.blockSetPublished = make(chan struct{})
	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.SetPublished(ctx, id, true)
	}()

	// Wait until the first toggle holds the lock.
	deadline := time.Now().Add(2 * time.Second)
	for {
		svc.locker.(*memLocker).mu.Lock()
		held := svc.locker.(*memLocker).held["publish_lock:"+id]
		svc.locker.(*memLocker).mu.Unlock()
		if held {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first toggle never acquired the lock")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := svc.SetPublished(ctx, id, false)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	close(store.blockSetPublished)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first toggle failed: %v", firstErr)
	}
	got, _ := svc.GetQuiz(ctx, id)
	if !got.Published {
		t.Fatal("first toggle's value should be stored")
	}
}

func TestSetPublished_Errors(t *testing.T) {
	svc, _, locker, _ := newQuizService()
	ctx := context.Background()

	var nf *NotFoundError
	if _, err := svc.SetPublished(ctx, "missing", true); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	var verr *ValidationError
	if _, err := svc.SetPublished(ctx, " ", true); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	locker.err = errStoreDown
	var perr *PersistenceError
	if _, err := svc.SetPublished(ctx, "any", true); !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}

func TestListQuizzes_NewestFirst(t *testing.T) {
	svc, _, _, _ := newQuizService()
	ctx := context.Background()

	for i, title := range []string{"first", "second", "third"} {
		created := time.Date(2025, 1, i+1, 0, 0, 0, 0, time.UTC)
		qs := make([]models.Question, i+1)
		for j := range qs {
			qs[j] = question(j+1, "Q", 0)
		}
		if _, err := svc.CreateQuiz(ctx, models.QuizInput{Title: title, Questions: qs, CreatedAt: &created}); err != nil {
			t.Fatalf("CreateQuiz: %v", err)
		}
	}

	list, err := svc.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 quizzes, got %d", len(list))
	}
	if list[0].Title != "third" || list[2].Title != "first" {
		t.Fatalf("expected newest first, got %q..%q", list[0].Title, list[2].Title)
	}
	if list[0].QuestionCount != 3 {
		t.Fatalf("expected question count 3, got %d", list[0].QuestionCount)
	}
}

func TestStoreFailureIsPersistenceError(t *testing.T) {
	svc, store, _, _ := newQuizService()
	store.err = errStoreDown

	_, err := svc.ListQuizzes(context.Background())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Fatal("PersistenceError should unwrap to the store error")
	}
}
