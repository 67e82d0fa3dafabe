package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/models"
)

const publishLockTTL = 30 * time.Second

// QuizStore is implemented by repository.QuizRepo and mongostore.QuizStore.
type QuizStore interface {
	Create(ctx context.Context, q *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	Update(ctx context.Context, id string, title string, questions []models.Question, published *bool) error
	SetPublished(ctx context.Context, id string, published bool) (bool, error)
	List(ctx context.Context) ([]models.QuizSummary, error)
}

type QuizService struct {
	store  QuizStore
	locker Locker
	events EventPublisher
	log    *logger.Logger
	now    func() time.Time
}

func NewQuizService(store QuizStore, locker Locker, events EventPublisher, log *logger.Logger) *QuizService {
	return &QuizService{
		store:  store,
		locker: locker,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

func (s *QuizService) CreateQuiz(ctx context.Context, in models.QuizInput) (string, error) {
	if err := validateQuizInput(in); err != nil {
		return "", err
	}

	q := &models.Quiz{
		Title:     normalizeTitle(in.Title),
		Questions: models.CloneQuestions(in.Questions),
	}
	if in.CreatedAt != nil {
		q.CreatedAt = in.CreatedAt.UTC()
	}

	if err := s.store.Create(ctx, q); err != nil {
		return "", storeError(s.log, "create quiz", "Quiz not found", err)
	}

	s.log.Info("quiz created", "quiz_id", q.ID, "questions", len(q.Questions))
	return q.ID, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(s.log, "get quiz", "Quiz not found", err)
	}
	return q, nil
}

// UpdateQuiz replaces title and questions. A nil in.Published keeps the stored
// flag; last write wins.
func (s *QuizService) UpdateQuiz(ctx context.Context, id string, in models.QuizInput) error {
	if err := validateQuizInput(in); err != nil {
		return err
	}

	err := s.store.Update(ctx, id, normalizeTitle(in.Title), models.CloneQuestions(in.Questions), in.Published)
	if err != nil {
		return storeError(s.log, "update quiz", "Quiz not found", err)
	}
	return nil
}

// SetPublished returns the flag as read back from the store. Only one toggle
// per quiz may be in flight; a concurrent one gets a ConflictError.
func (s *QuizService) SetPublished(ctx context.Context, id string, publish bool) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, &ValidationError{Fields: map[string]string{"id": "is required"}}
	}

	release, ok, err := s.locker.Acquire(ctx, "publish_lock:"+id, publishLockTTL)
	if err != nil {
		s.log.Error("failed to acquire publish lock", "quiz_id", id, "error", err)
		return false, &PersistenceError{Op: "acquire publish lock", Err: err}
	}
	if !ok {
		return false, &ConflictError{Message: "A publish change for this quiz is already in progress"}
	}
	defer release()

	published, err := s.store.SetPublished(ctx, id, publish)
	if err != nil {
		return false, storeError(s.log, "set published", "Quiz not found", err)
	}

	changedBy := ""
	if session := middleware.GetSession(ctx); session != nil {
		changedBy = session.Email
	}
	event := models.WSMessage{
		Type: models.EventQuizPublishChanged,
		Payload: models.QuizPublishChanged{
			QuizID:    id,
			Published: published,
			ChangedBy: changedBy,
			ChangedAt: s.now().UTC(),
		},
	}
	if err := s.events.Publish(ctx, models.QuizEventsChannel, event); err != nil {
		s.log.Warn("failed to publish quiz event", "quiz_id", id, "error", err)
	}

	s.log.Info("quiz publish state changed", "quiz_id", id, "published", published, "changed_by", changedBy)
	return published, nil
}

// ListQuizzes is ordered newest first.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]models.QuizSummary, error) {
	quizzes, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError(s.log, "list quizzes", "Quiz not found", err)
	}
	if quizzes == nil {
		quizzes = []models.QuizSummary{}
	}
	return quizzes, nil
}

func validateQuizInput(in models.QuizInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}

	seen := make(map[int]bool, len(in.Questions))
	for i, q := range in.Questions {
		if seen[q.ID] {
			return &ValidationError{Fields: map[string]string{
				fmt.Sprintf("questions[%d].id", i): "must be unique within the quiz",
			}}
		}
		seen[q.ID] = true
	}
	return nil
}

// normalizeTitle only substitutes the default for a blank title; anything else
// is stored exactly as sent.
func normalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return models.DefaultQuizTitle
	}
	return title
}
