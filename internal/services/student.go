package services

import (
	"context"
	"strings"

	"quizforge-backend/internal/logger"
	"quizforge-backend/internal/models"
)

// StudentStore is implemented by repository.StudentRepo and mongostore.StudentStore.
// GetByEmail returns (nil, nil) when no profile exists.
type StudentStore interface {
	GetByEmail(ctx context.Context, email string) (*models.StudentProfile, error)
	Upsert(ctx context.Context, email string, f models.StudentProfileFields) error
}

type StudentService struct {
	store StudentStore
	log   *logger.Logger
}

func NewStudentService(store StudentStore, log *logger.Logger) *StudentService {
	return &StudentService{store: store, log: log}
}

func (s *StudentService) GetProfile(ctx context.Context, email string) (*models.StudentProfile, error) {
	if email == "" {
		return nil, &UnauthorizedError{Message: "Session has no email"}
	}
	p, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(s.log, "get student profile", "Profile not found", err)
	}
	return p, nil
}

// UpsertProfile writes the profile keyed by email; the email itself is never
// taken from the payload.
func (s *StudentService) UpsertProfile(ctx context.Context, email string, f models.StudentProfileFields) error {
	if email == "" {
		return &UnauthorizedError{Message: "Session has no email"}
	}

	f = models.StudentProfileFields{
		Name:           strings.TrimSpace(f.Name),
		RollNumber:     strings.TrimSpace(f.RollNumber),
		University:     strings.TrimSpace(f.University),
		Program:        strings.TrimSpace(f.Program),
		CurrentYear:    strings.TrimSpace(f.CurrentYear),
		GraduationYear: strings.TrimSpace(f.GraduationYear),
	}
	if err := validateStruct(f); err != nil {
		return err
	}

	if err := s.store.Upsert(ctx, email, f); err != nil {
		return storeError(s.log, "upsert student profile", "Profile not found", err)
	}
	return nil
}
