package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge-backend/internal/models"
)

// QuizRepo keeps each quiz as one row whose questions live in a JSONB document.
type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	id := uuid.New()
	questionsBytes, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO quizzes (id, title, questions, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5) RETURNING updated_at`

	if err := r.pool.QueryRow(ctx, query,
		id, q.Title, questionsBytes, q.Published, q.CreatedAt,
	).Scan(&q.UpdatedAt); err != nil {
		return err
	}
	q.ID = id.String()
	return nil
}

func (r *QuizRepo) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	quizID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		q         models.Quiz
		questions []byte
	)
	query := `SELECT id, title, questions, published, created_at, updated_at
		FROM quizzes WHERE id = $1`

	var scannedID uuid.UUID
	err = r.pool.QueryRow(ctx, query, quizID).Scan(
		&scannedID, &q.Title, &questions, &q.Published, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions for quiz %s: %w", id, err)
	}
	q.ID = scannedID.String()
	return &q, nil
}

// Update overwrites title and questions. A nil published keeps the stored flag.
func (r *QuizRepo) Update(ctx context.Context, id string, title string, questions []models.Question, published *bool) error {
	quizID, err := parseID(id)
	if err != nil {
		return err
	}
	questionsBytes, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET title = $1, questions = $2, published = COALESCE($3, published), updated_at = NOW()
		 WHERE id = $4`,
		title, questionsBytes, published, quizID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished returns the flag as stored after the write.
func (r *QuizRepo) SetPublished(ctx context.Context, id string, published bool) (bool, error) {
	quizID, err := parseID(id)
	if err != nil {
		return false, err
	}

	var stored bool
	err = r.pool.QueryRow(ctx,
		"UPDATE quizzes SET published = $1, updated_at = NOW() WHERE id = $2 RETURNING published",
		published, quizID,
	).Scan(&stored)
	if err != nil {
		return false, translate(err)
	}
	return stored, nil
}

func (r *QuizRepo) List(ctx context.Context) ([]models.QuizSummary, error) {
	query := `SELECT id, title, jsonb_array_length(questions), created_at, published
		FROM quizzes ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := []models.QuizSummary{}
	for rows.Next() {
		var (
			s  models.QuizSummary
			id uuid.UUID
		)
		if err := rows.Scan(&id, &s.Title, &s.QuestionCount, &s.CreatedAt, &s.Published); err != nil {
			return nil, err
		}
		s.ID = id.String()
		quizzes = append(quizzes, s)
	}
	return quizzes, rows.Err()
}
