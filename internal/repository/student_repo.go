package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge-backend/internal/models"
)

type StudentRepo struct {
	pool *pgxpool.Pool
}

func NewStudentRepo(pool *pgxpool.Pool) *StudentRepo {
	return &StudentRepo{pool: pool}
}

// GetByEmail returns (nil, nil) when the user has never saved a profile.
func (r *StudentRepo) GetByEmail(ctx context.Context, email string) (*models.StudentProfile, error) {
	p := &models.StudentProfile{}
	query := `SELECT email, name, roll_number, university, program, current_year, graduation_year, updated_at
		FROM student_profiles WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.Email, &p.Name, &p.RollNumber, &p.University, &p.Program,
		&p.CurrentYear, &p.GraduationYear, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *StudentRepo) Upsert(ctx context.Context, email string, f models.StudentProfileFields) error {
	query := `
		INSERT INTO student_profiles (email, name, roll_number, university, program, current_year, graduation_year, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			roll_number = EXCLUDED.roll_number,
			university = EXCLUDED.university,
			program = EXCLUDED.program,
			current_year = EXCLUDED.current_year,
			graduation_year = EXCLUDED.graduation_year,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		email, f.Name, f.RollNumber, f.University, f.Program, f.CurrentYear, f.GraduationYear,
	)
	return err
}
