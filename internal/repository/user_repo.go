package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizforge-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, google_sub, email, name, image, role, created_at, last_login_at`

// UpsertIdentity creates the user on first sign-in with role "user" and refreshes
// profile fields afterwards. The role column is never written here, so an
// out-of-band elevation to "admin" survives every later login.
func (r *UserRepo) UpsertIdentity(ctx context.Context, id models.Identity) (*models.User, error) {
	query := `
		INSERT INTO users (id, google_sub, email, name, image, role, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (email) DO UPDATE SET
			google_sub = EXCLUDED.google_sub,
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			last_login_at = NOW()
		RETURNING ` + userColumns

	u := &models.User{}
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), id.Subject, id.Email, id.Name, id.Image, models.RoleUser,
	).Scan(&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.Image, &u.Role, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	u := &models.User{}
	err = r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID).Scan(
		&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.Image, &u.Role, &u.CreatedAt, &u.LastLoginAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}
