package postgres

import (
	"context"
	"errors"
	"time"

	"go-jobtracker-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type userRepo struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, name, email, password_hash, phone, location, bio,
	linkedin, github, avatar_path, resume_path, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Location,
		&u.Bio, &u.LinkedIn, &u.GitHub, &u.AvatarPath, &u.ResumePath,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. A unique-violation on email is reported as
// domain.ErrDuplicateEmail so the usecase can answer "user exists".
func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, phone, location, bio,
			linkedin, github, avatar_path, resume_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Phone,
		user.Location, user.Bio, user.LinkedIn, user.GitHub,
		user.AvatarPath, user.ResumePath, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// Update persists all mutable fields and bumps updated_at.
func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, password_hash = $3, phone = $4, location = $5, bio = $6,
			linkedin = $7, github = $8, avatar_path = $9, resume_path = $10,
			updated_at = $11
		WHERE id = $1`

	user.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.PasswordHash, user.Phone, user.Location,
		user.Bio, user.LinkedIn, user.GitHub, user.AvatarPath,
		user.ResumePath, user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
