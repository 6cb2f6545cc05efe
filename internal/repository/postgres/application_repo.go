package postgres

import (
	"context"
	"errors"
	"time"

	"go-jobtracker-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type applicationRepo struct {
	db DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db DB) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationColumns = `id, user_id, company, position, job_link, status,
	applied_date, notes, salary, resume_path, cover_letter_path,
	contact_name, contact_email, contact_phone, interview_date, follow_up_date,
	created_at, updated_at`

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.Position, &a.JobLink, &a.Status,
		&a.AppliedDate, &a.Notes, &a.Salary, &a.ResumePath, &a.CoverLetterPath,
		&a.ContactName, &a.ContactEmail, &a.ContactPhone,
		&a.InterviewDate, &a.FollowUpDate, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new application record
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (user_id, company, position, job_link, status,
			applied_date, notes, salary, resume_path, cover_letter_path,
			contact_name, contact_email, contact_phone, interview_date,
			follow_up_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = domain.StatusApplied
	}
	if app.AppliedDate.IsZero() {
		app.AppliedDate = now
	}

	return r.db.QueryRow(ctx, query,
		app.UserID, app.Company, app.Position, app.JobLink, app.Status,
		app.AppliedDate, app.Notes, app.Salary, app.ResumePath,
		app.CoverLetterPath, app.ContactName, app.ContactEmail,
		app.ContactPhone, app.InterviewDate, app.FollowUpDate,
		app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
}

// GetByID retrieves an application by ID
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRow(ctx, query, id))
}

// ListByUser retrieves all applications owned by userID, newest applied first
func (r *applicationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications
		WHERE user_id = $1
		ORDER BY applied_date DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *app)
	}
	return applications, rows.Err()
}

// Update persists all mutable fields and bumps updated_at. user_id is
// deliberately not part of the SET list.
func (r *applicationRepo) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET company = $2, position = $3, job_link = $4, status = $5,
			applied_date = $6, notes = $7, salary = $8, resume_path = $9,
			cover_letter_path = $10, contact_name = $11, contact_email = $12,
			contact_phone = $13, interview_date = $14, follow_up_date = $15,
			updated_at = $16
		WHERE id = $1`

	app.UpdatedAt = time.Now()

	result, err := r.db.Exec(ctx, query,
		app.ID, app.Company, app.Position, app.JobLink, app.Status,
		app.AppliedDate, app.Notes, app.Salary, app.ResumePath,
		app.CoverLetterPath, app.ContactName, app.ContactEmail,
		app.ContactPhone, app.InterviewDate, app.FollowUpDate, app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the record
func (r *applicationRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByStatus groups the user's applications by status
func (r *applicationRepo) CountByStatus(ctx context.Context, userID string) ([]domain.StatusCount, error) {
	query := `
		SELECT status, COUNT(*)
		FROM applications
		WHERE user_id = $1
		GROUP BY status`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.StatusCount
	for rows.Next() {
		var sc domain.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
