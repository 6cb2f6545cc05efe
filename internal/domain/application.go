package domain

import (
	"context"
	"time"
)

// Application status values. The default for new records is Applied.
const (
	StatusApplied   = "Applied"
	StatusInterview = "Interview"
	StatusRejected  = "Rejected"
	StatusOffer     = "Offer"
	StatusAccepted  = "Accepted"
)

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusInterview, StatusRejected, StatusOffer, StatusAccepted:
		return true
	}
	return false
}

// Application is one tracked job application, owned by exactly one user.
// ResumePath/CoverLetterPath empty means no file attached.
type Application struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	Company         string     `json:"company"`
	Position        string     `json:"position"`
	JobLink         string     `json:"jobLink,omitempty"`
	Status          string     `json:"status"`
	AppliedDate     time.Time  `json:"appliedDate"`
	Notes           string     `json:"notes,omitempty"`
	Salary          *float64   `json:"salary,omitempty"`
	ResumePath      string     `json:"resumePath,omitempty"`
	CoverLetterPath string     `json:"coverLetterPath,omitempty"`
	ContactName     string     `json:"contactName,omitempty"`
	ContactEmail    string     `json:"contactEmail,omitempty"`
	ContactPhone    string     `json:"contactPhone,omitempty"`
	InterviewDate   *time.Time `json:"interviewDate,omitempty"`
	FollowUpDate    *time.Time `json:"followUpDate,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OwnedBy reports whether the record belongs to the given user. Every
// record-scoped operation checks this after a successful fetch.
func (a *Application) OwnedBy(userID string) bool {
	return a.UserID == userID
}

// ApplicationUpdate is a partial update; nil fields are left unchanged.
// UserID is deliberately absent: ownership never changes.
type ApplicationUpdate struct {
	Company       *string    `json:"company"`
	Position      *string    `json:"position"`
	JobLink       *string    `json:"jobLink"`
	Status        *string    `json:"status"`
	AppliedDate   *time.Time `json:"appliedDate"`
	Notes         *string    `json:"notes"`
	Salary        *float64   `json:"salary"`
	ContactName   *string    `json:"contactName"`
	ContactEmail  *string    `json:"contactEmail"`
	ContactPhone  *string    `json:"contactPhone"`
	InterviewDate *time.Time `json:"interviewDate"`
	FollowUpDate  *time.Time `json:"followUpDate"`
}

// StatusCount is one bucket of the stats aggregation.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ApplicationStats is the per-user group-by-status summary.
type ApplicationStats struct {
	Stats []StatusCount `json:"stats"`
	Total int           `json:"total"`
}

// ApplicationRepository defines data access for application records.
type ApplicationRepository interface {
	Create(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id int64) (*Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	Update(ctx context.Context, app *Application) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context, userID string) ([]StatusCount, error)
}

// ApplicationUsecase defines business logic for application records.
type ApplicationUsecase interface {
	Create(ctx context.Context, userID string, app *Application) (*Application, error)
	List(ctx context.Context, userID string) ([]Application, error)
	Get(ctx context.Context, userID string, id int64) (*Application, error)
	Update(ctx context.Context, userID string, id int64, update ApplicationUpdate) (*Application, error)
	Delete(ctx context.Context, userID string, id int64) error
	Stats(ctx context.Context, userID string) (*ApplicationStats, error)
	Export(ctx context.Context, userID string) ([]byte, error)
}
