package domain

import (
	"context"
	"time"
)

// User is an account that owns application records. Optional profile fields
// are stored as empty strings; AvatarPath/ResumePath empty means no file
// attached.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	LinkedIn     string    `json:"linkedin,omitempty"`
	GitHub       string    `json:"github,omitempty"`
	AvatarPath   string    `json:"avatarPath,omitempty"`
	ResumePath   string    `json:"resumePath,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial update of the mutable profile fields. Nil means
// "leave unchanged". Email, password and file paths have their own flows.
type ProfileUpdate struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	Bio      *string `json:"bio"`
	LinkedIn *string `json:"linkedin"`
	GitHub   *string `json:"github"`
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RequestMeta carries transport-level details into the usecase for audit
// logging and login tracking.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type AuthUsecase interface {
	Register(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string, meta RequestMeta) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error
}
