package usecase

import (
	"context"
	"errors"
	"strings"

	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"
	"go-jobtracker-backend/pkg/audit"
	"go-jobtracker-backend/pkg/security"
	"go-jobtracker-backend/pkg/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentialsMsg is deliberately identical for "email not found" and
// "wrong password" so login failures never reveal which field was wrong.
const invalidCredentialsMsg = "Invalid credentials. Please check your email and password."

const minPasswordLen = 6

type authUsecase struct {
	userRepo     domain.UserRepository
	tokens       *token.Manager
	loginTracker *security.LoginTracker
	bcryptCost   int
}

// NewAuthUsecase creates the auth usecase. loginTracker may be nil when
// Redis-backed tracking is not configured.
func NewAuthUsecase(userRepo domain.UserRepository, tokens *token.Manager, loginTracker *security.LoginTracker, bcryptCost int) domain.AuthUsecase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authUsecase{
		userRepo:     userRepo,
		tokens:       tokens,
		loginTracker: loginTracker,
		bcryptCost:   bcryptCost,
	}
}

func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" || email == "" || password == "" {
		return nil, apperror.BadRequest("Please provide all required fields")
	}
	if len(password) < minPasswordLen {
		return nil, apperror.BadRequest("Password must be at least 6 characters")
	}

	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.BadRequest("User already exists. Please login.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		// The unique index may still fire under a concurrent register
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperror.BadRequest("User already exists. Please login.")
		}
		return nil, apperror.Internal(err)
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.AuthResult{Token: signed, User: user}, nil
}

func (u *authUsecase) Login(ctx context.Context, email, password string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" || password == "" {
		return nil, apperror.BadRequest("Please provide all required fields")
	}

	if u.loginTracker != nil {
		blocked, err := u.loginTracker.IsBlocked(ctx, email, meta.IP)
		if err == nil && blocked {
			audit.Default().LogLoginBlocked(ctx, email, meta.IP, meta.UserAgent, meta.RequestID)
			return nil, apperror.Unauthorized("Too many failed attempts. Please try again later.")
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			u.recordFailedLogin(ctx, email, meta)
			return nil, apperror.Unauthorized(invalidCredentialsMsg)
		}
		return nil, apperror.Internal(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		u.recordFailedLogin(ctx, email, meta)
		return nil, apperror.Unauthorized(invalidCredentialsMsg)
	}

	if u.loginTracker != nil {
		_ = u.loginTracker.ClearAttempts(ctx, email, meta.IP)
	}

	signed, err := u.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &domain.AuthResult{Token: signed, User: user}, nil
}

// recordFailedLogin is best-effort: tracking problems never change the
// login response.
func (u *authUsecase) recordFailedLogin(ctx context.Context, email string, meta domain.RequestMeta) {
	if u.loginTracker == nil {
		return
	}
	_, _, _ = u.loginTracker.RecordFailedAttempt(ctx, email, meta.IP, meta.UserAgent, meta.RequestID)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

// UpdateProfile merges the provided fields onto the stored profile. Nil
// fields are untouched; email and password are not reachable from here.
func (u *authUsecase) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := u.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apperror.BadRequest("Name cannot be empty")
		}
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.LinkedIn != nil {
		user.LinkedIn = *update.LinkedIn
	}
	if update.GitHub != nil {
		user.GitHub = *update.GitHub
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error {
	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return apperror.BadRequest("Please provide all required fields")
	}
	if newPassword != confirmPassword {
		return apperror.BadRequest("New password and confirmation do not match")
	}
	if len(newPassword) < minPasswordLen {
		return apperror.BadRequest("Password must be at least 6 characters")
	}

	user, err := u.GetCurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return apperror.Unauthorized("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.bcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}
	user.PasswordHash = string(hash)

	if err := u.userRepo.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
