package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jobtracker-backend/internal/delivery/http/middleware"
	"go-jobtracker-backend/internal/delivery/http/response"
	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"
	"go-jobtracker-backend/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubAuthUC resolves every user id to a fixed user, or fails when user is nil.
type stubAuthUC struct {
	user *domain.User
}

func (s *stubAuthUC) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	return nil, apperror.BadRequest("not implemented")
}
func (s *stubAuthUC) Login(ctx context.Context, email, password string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	return nil, apperror.BadRequest("not implemented")
}
func (s *stubAuthUC) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if s.user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return s.user, nil
}
func (s *stubAuthUC) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	return nil, apperror.BadRequest("not implemented")
}
func (s *stubAuthUC) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmPassword string) error {
	return apperror.BadRequest("not implemented")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := token.NewManager("test-secret", time.Hour)
	user := &domain.User{ID: "u1", Email: "a@b.com"}

	newRouter := func(uc domain.AuthUsecase) *gin.Engine {
		r := gin.New()
		r.Use(middleware.AuthMiddleware(tokens, uc))
		r.GET("/me", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(string(domain.KeyUserID)))
		})
		return r
	}

	t.Run("Should pass a valid token and set the user id", func(t *testing.T) {
		signed, err := tokens.Issue("u1")
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		newRouter(&stubAuthUC{user: user}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", w.Body.String())
	})

	t.Run("Should reject a missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		newRouter(&stubAuthUC{user: user}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject a tampered token", func(t *testing.T) {
		other := token.NewManager("other-secret", time.Hour)
		signed, err := other.Issue("u1")
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		newRouter(&stubAuthUC{user: user}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject a token for a deleted account", func(t *testing.T) {
		signed, err := tokens.Issue("ghost")
		assert.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		newRouter(&stubAuthUC{user: nil}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestErrorHandler(t *testing.T) {
	newRouter := func(h gin.HandlerFunc) *gin.Engine {
		r := gin.New()
		r.Use(middleware.ErrorHandler())
		r.GET("/boom", h)
		return r
	}

	t.Run("Should render AppError with its status and message", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {
			c.Error(apperror.Forbidden("Not authorized to access this application"))
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)

		var body response.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Not authorized to access this application", body.Message)
	})

	t.Run("Should hide unexpected errors behind a generic message", func(t *testing.T) {
		r := newRouter(func(c *gin.Context) {
			c.Error(assert.AnError)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body response.Response
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotContains(t, body.Message, assert.AnError.Error())
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID)))
	})
	r.GET("/ctx", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(domain.KeyRequestID).(string)
		c.String(http.StatusOK, id)
	})

	t.Run("Should assign an id when none is supplied", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
	})

	t.Run("Should keep an inbound id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "trace-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "trace-123", w.Body.String())
	})

	t.Run("Should carry the id on the request context", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
		req.Header.Set("X-Request-ID", "trace-456")
		r.ServeHTTP(w, req)

		assert.Equal(t, "trace-456", w.Body.String())
	})
}
