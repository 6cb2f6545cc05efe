package usecase_test

import (
	"context"
	"testing"
	"time"

	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/internal/usecase"
	"go-jobtracker-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestApplicationCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should default status and applied date", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Application")).Return(nil)

		app, err := uc.Create(ctx, "u1", &domain.Application{Company: "Acme", Position: "Engineer"})
		assert.NoError(t, err)
		assert.Equal(t, "u1", app.UserID)
	})

	t.Run("Should force ownership from the caller", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Application")).Return(nil).Run(func(args mock.Arguments) {
			a := args.Get(1).(*domain.Application)
			assert.Equal(t, "u1", a.UserID)
		})

		_, err := uc.Create(ctx, "u1", &domain.Application{
			UserID:   "hacker_try",
			Company:  "Acme",
			Position: "Engineer",
		})
		assert.NoError(t, err)
	})

	t.Run("Should reject missing company or position", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		_, err := uc.Create(ctx, "u1", &domain.Application{Company: "  ", Position: "Engineer"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Company and position are required")
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an unknown status", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		_, err := uc.Create(ctx, "u1", &domain.Application{
			Company:  "Acme",
			Position: "Engineer",
			Status:   "Ghosted",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid status")
	})
}

func TestApplicationList(t *testing.T) {
	ctx := context.Background()

	t.Run("Should pass the caller's records through", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		records := []domain.Application{
			{ID: 2, UserID: "u1", Company: "Beta"},
			{ID: 1, UserID: "u1", Company: "Alpha"},
		}
		mockRepo.On("ListByUser", ctx, "u1").Return(records, nil)

		apps, err := uc.List(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, records, apps)
	})

	t.Run("Should return an empty array for an empty account", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("ListByUser", ctx, "u1").Return(nil, nil)

		apps, err := uc.List(ctx, "u1")
		assert.NoError(t, err)
		assert.NotNil(t, apps)
		assert.Empty(t, apps)
	})
}

func TestApplicationOwnership(t *testing.T) {
	ctx := context.Background()

	t.Run("Should answer 404 for a missing record", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := uc.Get(ctx, "u1", 99)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
		assert.Equal(t, "Application not found", appErr.Message)
	})

	t.Run("Should answer 403 for a foreign record", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("GetByID", ctx, int64(7)).Return(&domain.Application{ID: 7, UserID: "owner"}, nil)

		_, err := uc.Get(ctx, "intruder", 7)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 403, appErr.Code)
	})

	t.Run("Should guard update and delete the same way", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("GetByID", ctx, int64(7)).Return(&domain.Application{ID: 7, UserID: "owner"}, nil)

		newNotes := "notes"
		_, updErr := uc.Update(ctx, "intruder", 7, domain.ApplicationUpdate{Notes: &newNotes})
		delErr := uc.Delete(ctx, "intruder", 7)

		var appErr *apperror.AppError
		assert.ErrorAs(t, updErr, &appErr)
		assert.Equal(t, 403, appErr.Code)
		assert.ErrorAs(t, delErr, &appErr)
		assert.Equal(t, 403, appErr.Code)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestApplicationUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should merge only the provided fields", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		existing := &domain.Application{
			ID:       7,
			UserID:   "u1",
			Company:  "Acme",
			Position: "Engineer",
			Status:   domain.StatusApplied,
			Notes:    "initial",
		}
		mockRepo.On("GetByID", ctx, int64(7)).Return(existing, nil)
		mockRepo.On("Update", ctx, mock.AnythingOfType("*domain.Application")).Return(nil)

		newStatus := domain.StatusInterview
		updated, err := uc.Update(ctx, "u1", 7, domain.ApplicationUpdate{Status: &newStatus})
		assert.NoError(t, err)
		assert.Equal(t, domain.StatusInterview, updated.Status)
		assert.Equal(t, "Acme", updated.Company)
		assert.Equal(t, "initial", updated.Notes)
		assert.Equal(t, "u1", updated.UserID)
	})

	t.Run("Should re-validate merged fields", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		existing := &domain.Application{ID: 7, UserID: "u1", Company: "Acme", Position: "Engineer", Status: domain.StatusApplied}
		mockRepo.On("GetByID", ctx, int64(7)).Return(existing, nil)

		bad := "Ghosted"
		_, err := uc.Update(ctx, "u1", 7, domain.ApplicationUpdate{Status: &bad})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid status")
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestApplicationDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should remove both attachments with the record", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewApplicationUsecase(mockRepo, store)

		_ = store.Save(ctx, "resumes/u1-1.pdf", []byte("resume"))
		_ = store.Save(ctx, "cover-letters/u1-2.pdf", []byte("letter"))

		app := &domain.Application{
			ID:              7,
			UserID:          "u1",
			Company:         "Acme",
			Position:        "Engineer",
			ResumePath:      "resumes/u1-1.pdf",
			CoverLetterPath: "cover-letters/u1-2.pdf",
		}
		mockRepo.On("GetByID", ctx, int64(7)).Return(app, nil)
		mockRepo.On("Delete", ctx, int64(7)).Return(nil)

		err := uc.Delete(ctx, "u1", 7)
		assert.NoError(t, err)
		assert.Empty(t, store.paths())
		mockRepo.AssertExpectations(t)
	})
}

func TestApplicationStats(t *testing.T) {
	ctx := context.Background()

	t.Run("Should total all status buckets", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("CountByStatus", ctx, "u1").Return([]domain.StatusCount{
			{Status: domain.StatusApplied, Count: 2},
			{Status: domain.StatusInterview, Count: 1},
			{Status: domain.StatusOffer, Count: 1},
		}, nil)

		stats, err := uc.Stats(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, 4, stats.Total)
		assert.Len(t, stats.Stats, 3)
	})

	t.Run("Should report zero for an empty account", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("CountByStatus", ctx, "u1").Return([]domain.StatusCount{}, nil)

		stats, err := uc.Stats(ctx, "u1")
		assert.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
	})
}

func TestApplicationExport(t *testing.T) {
	ctx := context.Background()

	t.Run("Should produce an xlsx workbook", func(t *testing.T) {
		mockRepo := new(MockApplicationRepo)
		uc := usecase.NewApplicationUsecase(mockRepo, newMemStore())

		mockRepo.On("ListByUser", ctx, "u1").Return([]domain.Application{
			{Company: "Acme", Position: "Engineer", Status: domain.StatusApplied, AppliedDate: time.Now()},
		}, nil)

		data, err := uc.Export(ctx, "u1")
		assert.NoError(t, err)
		// xlsx files are ZIP containers
		assert.True(t, len(data) > 4)
		assert.Equal(t, []byte{0x50, 0x4B, 0x03, 0x04}, data[:4])
	})
}
