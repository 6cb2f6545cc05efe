package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"
	"go-jobtracker-backend/pkg/logger"
	"go-jobtracker-backend/pkg/storage"

	"github.com/xuri/excelize/v2"
)

const notOwnerMsg = "Not authorized to access this application"

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	files           storage.FileStore
}

// NewApplicationUsecase creates a new application usecase. The file store is
// needed so deleting a record can cascade to its attachments.
func NewApplicationUsecase(appRepo domain.ApplicationRepository, files storage.FileStore) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		files:           files,
	}
}

// getOwned resolves a record and applies the ownership guard. Resolution
// failure is "not found"; a foreign record is "not authorized" - callers rely
// on the two being distinguishable.
func (uc *applicationUsecase) getOwned(ctx context.Context, userID string, id int64) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}
	if !app.OwnedBy(userID) {
		return nil, apperror.Forbidden(notOwnerMsg)
	}
	return app, nil
}

func (uc *applicationUsecase) Create(ctx context.Context, userID string, app *domain.Application) (*domain.Application, error) {
	app.Company = strings.TrimSpace(app.Company)
	app.Position = strings.TrimSpace(app.Position)

	if app.Company == "" || app.Position == "" {
		return nil, apperror.BadRequest("Company and position are required")
	}
	if app.Status != "" && !domain.ValidStatus(app.Status) {
		return nil, apperror.BadRequest("Invalid status. Must be: Applied, Interview, Rejected, Offer or Accepted")
	}
	if app.Salary != nil && *app.Salary < 0 {
		return nil, apperror.BadRequest("Salary cannot be negative")
	}

	// Ownership comes from the authenticated caller, never from the payload
	app.UserID = userID
	app.ID = 0
	app.ResumePath = ""
	app.CoverLetterPath = ""

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		return nil, apperror.Internal(err)
	}
	return app, nil
}

func (uc *applicationUsecase) List(ctx context.Context, userID string) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	// An empty account gets an empty array in the response, not a missing field
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

func (uc *applicationUsecase) Get(ctx context.Context, userID string, id int64) (*domain.Application, error) {
	return uc.getOwned(ctx, userID, id)
}

// Update applies a partial merge of the provided fields and re-validates.
// The owner is immutable: ApplicationUpdate has no user field at all.
func (uc *applicationUsecase) Update(ctx context.Context, userID string, id int64, update domain.ApplicationUpdate) (*domain.Application, error) {
	app, err := uc.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Company != nil {
		app.Company = strings.TrimSpace(*update.Company)
	}
	if update.Position != nil {
		app.Position = strings.TrimSpace(*update.Position)
	}
	if update.JobLink != nil {
		app.JobLink = *update.JobLink
	}
	if update.Status != nil {
		app.Status = *update.Status
	}
	if update.AppliedDate != nil {
		app.AppliedDate = *update.AppliedDate
	}
	if update.Notes != nil {
		app.Notes = *update.Notes
	}
	if update.Salary != nil {
		app.Salary = update.Salary
	}
	if update.ContactName != nil {
		app.ContactName = *update.ContactName
	}
	if update.ContactEmail != nil {
		app.ContactEmail = *update.ContactEmail
	}
	if update.ContactPhone != nil {
		app.ContactPhone = *update.ContactPhone
	}
	if update.InterviewDate != nil {
		app.InterviewDate = update.InterviewDate
	}
	if update.FollowUpDate != nil {
		app.FollowUpDate = update.FollowUpDate
	}

	if app.Company == "" || app.Position == "" {
		return nil, apperror.BadRequest("Company and position are required")
	}
	if !domain.ValidStatus(app.Status) {
		return nil, apperror.BadRequest("Invalid status. Must be: Applied, Interview, Rejected, Offer or Accepted")
	}
	if app.Salary != nil && *app.Salary < 0 {
		return nil, apperror.BadRequest("Salary cannot be negative")
	}

	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		return nil, apperror.Internal(err)
	}
	return app, nil
}

// Delete removes the record and both of its attachments. File cleanup is
// best-effort: a failed remove is logged, the record delete still proceeds.
func (uc *applicationUsecase) Delete(ctx context.Context, userID string, id int64) error {
	app, err := uc.getOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	for _, path := range []string{app.ResumePath, app.CoverLetterPath} {
		if path == "" {
			continue
		}
		if err := uc.files.Delete(ctx, path); err != nil && !errors.Is(err, storage.ErrNotExist) {
			logger.Log.Warn("failed to delete attachment during record delete",
				"path", path, "error", err)
		}
	}

	if err := uc.applicationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Application not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

// Stats returns the caller's group-by-status counts and the total.
func (uc *applicationUsecase) Stats(ctx context.Context, userID string) (*domain.ApplicationStats, error) {
	counts, err := uc.applicationRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	total := 0
	for _, sc := range counts {
		total += sc.Count
	}

	return &domain.ApplicationStats{Stats: counts, Total: total}, nil
}

// Export renders the caller's applications as an xlsx workbook.
func (uc *applicationUsecase) Export(ctx context.Context, userID string) ([]byte, error) {
	apps, err := uc.applicationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applications"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Company", "Position", "Status", "Applied Date", "Job Link", "Salary", "Contact", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, app := range apps {
		values := []interface{}{
			app.Company,
			app.Position,
			app.Status,
			app.AppliedDate.Format("2006-01-02"),
			app.JobLink,
			"",
			app.ContactName,
			app.Notes,
		}
		if app.Salary != nil {
			values[5] = *app.Salary
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(fmt.Errorf("write xlsx: %w", err))
	}
	return buf.Bytes(), nil
}
