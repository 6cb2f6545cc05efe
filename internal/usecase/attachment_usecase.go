package usecase

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"
	"go-jobtracker-backend/pkg/audit"
	"go-jobtracker-backend/pkg/imaging"
	"go-jobtracker-backend/pkg/logger"
	"go-jobtracker-backend/pkg/security"
	"go-jobtracker-backend/pkg/storage"
)

const (
	avatarMaxDimension = 512
	avatarJPEGQuality  = 80
)

type attachmentUsecase struct {
	userRepo        domain.UserRepository
	applicationRepo domain.ApplicationRepository
	files           storage.FileStore
	maxUploadBytes  int64
}

// NewAttachmentUsecase creates the attachment manager.
func NewAttachmentUsecase(
	userRepo domain.UserRepository,
	applicationRepo domain.ApplicationRepository,
	files storage.FileStore,
	maxUploadBytes int64,
) domain.AttachmentUsecase {
	return &attachmentUsecase{
		userRepo:        userRepo,
		applicationRepo: applicationRepo,
		files:           files,
		maxUploadBytes:  maxUploadBytes,
	}
}

func classFor(kind domain.FileKind) security.FileClass {
	if kind == domain.FileKindAvatar {
		return security.ClassImage
	}
	return security.ClassDocument
}

// validate runs the size cap and the content allow-list before anything is
// written. A rejected upload must leave storage and the database untouched.
func (uc *attachmentUsecase) validate(ctx context.Context, userID string, kind domain.FileKind, upload domain.FileUpload) error {
	if upload.Size == 0 || len(upload.Data) == 0 {
		return apperror.BadRequest("No file uploaded")
	}
	if upload.Size > uc.maxUploadBytes || int64(len(upload.Data)) > uc.maxUploadBytes {
		reason := fmt.Sprintf("file exceeds %dMB limit", uc.maxUploadBytes>>20)
		audit.Default().LogUploadRejected(ctx, userID, requestID(ctx), reason)
		return apperror.BadRequest(fmt.Sprintf("File too large. Maximum size is %dMB", uc.maxUploadBytes>>20))
	}

	result := security.ValidateFile(classFor(kind), upload.Filename, upload.Data)
	if !result.Valid {
		audit.Default().LogUploadRejected(ctx, userID, requestID(ctx), result.Error)
		return apperror.BadRequest("Invalid file type: " + result.Error)
	}
	return nil
}

// store writes the upload under the kind's directory with a collision-proof
// generated name and returns the relative path. Avatars are recompressed to
// a bounded JPEG first.
func (uc *attachmentUsecase) store(ctx context.Context, ownerID string, kind domain.FileKind, upload domain.FileUpload) (string, error) {
	data := upload.Data
	ext := strings.ToLower(filepath.Ext(upload.Filename))

	if kind == domain.FileKindAvatar {
		compressed, err := imaging.Compress(data, avatarMaxDimension, avatarJPEGQuality)
		if err != nil {
			return "", apperror.BadRequest("Could not process image: " + err.Error())
		}
		data = compressed
		ext = ".jpg"
	}

	name := fmt.Sprintf("%s-%d%s", ownerID, time.Now().UnixNano(), ext)
	relPath := kind.Dir() + "/" + name

	if err := uc.files.Save(ctx, relPath, data); err != nil {
		return "", apperror.Internal(fmt.Errorf("save attachment: %w", err))
	}
	return relPath, nil
}

// removeStored is best-effort cleanup of a file that is no longer referenced.
func (uc *attachmentUsecase) removeStored(ctx context.Context, relPath string) {
	if relPath == "" {
		return
	}
	if err := uc.files.Delete(ctx, relPath); err != nil && !errors.Is(err, storage.ErrNotExist) {
		logger.Log.Warn("failed to remove stored attachment", "path", relPath, "error", err)
	}
}

func (uc *attachmentUsecase) getOwnedApplication(ctx context.Context, userID string, appID int64) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, appID)
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

// UploadApplicationFile attaches a resume or cover letter to a record,
// replacing any previous file of that kind. Order matters: validate, write
// the new file, persist the reference, then drop the old file. If persisting
// fails the new file is the orphan and gets cleaned up.
func (uc *attachmentUsecase) UploadApplicationFile(ctx context.Context, userID string, appID int64, kind domain.FileKind, upload domain.FileUpload) (*domain.Application, error) {
	if kind != domain.FileKindResume && kind != domain.FileKindCoverLetter {
		return nil, apperror.BadRequest("Unsupported file type for applications")
	}
	if err := uc.validate(ctx, userID, kind, upload); err != nil {
		return nil, err
	}

	app, err := uc.getOwnedApplication(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	relPath, err := uc.store(ctx, userID, kind, upload)
	if err != nil {
		return nil, err
	}

	var oldPath string
	switch kind {
	case domain.FileKindResume:
		oldPath = app.ResumePath
		app.ResumePath = relPath
	case domain.FileKindCoverLetter:
		oldPath = app.CoverLetterPath
		app.CoverLetterPath = relPath
	}

	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		uc.removeStored(ctx, relPath)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}

	if oldPath != "" && oldPath != relPath {
		uc.removeStored(ctx, oldPath)
	}
	return app, nil
}

// DeleteApplicationFile removes the record's file of the given kind and
// clears its reference.
func (uc *attachmentUsecase) DeleteApplicationFile(ctx context.Context, userID string, appID int64, kind domain.FileKind) (*domain.Application, error) {
	if kind != domain.FileKindResume && kind != domain.FileKindCoverLetter {
		return nil, apperror.BadRequest("Unsupported file type for applications")
	}

	app, err := uc.getOwnedApplication(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	var oldPath string
	switch kind {
	case domain.FileKindResume:
		oldPath = app.ResumePath
		app.ResumePath = ""
	case domain.FileKindCoverLetter:
		oldPath = app.CoverLetterPath
		app.CoverLetterPath = ""
	}
	if oldPath == "" {
		return nil, apperror.NotFound("No file to delete")
	}

	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		return nil, apperror.Internal(err)
	}
	uc.removeStored(ctx, oldPath)
	return app, nil
}

// UploadUserFile attaches an avatar or resume to the caller's profile.
func (uc *attachmentUsecase) UploadUserFile(ctx context.Context, userID string, kind domain.FileKind, upload domain.FileUpload) (*domain.User, error) {
	if kind != domain.FileKindAvatar && kind != domain.FileKindResume {
		return nil, apperror.BadRequest("Unsupported file type for profiles")
	}
	if err := uc.validate(ctx, userID, kind, upload); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}

	relPath, err := uc.store(ctx, userID, kind, upload)
	if err != nil {
		return nil, err
	}

	var oldPath string
	switch kind {
	case domain.FileKindAvatar:
		oldPath = user.AvatarPath
		user.AvatarPath = relPath
	case domain.FileKindResume:
		oldPath = user.ResumePath
		user.ResumePath = relPath
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		uc.removeStored(ctx, relPath)
		return nil, apperror.Internal(err)
	}

	if oldPath != "" && oldPath != relPath {
		uc.removeStored(ctx, oldPath)
	}
	return user, nil
}

// DeleteUserFile removes the profile's file of the given kind and clears its
// reference.
func (uc *attachmentUsecase) DeleteUserFile(ctx context.Context, userID string, kind domain.FileKind) (*domain.User, error) {
	if kind != domain.FileKindAvatar && kind != domain.FileKindResume {
		return nil, apperror.BadRequest("Unsupported file type for profiles")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}

	var oldPath string
	switch kind {
	case domain.FileKindAvatar:
		oldPath = user.AvatarPath
		user.AvatarPath = ""
	case domain.FileKindResume:
		oldPath = user.ResumePath
		user.ResumePath = ""
	}
	if oldPath == "" {
		return nil, apperror.NotFound("No file to delete")
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}
	uc.removeStored(ctx, oldPath)
	return user, nil
}

// Download opens a stored file by kind and name. The name is reduced to its
// base component so a crafted filename cannot escape the kind's directory.
func (uc *attachmentUsecase) Download(ctx context.Context, kind domain.FileKind, filename string) (*domain.StoredFile, error) {
	name := path.Base(filename)
	if name == "" || name == "." || name == ".." {
		return nil, apperror.BadRequest("Invalid filename")
	}

	relPath := kind.Dir() + "/" + name
	body, size, err := uc.files.Open(ctx, relPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, apperror.NotFound("File not found")
		}
		return nil, apperror.Internal(err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &domain.StoredFile{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// DeleteStored removes a stored file by kind and name without touching any
// entity reference. Used by the raw file management route. Generated names
// start with the owner's id, so only the caller's own files are deletable.
func (uc *attachmentUsecase) DeleteStored(ctx context.Context, userID string, kind domain.FileKind, filename string) error {
	name := path.Base(filename)
	if name == "" || name == "." || name == ".." {
		return apperror.BadRequest("Invalid filename")
	}
	if !strings.HasPrefix(name, userID+"-") {
		return apperror.Forbidden("Not authorized to delete this file")
	}

	if err := uc.files.Delete(ctx, kind.Dir()+"/"+name); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return apperror.NotFound("File not found")
		}
		return apperror.Internal(err)
	}
	return nil
}

// requestID pulls the request id that the middleware put on the context.
// Gin stores keys as plain strings; plain contexts use the typed key.
func requestID(ctx context.Context) string {
	if v, ok := ctx.Value(string(domain.KeyRequestID)).(string); ok {
		return v
	}
	if v, ok := ctx.Value(domain.KeyRequestID).(string); ok {
		return v
	}
	return ""
}
