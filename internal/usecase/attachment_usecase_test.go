package usecase_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"testing"

	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/internal/usecase"
	"go-jobtracker-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testMaxUpload = 5 << 20

func pdfUpload(name string) domain.FileUpload {
	data := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<<>>\n%%EOF")
	return domain.FileUpload{Filename: name, Size: int64(len(data)), Data: data}
}

func pngUpload(t *testing.T, name string) domain.FileUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return domain.FileUpload{Filename: name, Size: int64(buf.Len()), Data: buf.Bytes()}
}

func TestAttachmentValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject oversized uploads before touching anything", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, 16)

		_, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, pdfUpload("cv.pdf"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "File too large")
		assert.Empty(t, store.paths())
		appRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Should reject a disallowed extension", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		upload := domain.FileUpload{Filename: "evil.exe", Size: 10, Data: []byte("MZ........")}
		_, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, upload)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid file type")
		assert.Empty(t, store.paths())
	})

	t.Run("Should reject content that does not match the extension", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		// Plain text renamed to .pdf
		upload := domain.FileUpload{Filename: "fake.pdf", Size: 12, Data: []byte("just text...")}
		_, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, upload)
		assert.Error(t, err)
		assert.Empty(t, store.paths())
	})

	t.Run("Should reject an image for a document slot", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, pngUpload(t, "photo.png"))
		assert.Error(t, err)
		assert.Empty(t, store.paths())
	})
}

func TestApplicationAttachments(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store the file and persist its path", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		app := &domain.Application{ID: 7, UserID: "u1", Company: "Acme", Position: "Engineer"}
		appRepo.On("GetByID", ctx, int64(7)).Return(app, nil)
		appRepo.On("Update", ctx, mock.AnythingOfType("*domain.Application")).Return(nil)

		updated, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, pdfUpload("cv.pdf"))
		assert.NoError(t, err)
		assert.NotEmpty(t, updated.ResumePath)

		exists, _ := store.Exists(ctx, updated.ResumePath)
		assert.True(t, exists)
		assert.Len(t, store.pathsIn("resumes"), 1)
	})

	t.Run("Should replace the previous file of the same kind", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		app := &domain.Application{ID: 7, UserID: "u1", Company: "Acme", Position: "Engineer"}
		appRepo.On("GetByID", ctx, int64(7)).Return(app, nil)
		appRepo.On("Update", ctx, mock.AnythingOfType("*domain.Application")).Return(nil)

		first, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, pdfUpload("cv-v1.pdf"))
		assert.NoError(t, err)
		firstPath := first.ResumePath

		second, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, pdfUpload("cv-v2.pdf"))
		assert.NoError(t, err)
		assert.NotEqual(t, firstPath, second.ResumePath)

		// At most one stored resume after the replace
		assert.Len(t, store.pathsIn("resumes"), 1)
		gone, _ := store.Exists(ctx, firstPath)
		assert.False(t, gone)
	})

	t.Run("Should clean up the new file when persisting fails", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		app := &domain.Application{ID: 7, UserID: "u1", Company: "Acme", Position: "Engineer"}
		appRepo.On("GetByID", ctx, int64(7)).Return(app, nil)
		appRepo.On("Update", ctx, mock.AnythingOfType("*domain.Application")).Return(assert.AnError)

		_, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindResume, pdfUpload("cv.pdf"))
		assert.Error(t, err)
		assert.Empty(t, store.paths())
	})

	t.Run("Should refuse kinds that do not belong on records", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, newMemStore(), testMaxUpload)

		_, err := uc.UploadApplicationFile(ctx, "u1", 7, domain.FileKindAvatar, pngUpload(t, "face.png"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unsupported file type")
	})

	t.Run("Should delete the stored file when clearing a slot", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_ = store.Save(ctx, "resumes/u1-1.pdf", []byte("resume"))
		app := &domain.Application{ID: 7, UserID: "u1", Company: "Acme", Position: "Engineer", ResumePath: "resumes/u1-1.pdf"}
		appRepo.On("GetByID", ctx, int64(7)).Return(app, nil)
		appRepo.On("Update", ctx, mock.AnythingOfType("*domain.Application")).Return(nil)

		updated, err := uc.DeleteApplicationFile(ctx, "u1", 7, domain.FileKindResume)
		assert.NoError(t, err)
		assert.Empty(t, updated.ResumePath)
		assert.Empty(t, store.paths())
	})

	t.Run("Should answer 404 when there is nothing to delete", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, newMemStore(), testMaxUpload)

		app := &domain.Application{ID: 7, UserID: "u1", Company: "Acme", Position: "Engineer"}
		appRepo.On("GetByID", ctx, int64(7)).Return(app, nil)

		_, err := uc.DeleteApplicationFile(ctx, "u1", 7, domain.FileKindResume)
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
	})
}

func TestUserAttachments(t *testing.T) {
	ctx := context.Background()

	t.Run("Should recompress avatars to a bounded JPEG", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		user := &domain.User{ID: "u1", Name: "User"}
		userRepo.On("GetByID", ctx, "u1").Return(user, nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		updated, err := uc.UploadUserFile(ctx, "u1", domain.FileKindAvatar, pngUpload(t, "face.png"))
		assert.NoError(t, err)
		assert.Contains(t, updated.AvatarPath, "avatars/")
		assert.Contains(t, updated.AvatarPath, ".jpg")

		body, _, err := store.Open(ctx, updated.AvatarPath)
		assert.NoError(t, err)
		defer body.Close()
		data, _ := io.ReadAll(body)
		// JPEG magic
		assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data[:3])
	})

	t.Run("Should replace an existing profile resume", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_ = store.Save(ctx, "resumes/u1-old.pdf", []byte("old"))
		user := &domain.User{ID: "u1", Name: "User", ResumePath: "resumes/u1-old.pdf"}
		userRepo.On("GetByID", ctx, "u1").Return(user, nil)
		userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		updated, err := uc.UploadUserFile(ctx, "u1", domain.FileKindResume, pdfUpload("cv.pdf"))
		assert.NoError(t, err)
		assert.NotEqual(t, "resumes/u1-old.pdf", updated.ResumePath)
		assert.Len(t, store.pathsIn("resumes"), 1)
	})
}

func TestDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("Should stream a stored file with its content type", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_ = store.Save(ctx, "resumes/u1-1.pdf", []byte("%PDF-1.4"))

		file, err := uc.Download(ctx, domain.FileKindResume, "u1-1.pdf")
		assert.NoError(t, err)
		defer file.Body.Close()
		assert.Equal(t, "application/pdf", file.ContentType)
		assert.Equal(t, int64(8), file.Size)
	})

	t.Run("Should answer 404 for an unknown file", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, newMemStore(), testMaxUpload)

		_, err := uc.Download(ctx, domain.FileKindResume, "missing.pdf")
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
	})

	t.Run("Should not let a crafted name escape the kind directory", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_ = store.Save(ctx, "avatars/secret.jpg", []byte("secret"))

		_, err := uc.Download(ctx, domain.FileKindResume, "../avatars/secret.jpg")
		assert.Error(t, err)
	})
}

func TestDeleteStored(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete the caller's own file", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_ = store.Save(ctx, "resumes/u1-1.pdf", []byte("%PDF-1.4"))

		assert.NoError(t, uc.DeleteStored(ctx, "u1", domain.FileKindResume, "u1-1.pdf"))
		assert.Empty(t, store.pathsIn("resumes"))
	})

	t.Run("Should refuse another user's file", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		store := newMemStore()
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, store, testMaxUpload)

		_ = store.Save(ctx, "resumes/owner-1.pdf", []byte("%PDF-1.4"))

		err := uc.DeleteStored(ctx, "intruder", domain.FileKindResume, "owner-1.pdf")
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 403, appErr.Code)
		assert.Len(t, store.pathsIn("resumes"), 1)
	})

	t.Run("Should answer 404 for an unknown file", func(t *testing.T) {
		userRepo := new(MockUserRepo)
		appRepo := new(MockApplicationRepo)
		uc := usecase.NewAttachmentUsecase(userRepo, appRepo, newMemStore(), testMaxUpload)

		err := uc.DeleteStored(ctx, "u1", domain.FileKindResume, "u1-missing.pdf")
		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Code)
	})
}
