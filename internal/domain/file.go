package domain

import (
	"context"
	"io"
)

// FileKind identifies the category of an uploaded file. The kind decides
// which subdirectory the file lands in and which MIME types are accepted.
type FileKind string

const (
	FileKindAvatar      FileKind = "avatar"
	FileKindResume      FileKind = "resume"
	FileKindCoverLetter FileKind = "cover-letter"
	FileKindOther       FileKind = "other"
)

// Dir returns the storage subdirectory for the kind.
func (k FileKind) Dir() string {
	switch k {
	case FileKindAvatar:
		return "avatars"
	case FileKindResume:
		return "resumes"
	case FileKindCoverLetter:
		return "cover-letters"
	default:
		return "others"
	}
}

// FileKindFromDir maps a URL path segment (e.g. "resumes") back to a kind.
// Used by the raw download/delete routes where the client supplies the type.
func FileKindFromDir(dir string) (FileKind, bool) {
	switch dir {
	case "avatars":
		return FileKindAvatar, true
	case "resumes":
		return FileKindResume, true
	case "cover-letters":
		return FileKindCoverLetter, true
	case "others":
		return FileKindOther, true
	}
	return "", false
}

// FileUpload carries one uploaded file through the attachment manager.
// Data is fully buffered: uploads are capped at 5MB before we get here.
type FileUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// StoredFile is an attachment opened for download.
type StoredFile struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.ReadCloser
}

// AttachmentUsecase coordinates upload, replace, download and delete of
// record and profile attachments. Invariant: at most one file per kind per
// entity, and an entity never references a path that is not on storage.
type AttachmentUsecase interface {
	UploadApplicationFile(ctx context.Context, userID string, appID int64, kind FileKind, upload FileUpload) (*Application, error)
	DeleteApplicationFile(ctx context.Context, userID string, appID int64, kind FileKind) (*Application, error)

	UploadUserFile(ctx context.Context, userID string, kind FileKind, upload FileUpload) (*User, error)
	DeleteUserFile(ctx context.Context, userID string, kind FileKind) (*User, error)

	Download(ctx context.Context, kind FileKind, filename string) (*StoredFile, error)
	DeleteStored(ctx context.Context, userID string, kind FileKind, filename string) error
}
