package v1

import (
	"net/http"

	"go-jobtracker-backend/internal/delivery/http/middleware"
	"go-jobtracker-backend/internal/delivery/http/response"
	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	attachmentUC domain.AttachmentUsecase
}

// NewFileHandler registers attachment routes for application records plus
// the raw stored-file routes.
func NewFileHandler(protected *gin.RouterGroup, attachmentUC domain.AttachmentUsecase) {
	handler := &FileHandler{attachmentUC: attachmentUC}

	applications := protected.Group("/applications")
	{
		uploads := applications.Group("", middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()))
		{
			uploads.POST("/:id/resume", handler.UploadResume)
			uploads.POST("/:id/cover-letter", handler.UploadCoverLetter)
		}
		applications.DELETE("/:id/resume", handler.DeleteResume)
		applications.DELETE("/:id/cover-letter", handler.DeleteCoverLetter)
	}

	files := protected.Group("/files")
	{
		files.GET("/:type/:filename", handler.Download)
		files.DELETE("/:type/:filename", handler.DeleteStored)
	}
}

// UploadResume godoc
// @Summary      Attach a resume to an application
// @Description  Upload a resume for the record; replaces any existing one
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "Application ID"
// @Param        file  formData  file  true  "Document file"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id}/resume [post]
// @Security     BearerAuth
func (h *FileHandler) UploadResume(c *gin.Context) {
	h.uploadApplicationFile(c, domain.FileKindResume, "Resume uploaded successfully")
}

// UploadCoverLetter godoc
// @Summary      Attach a cover letter to an application
// @Description  Upload a cover letter for the record; replaces any existing one
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "Application ID"
// @Param        file  formData  file  true  "Document file"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id}/cover-letter [post]
// @Security     BearerAuth
func (h *FileHandler) UploadCoverLetter(c *gin.Context) {
	h.uploadApplicationFile(c, domain.FileKindCoverLetter, "Cover letter uploaded successfully")
}

func (h *FileHandler) uploadApplicationFile(c *gin.Context, kind domain.FileKind, message string) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	upload, err := readUpload(c)
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.attachmentUC.UploadApplicationFile(c.Request.Context(), userID, id, kind, upload)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, message, app)
}

// DeleteResume godoc
// @Summary      Remove an application's resume
// @Tags         files
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response{data=domain.Application}
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /applications/{id}/resume [delete]
// @Security     BearerAuth
func (h *FileHandler) DeleteResume(c *gin.Context) {
	h.deleteApplicationFile(c, domain.FileKindResume, "Resume deleted successfully")
}

// DeleteCoverLetter godoc
// @Summary      Remove an application's cover letter
// @Tags         files
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response{data=domain.Application}
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /applications/{id}/cover-letter [delete]
// @Security     BearerAuth
func (h *FileHandler) DeleteCoverLetter(c *gin.Context) {
	h.deleteApplicationFile(c, domain.FileKindCoverLetter, "Cover letter deleted successfully")
}

func (h *FileHandler) deleteApplicationFile(c *gin.Context, kind domain.FileKind, message string) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.attachmentUC.DeleteApplicationFile(c.Request.Context(), userID, id, kind)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, message, app)
}

// Download godoc
// @Summary      Download a stored file
// @Description  Download a stored file by type (avatars, resumes, cover-letters, others) and name
// @Tags         files
// @Produce      application/octet-stream
// @Param        type      path  string  true  "File type directory"
// @Param        filename  path  string  true  "Stored file name"
// @Success      200
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /files/{type}/{filename} [get]
// @Security     BearerAuth
func (h *FileHandler) Download(c *gin.Context) {
	kind, ok := domain.FileKindFromDir(c.Param("type"))
	if !ok {
		c.Error(apperror.BadRequest("Invalid file type"))
		return
	}

	file, err := h.attachmentUC.Download(c.Request.Context(), kind, c.Param("filename"))
	if err != nil {
		c.Error(err)
		return
	}

	serveStoredFile(c, file)
}

// DeleteStored godoc
// @Summary      Delete a stored file
// @Description  Remove one of the caller's stored files by type and name without touching records
// @Tags         files
// @Produce      json
// @Param        type      path  string  true  "File type directory"
// @Param        filename  path  string  true  "Stored file name"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /files/{type}/{filename} [delete]
// @Security     BearerAuth
func (h *FileHandler) DeleteStored(c *gin.Context) {
	kind, ok := domain.FileKindFromDir(c.Param("type"))
	if !ok {
		c.Error(apperror.BadRequest("Invalid file type"))
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	if err := h.attachmentUC.DeleteStored(c.Request.Context(), userID, kind, c.Param("filename")); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "File deleted successfully", nil)
}
