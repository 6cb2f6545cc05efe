package v1

import (
	"io"
	"net/http"

	"go-jobtracker-backend/internal/delivery/http/middleware"
	"go-jobtracker-backend/internal/delivery/http/response"
	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	attachmentUC domain.AttachmentUsecase
}

// NewAuthHandler registers authentication and profile routes
func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, attachmentUC domain.AttachmentUsecase) {
	handler := &AuthHandler{authUC: authUC, attachmentUC: attachmentUC}

	auth := public.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig()), handler.Register)
		auth.POST("/login", middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig()), handler.Login)
	}

	authed := protected.Group("/auth")
	{
		authed.GET("/profile", handler.GetProfile)
		authed.PUT("/profile", handler.UpdateProfile)
		authed.PUT("/password", handler.ChangePassword)

		uploads := authed.Group("", middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig()))
		{
			uploads.POST("/avatar", handler.UploadAvatar)
			uploads.POST("/resume", handler.UploadResume)
		}
		authed.DELETE("/avatar", handler.DeleteAvatar)
		authed.DELETE("/resume", handler.DeleteResume)
		authed.GET("/resume/:filename", handler.DownloadResume)
	}
}

// RegisterRequest is the request payload for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the request payload for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries the profile fields a user may change.
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone" binding:"omitempty,valid_phone"`
	Location *string `json:"location"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	LinkedIn *string `json:"linkedin" binding:"omitempty,url"`
	GitHub   *string `json:"github" binding:"omitempty,url"`
}

// ChangePasswordRequest is the request payload for changing the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Register godoc
// @Summary      Register a new account
// @Description  Create an account and receive a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "Account data"
// @Success      201   {object}  response.Response{data=domain.AuthResult}
// @Failure      400   {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Please provide all required fields"))
		return
	}

	result, err := h.authUC.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Account created successfully", result)
}

// Login godoc
// @Summary      Log in
// @Description  Exchange email and password for a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  response.Response{data=domain.AuthResult}
// @Failure      401   {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Please provide all required fields"))
		return
	}

	meta := domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(string(domain.KeyRequestID)),
	}

	result, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password, meta)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Logged in successfully", result)
}

// GetProfile godoc
// @Summary      Get current user
// @Description  Get the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/profile [get]
// @Security     BearerAuth
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	user, err := h.authUC.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Update profile fields; absent fields are unchanged
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      UpdateProfileRequest  true  "Profile fields"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Router       /auth/profile [put]
// @Security     BearerAuth
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	user, err := h.authUC.UpdateProfile(c.Request.Context(), userID, domain.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Location: req.Location,
		Bio:      req.Bio,
		LinkedIn: req.LinkedIn,
		GitHub:   req.GitHub,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Change the account password after verifying the current one
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ChangePasswordRequest  true  "Password change"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Failure      401   {object}  response.Response
// @Router       /auth/password [put]
// @Security     BearerAuth
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Please provide all required fields"))
		return
	}

	if err := h.authUC.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Password changed successfully", nil)
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Description  Upload a profile picture; replaces any existing one
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image file"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Router       /auth/avatar [post]
// @Security     BearerAuth
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	h.uploadUserFile(c, domain.FileKindAvatar, "Avatar uploaded successfully")
}

// UploadResume godoc
// @Summary      Upload profile resume
// @Description  Upload the default resume; replaces any existing one
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document file"
// @Success      200   {object}  response.Response{data=domain.User}
// @Failure      400   {object}  response.Response
// @Router       /auth/resume [post]
// @Security     BearerAuth
func (h *AuthHandler) UploadResume(c *gin.Context) {
	h.uploadUserFile(c, domain.FileKindResume, "Resume uploaded successfully")
}

func (h *AuthHandler) uploadUserFile(c *gin.Context, kind domain.FileKind, message string) {
	userID := c.GetString(string(domain.KeyUserID))

	upload, err := readUpload(c)
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.attachmentUC.UploadUserFile(c.Request.Context(), userID, kind, upload)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, message, user)
}

// DeleteAvatar godoc
// @Summary      Delete avatar
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      404  {object}  response.Response
// @Router       /auth/avatar [delete]
// @Security     BearerAuth
func (h *AuthHandler) DeleteAvatar(c *gin.Context) {
	h.deleteUserFile(c, domain.FileKindAvatar, "Avatar deleted successfully")
}

// DeleteResume godoc
// @Summary      Delete profile resume
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      404  {object}  response.Response
// @Router       /auth/resume [delete]
// @Security     BearerAuth
func (h *AuthHandler) DeleteResume(c *gin.Context) {
	h.deleteUserFile(c, domain.FileKindResume, "Resume deleted successfully")
}

func (h *AuthHandler) deleteUserFile(c *gin.Context, kind domain.FileKind, message string) {
	userID := c.GetString(string(domain.KeyUserID))

	user, err := h.attachmentUC.DeleteUserFile(c.Request.Context(), userID, kind)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, message, user)
}

// DownloadResume godoc
// @Summary      Download a stored resume
// @Tags         auth
// @Produce      application/octet-stream
// @Param        filename  path  string  true  "Stored file name"
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /auth/resume/{filename} [get]
// @Security     BearerAuth
func (h *AuthHandler) DownloadResume(c *gin.Context) {
	file, err := h.attachmentUC.Download(c.Request.Context(), domain.FileKindResume, c.Param("filename"))
	if err != nil {
		c.Error(err)
		return
	}

	serveStoredFile(c, file)
}

// readUpload pulls the "file" form field into memory for validation.
func readUpload(c *gin.Context) (domain.FileUpload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return domain.FileUpload{}, apperror.BadRequest("No file uploaded")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return domain.FileUpload{}, apperror.Internal(err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return domain.FileUpload{}, apperror.Internal(err)
	}

	return domain.FileUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Data:     data,
	}, nil
}

// serveStoredFile streams an opened attachment to the client.
func serveStoredFile(c *gin.Context, file *domain.StoredFile) {
	defer file.Body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.Body, nil)
}
