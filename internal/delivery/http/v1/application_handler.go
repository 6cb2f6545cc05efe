package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-jobtracker-backend/internal/delivery/http/response"
	"go-jobtracker-backend/internal/domain"
	"go-jobtracker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers job application routes
func NewApplicationHandler(protected *gin.RouterGroup, applicationUC domain.ApplicationUsecase) {
	handler := &ApplicationHandler{applicationUC: applicationUC}

	applications := protected.Group("/applications")
	{
		applications.GET("", handler.List)
		applications.POST("", handler.Create)
		applications.GET("/stats", handler.Stats)
		applications.GET("/export", handler.Export)
		applications.GET("/:id", handler.Get)
		applications.PUT("/:id", handler.Update)
		applications.DELETE("/:id", handler.Delete)
	}
}

// CreateApplicationRequest is the request payload for recording an application
type CreateApplicationRequest struct {
	Company       string     `json:"company" binding:"required"`
	Position      string     `json:"position" binding:"required"`
	JobLink       string     `json:"jobLink" binding:"omitempty,url"`
	Status        string     `json:"status" binding:"omitempty,app_status"`
	AppliedDate   *time.Time `json:"appliedDate"`
	Notes         string     `json:"notes"`
	Salary        *float64   `json:"salary" binding:"omitempty,gte=0"`
	ContactName   string     `json:"contactName"`
	ContactEmail  string     `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone  string     `json:"contactPhone" binding:"omitempty,valid_phone"`
	InterviewDate *time.Time `json:"interviewDate"`
	FollowUpDate  *time.Time `json:"followUpDate"`
}

// UpdateApplicationRequest carries the fields a user may change. Absent
// fields are left untouched.
type UpdateApplicationRequest struct {
	Company       *string    `json:"company"`
	Position      *string    `json:"position"`
	JobLink       *string    `json:"jobLink" binding:"omitempty,url"`
	Status        *string    `json:"status" binding:"omitempty,app_status"`
	AppliedDate   *time.Time `json:"appliedDate"`
	Notes         *string    `json:"notes"`
	Salary        *float64   `json:"salary" binding:"omitempty,gte=0"`
	ContactName   *string    `json:"contactName"`
	ContactEmail  *string    `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone  *string    `json:"contactPhone" binding:"omitempty,valid_phone"`
	InterviewDate *time.Time `json:"interviewDate"`
	FollowUpDate  *time.Time `json:"followUpDate"`
}

// parseID parses the :id path segment.
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.BadRequest("Invalid application ID")
	}
	return id, nil
}

// List godoc
// @Summary      List applications
// @Description  Get the caller's applications, newest applied first
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Application}
// @Failure      401  {object}  response.Response
// @Router       /applications [get]
// @Security     BearerAuth
func (h *ApplicationHandler) List(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	applications, err := h.applicationUC.List(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Applications retrieved", applications)
}

// Create godoc
// @Summary      Record an application
// @Description  Create a job application record owned by the caller
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      CreateApplicationRequest  true  "Application data"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Create(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app := &domain.Application{
		Company:       req.Company,
		Position:      req.Position,
		JobLink:       req.JobLink,
		Status:        req.Status,
		Notes:         req.Notes,
		Salary:        req.Salary,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		InterviewDate: req.InterviewDate,
		FollowUpDate:  req.FollowUpDate,
	}
	if req.AppliedDate != nil {
		app.AppliedDate = *req.AppliedDate
	}

	created, err := h.applicationUC.Create(c.Request.Context(), userID, app)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application recorded successfully", created)
}

// Get godoc
// @Summary      Get an application
// @Tags         applications
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response{data=domain.Application}
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Get(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	app, err := h.applicationUC.Get(c.Request.Context(), userID, id)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// Update godoc
// @Summary      Update an application
// @Description  Update fields of an application; absent fields are unchanged
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        id    path      int                       true  "Application ID"
// @Param        body  body      UpdateApplicationRequest  true  "Fields to change"
// @Success      200   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /applications/{id} [put]
// @Security     BearerAuth
func (h *ApplicationHandler) Update(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	var req UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	app, err := h.applicationUC.Update(c.Request.Context(), userID, id, domain.ApplicationUpdate{
		Company:       req.Company,
		Position:      req.Position,
		JobLink:       req.JobLink,
		Status:        req.Status,
		AppliedDate:   req.AppliedDate,
		Notes:         req.Notes,
		Salary:        req.Salary,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		InterviewDate: req.InterviewDate,
		FollowUpDate:  req.FollowUpDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application updated successfully", app)
}

// Delete godoc
// @Summary      Delete an application
// @Description  Delete an application record and its attachments
// @Tags         applications
// @Produce      json
// @Param        id  path      int  true  "Application ID"
// @Success      200 {object}  response.Response
// @Failure      403 {object}  response.Response
// @Failure      404 {object}  response.Response
// @Router       /applications/{id} [delete]
// @Security     BearerAuth
func (h *ApplicationHandler) Delete(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	id, err := parseID(c)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.applicationUC.Delete(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application deleted successfully", nil)
}

// Stats godoc
// @Summary      Application statistics
// @Description  Get the caller's application counts grouped by status
// @Tags         applications
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ApplicationStats}
// @Failure      401  {object}  response.Response
// @Router       /applications/stats [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Stats(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	stats, err := h.applicationUC.Stats(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Stats retrieved", stats)
}

// Export godoc
// @Summary      Export applications
// @Description  Download the caller's applications as an xlsx workbook
// @Tags         applications
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      401  {object}  response.Response
// @Router       /applications/export [get]
// @Security     BearerAuth
func (h *ApplicationHandler) Export(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	data, err := h.applicationUC.Export(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("applications-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
