package handlers

import (
	"net/http"

	"placement_backend/internal/auth"
	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	studentOnly := middleware.RequireOwner("studentId", auth.RequireRoles(models.RoleStudent))
	student := rg.Group("/students/:studentId/applications")
	student.Use(h.mw.Auth, middleware.RequireRoles(models.RoleStudent, models.RoleAdmin))
	{
		student.POST("", studentOnly, h.Submit)
		student.GET("", h.ListByStudent)
		student.POST("/:id/withdraw", studentOnly, h.Withdraw)
	}

	company := rg.Group("/companies/:companyId/applications")
	company.Use(h.mw.Auth, middleware.RequireOwner("companyId", auth.RequireRoles(models.RoleCompany)))
	{
		company.PUT("/:id/status", h.UpdateStatus)
	}

	authed := rg.Group("")
	authed.Use(h.mw.Auth)
	{
		authed.GET("/applications/:id", h.Get)
		authed.GET("/postings/:id/applications", h.ListByPosting)
	}
}

// Submit godoc
// @Summary Откликнуться на вакансию
// @Description Без cv_id используется текущее резюме. Путь к файлу фиксируется в заявке.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "ID студента"
// @Param request body dto.SubmitApplicationRequest true "Заявка"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 409 {object} apperrors.ErrorResponse "Активная заявка уже есть"
// @Failure 422 {object} apperrors.ErrorResponse "Вакансия не принимает заявки"
// @Router /api/v1/students/{studentId}/applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.applicationService.Submit(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("studentId"), &req,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ApplicationHandler) ListByStudent(c *gin.Context) {
	response, err := h.applicationService.ListByStudent(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("studentId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Withdraw godoc
// @Summary Отозвать заявку
// @Description Только из статуса pending
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "ID студента"
// @Param id path string true "ID заявки"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /api/v1/students/{studentId}/applications/{id}/withdraw [post]
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	response, err := h.applicationService.Withdraw(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"), c.Param("studentId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateStatus godoc
// @Summary Сменить статус заявки
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "ID компании"
// @Param id path string true "ID заявки"
// @Param request body dto.UpdateApplicationStatusRequest true "Новый статус"
// @Success 200 {object} dto.ApplicationResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Переход не разрешен"
// @Router /api/v1/companies/{companyId}/applications/{id}/status [put]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.applicationService.UpdateStatus(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"), c.Param("companyId"), &req,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	response, err := h.applicationService.Get(c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ApplicationHandler) ListByPosting(c *gin.Context) {
	response, err := h.applicationService.ListByPosting(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
