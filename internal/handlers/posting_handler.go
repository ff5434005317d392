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

type PostingHandler struct {
	*BaseHandler
	postingService  services.PostingService
	matchingService services.MatchingService
}

func NewPostingHandler(base *BaseHandler, postingService services.PostingService, matchingService services.MatchingService) *PostingHandler {
	return &PostingHandler{
		BaseHandler:     base,
		postingService:  postingService,
		matchingService: matchingService,
	}
}

func (h *PostingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Публичная лента: только одобренные и не истекшие вакансии
	public := rg.Group("/postings")
	{
		public.GET("", h.ListVisible)
		public.GET("/:id", h.GetVisible)
		public.GET("/:id/similar", h.Similar)
	}

	manage := rg.Group("/manage/postings")
	manage.Use(h.mw.Auth)
	{
		manage.GET("/:id", h.GetForManagement)
	}

	// публикует и закрывает только сама компания, admin здесь не подменяет владельца
	companyOnly := middleware.RequireOwner("companyId", auth.RequireRoles(models.RoleCompany))
	company := rg.Group("/companies/:companyId/postings")
	company.Use(h.mw.Auth, middleware.RequireRoles(models.RoleCompany, models.RoleAdmin))
	{
		company.POST("", companyOnly, h.Create)
		company.GET("", h.ListByCompany)
		company.POST("/:id/close", companyOnly, h.Close)
	}

	admin := rg.Group("/admin/postings")
	admin.Use(h.mw.Auth, middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/pending", h.ListPending)
		admin.POST("/bulk-decision", h.BulkDecide)
		admin.POST("/:id/decision", h.Decide)
	}
}

// ============================================
// Публичные маршруты
// ============================================

// ListVisible godoc
// @Summary Лента вакансий
// @Tags postings
// @Produce json
// @Param q query string false "Поиск по названию, описанию и требованиям"
// @Param location query string false "Город"
// @Param employment_type query string false "Тип занятости"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.PostingListResponse
// @Router /api/v1/postings [get]
func (h *PostingHandler) ListVisible(c *gin.Context) {
	var query dto.PostingListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	response, err := h.postingService.ListVisible(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetVisible godoc
// @Summary Вакансия из ленты
// @Tags postings
// @Produce json
// @Param id path string true "ID вакансии"
// @Success 200 {object} dto.PostingResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/postings/{id} [get]
func (h *PostingHandler) GetVisible(c *gin.Context) {
	response, err := h.postingService.GetVisible(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Similar godoc
// @Summary Похожие вакансии
// @Description Сначала та же компания, затем та же отрасль, затем более свежие
// @Tags postings
// @Produce json
// @Param id path string true "ID вакансии"
// @Param limit query int false "Сколько вернуть (по умолчанию 5)"
// @Success 200 {array} dto.SimilarPosting
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/postings/{id}/similar [get]
func (h *PostingHandler) Similar(c *gin.Context) {
	limit := ParseQueryInt(c, "limit", services.DefaultSimilarLimit)

	response, err := h.matchingService.Similar(c.Request.Context(), h.GetDB(c), c.Param("id"), limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ============================================
// Компания
// ============================================

// Create godoc
// @Summary Создать вакансию
// @Description Новая вакансия всегда уходит на модерацию
// @Tags company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "ID компании"
// @Param request body dto.CreatePostingRequest true "Вакансия"
// @Success 201 {object} dto.PostingResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/companies/{companyId}/postings [post]
func (h *PostingHandler) Create(c *gin.Context) {
	var req dto.CreatePostingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.postingService.Create(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("companyId"), &req,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *PostingHandler) ListByCompany(c *gin.Context) {
	response, err := h.postingService.ListByCompany(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("companyId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Close godoc
// @Summary Закрыть одобренную вакансию
// @Tags company
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "ID компании"
// @Param id path string true "ID вакансии"
// @Success 200 {object} dto.PostingResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Вакансия не в статусе approved"
// @Router /api/v1/companies/{companyId}/postings/{id}/close [post]
func (h *PostingHandler) Close(c *gin.Context) {
	response, err := h.postingService.Close(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"), c.Param("companyId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PostingHandler) GetForManagement(c *gin.Context) {
	response, err := h.postingService.GetForManagement(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ============================================
// Модерация
// ============================================

func (h *PostingHandler) ListPending(c *gin.Context) {
	response, err := h.postingService.ListPending(c.Request.Context(), h.GetDB(c), middleware.BearerToken(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Decide godoc
// @Summary Одобрить или отклонить вакансию
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID вакансии"
// @Param request body dto.DecisionRequest true "Решение"
// @Success 200 {object} dto.PostingResponse
// @Failure 409 {object} apperrors.ErrorResponse "Вакансия уже рассмотрена"
// @Router /api/v1/admin/postings/{id}/decision [post]
func (h *PostingHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.postingService.Decide(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("id"), req.Decision, req.Reason,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// BulkDecide godoc
// @Summary Массовое решение по вакансиям
// @Description Каждая вакансия проверяется отдельно, ошибки возвращаются по элементам
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDecisionRequest true "Список вакансий и решение"
// @Success 200 {object} dto.BulkDecisionResponse
// @Router /api/v1/admin/postings/bulk-decision [post]
func (h *PostingHandler) BulkDecide(c *gin.Context) {
	var req dto.BulkDecisionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.postingService.BulkDecide(c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
