package handlers

import (
	"net/http"

	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes регистрирует маршруты аутентификации и управления аккаунтами
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.mw.LoginLimit, h.Register)
		auth.POST("/login", h.mw.LoginLimit, h.Login)
		auth.GET("/me", h.mw.Auth, h.Me)
	}

	admin := rg.Group("/admin")
	admin.Use(h.mw.Auth, middleware.RequireRoles(models.RoleAdmin))
	{
		admin.PUT("/accounts/:accountId/status", h.SetAccountStatus)
	}
}

// Register godoc
// @Summary Регистрация студента или компании
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Данные регистрации"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Email уже занят"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Учетные данные"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me godoc
// @Summary Текущий аккаунт
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	response, err := h.authService.Me(c.Request.Context(), h.GetDB(c), middleware.BearerToken(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SetAccountStatus godoc
// @Summary Включить или отключить аккаунт
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountId path string true "ID аккаунта"
// @Param request body dto.UpdateAccountStatusRequest true "Новый статус"
// @Success 200 {object} dto.AccountResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/admin/accounts/{accountId}/status [put]
func (h *AuthHandler) SetAccountStatus(c *gin.Context) {
	var req dto.UpdateAccountStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.SetAccountStatus(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("accountId"), req.Status,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
