package handlers

import (
	"fmt"
	"net/http"

	"placement_backend/internal/auth"
	"placement_backend/internal/middleware"
	"placement_backend/internal/models"
	"placement_backend/internal/services"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	profiles.Use(h.mw.Auth)
	{
		profiles.GET("/me", h.GetMyProfile)
	}

	company := r.Group("/companies/:companyId")
	company.Use(h.mw.Auth, middleware.RequireOwner("companyId",
		auth.RequireRoles(models.RoleCompany, models.RoleAdmin).WithAdminOverride()))
	{
		company.GET("/profile", h.GetCompanyProfile)
		company.PUT("/profile", h.UpdateCompanyProfile)
		company.POST("/logo", h.mw.UploadLimit, h.UploadLogo)
	}

	student := r.Group("/students/:studentId")
	student.Use(h.mw.Auth, middleware.RequireOwner("studentId",
		auth.RequireRoles(models.RoleStudent, models.RoleAdmin).WithAdminOverride()))
	{
		student.GET("/profile", h.GetStudentProfile)
		student.PUT("/profile", h.UpdateStudentProfile)
		student.POST("/cvs", middleware.RequireOwner("studentId", auth.RequireRoles(models.RoleStudent)), h.mw.UploadLimit, h.UploadCV)
		student.GET("/cvs", h.ListCVs)
	}

	cvs := r.Group("/cvs")
	cvs.Use(h.mw.Auth)
	{
		cvs.GET("/:cvId/download", h.DownloadCV)
	}
}

// GetMyProfile отдает профиль по роли текущего аккаунта
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	ctx, db, token := c.Request.Context(), h.GetDB(c), middleware.BearerToken(c)

	var (
		response interface{}
		err      error
	)
	switch middleware.GetPrincipal(c).Role {
	case models.RoleCompany:
		response, err = h.profileService.GetCompanyProfile(ctx, db, token, userID)
	case models.RoleStudent:
		response, err = h.profileService.GetStudentProfile(ctx, db, token, userID)
	default:
		err = apperrors.ErrNotFound("profile", nil)
	}
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ============================================
// Компания
// ============================================

func (h *ProfileHandler) GetCompanyProfile(c *gin.Context) {
	response, err := h.profileService.GetCompanyProfile(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("companyId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProfileHandler) UpdateCompanyProfile(c *gin.Context) {
	var req dto.UpdateCompanyProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.profileService.UpdateCompanyProfile(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("companyId"), &req,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UploadLogo godoc
// @Summary Загрузить логотип компании
// @Tags company
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param companyId path string true "ID компании"
// @Param file formData file true "Изображение"
// @Success 200 {object} dto.CompanyProfileResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /api/v1/companies/{companyId}/logo [post]
func (h *ProfileHandler) UploadLogo(c *gin.Context) {
	upload, ok := h.ReadUpload(c, "file")
	if !ok {
		return
	}

	response, err := h.profileService.UploadLogo(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("companyId"), upload,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ============================================
// Студент
// ============================================

func (h *ProfileHandler) GetStudentProfile(c *gin.Context) {
	response, err := h.profileService.GetStudentProfile(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("studentId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProfileHandler) UpdateStudentProfile(c *gin.Context) {
	var req dto.UpdateStudentProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.profileService.UpdateStudentProfile(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("studentId"), &req,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UploadCV godoc
// @Summary Загрузить резюме
// @Description Новый файл становится текущим резюме, старые остаются в истории
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "ID студента"
// @Param file formData file true "PDF или DOC/DOCX"
// @Success 201 {object} dto.CvResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /api/v1/students/{studentId}/cvs [post]
func (h *ProfileHandler) UploadCV(c *gin.Context) {
	upload, ok := h.ReadUpload(c, "file")
	if !ok {
		return
	}

	response, err := h.profileService.UploadCV(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("studentId"), upload,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *ProfileHandler) ListCVs(c *gin.Context) {
	response, err := h.profileService.ListCVs(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("studentId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DownloadCV godoc
// @Summary Скачать резюме
// @Description Владелец, администратор или компания, получившая это резюме в заявке
// @Tags students
// @Produce octet-stream
// @Security BearerAuth
// @Param cvId path string true "ID резюме"
// @Success 200 {file} file
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /api/v1/cvs/{cvId}/download [get]
func (h *ProfileHandler) DownloadCV(c *gin.Context) {
	file, err := h.profileService.DownloadCV(
		c.Request.Context(), h.GetDB(c), middleware.BearerToken(c), c.Param("cvId"),
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.MimeType, file.Data)
}
