package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"placement_backend/internal/logger"
	"placement_backend/internal/middleware"
	"placement_backend/internal/services/dto"
	"placement_backend/internal/validator"
	"placement_backend/pkg/apperrors"
	"placement_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
	mw        Middlewares
	// maxUploadBytes - потолок multipart-тела, точные лимиты проверяет сервис
	maxUploadBytes int64
}

// Middlewares собираются в app: проверка токена и лимиты запросов
type Middlewares struct {
	Auth        gin.HandlerFunc
	LoginLimit  gin.HandlerFunc
	UploadLimit gin.HandlerFunc
}

func NewBaseHandler(v *validator.Validator, mw Middlewares, maxUploadBytes int64) *BaseHandler {
	return &BaseHandler{
		validator:      v,
		mw:             mw.withDefaults(),
		maxUploadBytes: maxUploadBytes,
	}
}

func (m Middlewares) withDefaults() Middlewares {
	pass := func(c *gin.Context) { c.Next() }
	if m.Auth == nil {
		m.Auth = func(c *gin.Context) {
			apperrors.HandleError(c, apperrors.NewUnauthenticatedError("authentication is not configured"))
		}
	}
	if m.LoginLimit == nil {
		m.LoginLimit = pass
	}
	if m.UploadLimit == nil {
		m.UploadLimit = pass
	}
	return m
}

// ============================================================================
// 2. Доступ к БД
// ============================================================================

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context.
// Без DBMiddleware приложение собрано неверно.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// ============================================================================
// 3. Привязка и валидация
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return false
	}

	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 4. Обработка ошибок
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		logger.CtxWarn(ctx, "Service error",
			"code", appErr.Code,
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// ============================================================================
// 5. Вспомогательные функции
// ============================================================================

// GetAndAuthorizeUserID - ID аккаунта, выставленный AuthMiddleware
func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: principal not found in context",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		apperrors.HandleError(c, apperrors.NewUnauthenticatedError("authentication required"))
		return "", false
	}
	return userID, true
}

// ReadUpload читает файл из multipart-поля. Размер и тип проверяет
// сервис загрузки, здесь только защита от бесконечного тела.
func (h *BaseHandler) ReadUpload(c *gin.Context, field string) (*dto.FileUpload, bool) {
	if h.maxUploadBytes > 0 {
		// запас на заголовки multipart
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if apperrors.As(err, &maxErr) {
			apperrors.HandleError(c, apperrors.ErrBodyTooLarge(h.maxUploadBytes))
			return nil, false
		}
		apperrors.HandleError(c, apperrors.NewBadRequestError("no file provided in field '"+field+"'"))
		return nil, false
	}

	data, err := readFileHeader(fileHeader)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to read uploaded file", err, "field", field)
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read uploaded file"))
		return nil, false
	}

	return &dto.FileUpload{
		Data:         data,
		DeclaredName: fileHeader.Filename,
		DeclaredMime: fileHeader.Header.Get("Content-Type"),
	}, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================================
// 6. Парсинг параметров
// ============================================================================

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
