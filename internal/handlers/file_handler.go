package handlers

import (
	"net/http"
	"strings"

	"placement_backend/internal/services"
	"placement_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// publicPrefixes - папки хранилища, которые можно отдавать без токена.
// Резюме сюда не входят: их отдает DownloadCV с проверкой доступа.
var publicPrefixes = []string{"logos/"}

type FileHandler struct {
	*BaseHandler
	uploadService services.UploadService
}

func NewFileHandler(base *BaseHandler, uploadService services.UploadService) *FileHandler {
	return &FileHandler{
		BaseHandler:   base,
		uploadService: uploadService,
	}
}

func (h *FileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/files/*path", h.ServeFile)
}

// ServeFile отдает публичный объект из локального хранилища
func (h *FileHandler) ServeFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("path"), "/")

	if !isPublicKey(key) {
		apperrors.HandleError(c, apperrors.ErrNotFound("file", nil))
		return
	}

	data, err := h.uploadService.Read(c.Request.Context(), key)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}

func isPublicKey(key string) bool {
	if key == "" || strings.Contains(key, "..") {
		return false
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
