package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"placement_backend/internal/config"
	"placement_backend/internal/logger"
	"placement_backend/internal/services/dto"
	"placement_backend/internal/storage"
	"placement_backend/internal/utils"
	"placement_backend/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
)

// ============================================
// FILE INGESTION
// ============================================

// Constraints - ограничения для одного вида загрузок
type Constraints struct {
	Folder       string
	AllowedTypes []string // поддерживает маски вида "image/*"
	MaxBytes     int64    // 0 - без ограничения
}

type UploadService interface {
	// Ingest проверяет файл и пишет его в хранилище. Ссылку на объект
	// вызывающий сохраняет в БД только после успешной записи.
	Ingest(ctx context.Context, data []byte, declaredName, declaredMime string, c Constraints) (*dto.FileRef, error)
	Read(ctx context.Context, path string) ([]byte, error)
	// Delete идемпотентен: отсутствующий объект только логируется
	Delete(ctx context.Context, path string) error
	URL(ctx context.Context, path string) (string, error)

	CVConstraints(studentID string) Constraints
	LogoConstraints(companyID string) Constraints
}

type uploadService struct {
	storage storage.Storage
	rules   config.UploadRules
	now     Clock
}

func NewUploadService(store storage.Storage, rules config.UploadRules, now Clock) UploadService {
	if now == nil {
		now = systemClock
	}
	return &uploadService{storage: store, rules: rules, now: now}
}

func (s *uploadService) CVConstraints(studentID string) Constraints {
	return Constraints{
		Folder:       path.Join("cvs", studentID),
		AllowedTypes: s.rules.CVAllowedTypes,
		MaxBytes:     s.rules.CVMaxSize,
	}
}

func (s *uploadService) LogoConstraints(companyID string) Constraints {
	return Constraints{
		Folder:       path.Join("logos", companyID),
		AllowedTypes: s.rules.LogoAllowedTypes,
		MaxBytes:     s.rules.LogoMaxSize,
	}
}

func (s *uploadService) Ingest(ctx context.Context, data []byte, declaredName, declaredMime string, c Constraints) (*dto.FileRef, error) {
	size := int64(len(data))

	// Размер проверяется до любой записи
	if c.MaxBytes > 0 && size > c.MaxBytes {
		return nil, apperrors.ErrTooLarge(size, c.MaxBytes)
	}
	if size == 0 {
		return nil, apperrors.ValidationError(map[string]string{"file": "file is empty"})
	}

	contentType := resolveContentType(data, declaredMime)
	if !isAllowedType(contentType, c.AllowedTypes) {
		return nil, apperrors.ErrUnsupportedType(contentType, c.AllowedTypes)
	}

	storedName := utils.StoredFileName(s.now(), declaredName)
	key := storedName
	if c.Folder != "" {
		key = c.Folder + "/" + storedName
	}

	if err := s.storage.Save(ctx, key, bytes.NewReader(data), contentType); err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, apperrors.NewBadRequestError("invalid file location")
		}
		return nil, apperrors.InternalError(fmt.Errorf("failed to save file to storage: %w", err))
	}

	logger.CtxInfo(ctx, "File stored", "path", key, "mime_type", contentType, "size", size)

	return &dto.FileRef{
		Path:       key,
		StoredName: storedName,
		MimeType:   contentType,
		Size:       size,
	}, nil
}

func (s *uploadService) Read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.storage.Get(ctx, key)
	if err != nil {
		return nil, handleStorageError(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to read file: %w", err))
	}
	return data, nil
}

func (s *uploadService) Delete(ctx context.Context, key string) error {
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return handleStorageError(err)
	}
	if !exists {
		logger.CtxWarn(ctx, "File already absent, nothing to delete", "path", key)
		return nil
	}

	if err := s.storage.Delete(ctx, key); err != nil {
		return handleStorageError(err)
	}
	logger.CtxInfo(ctx, "File deleted", "path", key)
	return nil
}

func (s *uploadService) URL(ctx context.Context, key string) (string, error) {
	url, err := s.storage.GetURL(ctx, key)
	if err != nil {
		return "", handleStorageError(err)
	}
	return url, nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ
// ============================================

// resolveContentType: заявленный тип клиента, если он конкретный,
// иначе тип, определенный по содержимому.
func resolveContentType(data []byte, declared string) string {
	ct := normalizeMime(declared)
	if ct == "" || ct == "application/octet-stream" {
		ct = normalizeMime(mimetype.Detect(data).String())
	}
	return ct
}

func normalizeMime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(value); err == nil {
		return strings.ToLower(mediaType)
	}
	return strings.ToLower(value)
}

func isAllowedType(contentType string, allowed []string) bool {
	for _, pattern := range allowed {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == contentType {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok && strings.HasPrefix(contentType, prefix+"/") {
			return true
		}
	}
	return false
}

func handleStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return apperrors.ErrNotFound("file", err)
	case errors.Is(err, storage.ErrInvalidKey):
		return apperrors.NewBadRequestError("invalid file location")
	default:
		return apperrors.InternalError(err)
	}
}
