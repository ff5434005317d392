package services

import (
	"context"

	"placement_backend/internal/algorithms"
	"placement_backend/internal/repositories"
	"placement_backend/internal/services/dto"
	"placement_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	DefaultSimilarLimit = 5
	MaxSimilarLimit     = 20
)

// MatchingService - рекомендации "похожие вакансии". Только чтение.
type MatchingService interface {
	Similar(ctx context.Context, db *gorm.DB, postingID string, limit int) ([]dto.SimilarPosting, error)
}

type matchingService struct {
	postingRepo repositories.PostingRepository
	now         Clock
}

func NewMatchingService(postingRepo repositories.PostingRepository, now Clock) MatchingService {
	if now == nil {
		now = systemClock
	}
	return &matchingService{postingRepo: postingRepo, now: now}
}

// Similar: limit <= 0 - значение по умолчанию, больше MaxSimilarLimit - обрезается.
// Рекомендации строятся только для видимой вакансии и только из видимых.
func (s *matchingService) Similar(ctx context.Context, db *gorm.DB, postingID string, limit int) ([]dto.SimilarPosting, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}

	now := s.now()
	source, err := s.postingRepo.FindByID(ctx, db, postingID)
	if err != nil {
		return nil, handleRepoError(err)
	}
	if !source.IsVisible(now) {
		return nil, apperrors.ErrNotFound("posting", nil)
	}

	candidates, _, err := s.postingRepo.ListVisible(ctx, db, now, repositories.PostingFilter{})
	if err != nil {
		return nil, handleRepoError(err)
	}

	ranked := algorithms.RankSimilar(source, candidates, now, limit)
	out := make([]dto.SimilarPosting, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, dto.SimilarPosting{
			PostingResponse: dto.NewPostingResponse(r.Posting),
			Score:           r.Score,
			Reasons:         r.Reasons,
		})
	}
	return out, nil
}
