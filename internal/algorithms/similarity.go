package algorithms

import (
	"sort"
	"strings"
	"time"

	"placement_backend/internal/models"
)

const (
	// Вес совпадения компании больше любого вклада отрасли
	sameCompanyScore  = 2
	sameIndustryScore = 1
)

// SimilarityScore - насколько кандидат похож на исходную вакансию.
// Свежесть не входит в балл, она решает только при равенстве.
func SimilarityScore(source, candidate *models.JobPosting) (int, []string) {
	score := 0
	reasons := []string{}

	if candidate.CompanyID == source.CompanyID {
		score += sameCompanyScore
		reasons = append(reasons, "Same company")
	}

	industry := normalizeIndustry(source.Industry())
	if industry != "" && normalizeIndustry(candidate.Industry()) == industry {
		score += sameIndustryScore
		reasons = append(reasons, "Same industry")
	}

	return score, reasons
}

// RankedPosting - кандидат с баллом
type RankedPosting struct {
	Posting *models.JobPosting
	Score   int
	Reasons []string
}

// RankSimilar возвращает до limit вакансий, похожих на source.
// Исходная вакансия и все, что не видно студентам на момент now, отбрасываются.
// Порядок: балл, затем created_at (новые выше), затем id.
func RankSimilar(source *models.JobPosting, candidates []models.JobPosting, now time.Time, limit int) []RankedPosting {
	if limit <= 0 {
		return []RankedPosting{}
	}

	ranked := make([]RankedPosting, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if c.ID == source.ID || !c.IsVisible(now) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		score, reasons := SimilarityScore(source, c)
		ranked = append(ranked, RankedPosting{Posting: c, Score: score, Reasons: reasons})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Posting.CreatedAt.Equal(b.Posting.CreatedAt) {
			return a.Posting.CreatedAt.After(b.Posting.CreatedAt)
		}
		return a.Posting.ID < b.Posting.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func normalizeIndustry(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
