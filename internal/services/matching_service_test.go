package services

import (
	"testing"
	"time"

	"placement_backend/internal/models"
	"placement_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario E: исходная, отклоненная и закрытая вакансии не попадают в рекомендации
func TestMatching_SimilarExcludesSourceAndNonApproved(t *testing.T) {
	env := newTestEnv(t)
	acme := env.newActor(models.RoleCompany, "acme")
	other := env.newActor(models.RoleCompany, "other")

	source := env.addPosting(acme.ID, models.PostingStatusApproved, 5*time.Hour)
	rejected := env.addPosting(acme.ID, models.PostingStatusRejected, time.Minute)
	closed := env.addPosting(acme.ID, models.PostingStatusClosed, time.Minute)
	sameCompany := env.addPosting(acme.ID, models.PostingStatusApproved, 3*time.Hour)
	otherCompany := env.addPosting(other.ID, models.PostingStatusApproved, time.Hour)

	similar, err := env.matchingSvc.Similar(env.ctx, nil, source.ID, 5)
	require.NoError(t, err)

	ids := make([]string, 0, len(similar))
	for _, s := range similar {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{sameCompany.ID, otherCompany.ID}, ids)
	assert.NotContains(t, ids, source.ID)
	assert.NotContains(t, ids, rejected.ID)
	assert.NotContains(t, ids, closed.ID)
}

func TestMatching_SimilarLimit(t *testing.T) {
	env := newTestEnv(t)
	acme := env.newActor(models.RoleCompany, "acme")
	source := env.addPosting(acme.ID, models.PostingStatusApproved, 0)
	for i := 0; i < MaxSimilarLimit+5; i++ {
		env.addPosting(acme.ID, models.PostingStatusApproved, time.Duration(i+1)*time.Minute)
	}

	similar, err := env.matchingSvc.Similar(env.ctx, nil, source.ID, 0)
	require.NoError(t, err)
	assert.Len(t, similar, DefaultSimilarLimit)

	similar, err = env.matchingSvc.Similar(env.ctx, nil, source.ID, 1000)
	require.NoError(t, err)
	assert.Len(t, similar, MaxSimilarLimit)
}

func TestMatching_SimilarForInvisibleSource(t *testing.T) {
	env := newTestEnv(t)
	acme := env.newActor(models.RoleCompany, "acme")
	pending := env.addPosting(acme.ID, models.PostingStatusPending, 0)

	_, err := env.matchingSvc.Similar(env.ctx, nil, pending.ID, 5)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = env.matchingSvc.Similar(env.ctx, nil, "missing", 5)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
