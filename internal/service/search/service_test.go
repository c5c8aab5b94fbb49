package search

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository/mocks"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

func TestSearch(t *testing.T) {
	repo := &mocks.ProfessionalRepository{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewService(repo, m, logger.Nop())

	filters := model.ParseSearchFilters(url.Values{
		"category": {"plomberie"},
		"lat":      {"48.8566"},
		"lng":      {"2.3522"},
		"limit":    {"500"},
	})
	items := []*model.ProfessionalSummary{{ID: uuid.New()}}
	repo.On("Search", mock.Anything, filters).Return(items, nil)

	res, err := svc.Search(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, model.MaxPageSize, res.Limit)
	assert.Equal(t, items, res.Items)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("search", "success")))
}

func TestSearch_Error(t *testing.T) {
	repo := &mocks.ProfessionalRepository{}
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewService(repo, m, logger.Nop())

	repo.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Search(context.Background(), model.ParseSearchFilters(url.Values{}))
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("search", "error")))
}
