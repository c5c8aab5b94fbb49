package search

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

type Service struct {
	repo    repository.ProfessionalRepository
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.ProfessionalRepository, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, metrics: m, logger: log}
}

// Search runs a normalised query. Filters must come from
// model.ParseSearchFilters so page and limit are already bounded.
func (s *Service) Search(ctx context.Context, filters model.SearchFilters) (*model.SearchResult, error) {
	timer := prometheus.NewTimer(s.metrics.SearchLatency)
	defer timer.ObserveDuration()

	items, err := s.repo.Search(ctx, filters)
	if err != nil {
		s.metrics.DatabaseOperations.WithLabelValues("search", "error").Inc()
		s.logger.Error(err, "search failed")
		return nil, apperrors.Internal(err)
	}
	s.metrics.DatabaseOperations.WithLabelValues("search", "success").Inc()
	if items == nil {
		items = []*model.ProfessionalSummary{}
	}

	return &model.SearchResult{
		Page:  filters.Page,
		Limit: filters.Limit,
		Items: items,
	}, nil
}
