package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
)

const categoriesKey = "categories"

type Config struct {
	CacheDuration   time.Duration
	CleanupInterval time.Duration
}

type Service struct {
	repo  repository.CatalogRepository
	cache *cache.Cache
}

func NewService(repo repository.CatalogRepository, cfg Config) *Service {
	if cfg.CacheDuration <= 0 {
		cfg.CacheDuration = 10 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 2 * cfg.CacheDuration
	}
	return &Service{
		repo:  repo,
		cache: cache.New(cfg.CacheDuration, cfg.CleanupInterval),
	}
}

// ListCategories serves the seeded category list from memory.
func (s *Service) ListCategories(ctx context.Context) ([]*model.ServiceCategory, error) {
	if cached, ok := s.cache.Get(categoriesKey); ok {
		return cached.([]*model.ServiceCategory), nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	s.cache.SetDefault(categoriesKey, categories)
	return categories, nil
}

// ListServices returns the active catalog of a professional, newest first.
func (s *Service) ListServices(ctx context.Context, professionalID uuid.UUID) ([]*model.ServiceListing, error) {
	services, err := s.repo.ListServices(ctx, professionalID, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return services, nil
}

func (s *Service) CreateService(ctx context.Context, professionalID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, req.CategorySlug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.BadRequest("unknown category_slug", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	priceType := req.PriceType
	if priceType == "" {
		priceType = model.PriceStartingFrom
	}
	if !priceType.Valid() {
		return nil, apperrors.BadRequest("invalid price_type", nil)
	}

	svc := &model.Service{
		ProfessionalID:       professionalID,
		CategoryID:           category.ID,
		Title:                req.Title,
		Description:          req.Description,
		PriceType:            priceType,
		PriceAmount:          *req.PriceAmount,
		DurationMinutes:      req.DurationMinutes,
		IsEmergencyAvailable: req.IsEmergencyAvailable,
		IsTravelIncluded:     req.IsTravelIncluded,
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, apperrors.Internal(err)
	}
	return svc, nil
}

// UpdateService patches a service owned by professionalID; other owners see not found.
func (s *Service) UpdateService(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	if req.PriceType != nil && !req.PriceType.Valid() {
		return nil, apperrors.BadRequest("invalid price_type", nil)
	}
	svc, err := s.repo.UpdateService(ctx, professionalID, id, req)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("service", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return svc, nil
}

// DeleteService deactivates the service; bookings keep referencing it.
func (s *Service) DeleteService(ctx context.Context, professionalID, id uuid.UUID) error {
	err := s.repo.DeactivateService(ctx, professionalID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("service", err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
