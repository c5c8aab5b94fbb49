package professional

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
)

// DetailReviewLimit is how many recent reviews the detail view carries.
const DetailReviewLimit = 20

type Service struct {
	tx          repository.Transactor
	repo        repository.ProfessionalRepository
	areaRepo    repository.ServiceAreaRepository
	catalogRepo repository.CatalogRepository
	reviewRepo  repository.ReviewRepository
}

func NewService(
	tx repository.Transactor,
	repo repository.ProfessionalRepository,
	areaRepo repository.ServiceAreaRepository,
	catalogRepo repository.CatalogRepository,
	reviewRepo repository.ReviewRepository,
) *Service {
	return &Service{
		tx:          tx,
		repo:        repo,
		areaRepo:    areaRepo,
		catalogRepo: catalogRepo,
		reviewRepo:  reviewRepo,
	}
}

// GetDetail assembles the public view of a professional.
func (s *Service) GetDetail(ctx context.Context, id uuid.UUID) (*model.ProfessionalDetail, error) {
	card, err := s.repo.GetCard(ctx, id)
	if err != nil {
		return nil, mapError("professional", err)
	}

	services, err := s.catalogRepo.ListServices(ctx, id, true)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	reviews, err := s.reviewRepo.ListForProfessional(ctx, id, DetailReviewLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	areas, err := s.areaRepo.ListByProfessional(ctx, id)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.ProfessionalDetail{
		Professional: card,
		Services:     services,
		Reviews:      reviews,
		ServiceAreas: areas,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfessionalProfile, error) {
	var profile *model.ProfessionalProfile
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.EnsureProfile(ctx, userID); err != nil {
			return err
		}
		p, err := s.repo.UpdateProfile(ctx, userID, req)
		profile = p
		return err
	})
	if err != nil {
		return nil, mapError("professional profile", err)
	}
	return profile, nil
}

func (s *Service) AddServiceArea(ctx context.Context, userID uuid.UUID, req *model.ServiceAreaRequest) (*model.ServiceArea, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, apperrors.BadRequest("lat and lng are required", nil)
	}
	radius := model.DefaultAreaRadiusKm
	if req.RadiusKm != nil {
		radius = *req.RadiusKm
	}

	area := &model.ServiceArea{
		ProfessionalID: userID,
		AreaName:       req.AreaName,
		Lat:            req.Lat,
		Lng:            req.Lng,
		RadiusKm:       radius,
	}
	if err := s.areaRepo.Create(ctx, area); err != nil {
		return nil, apperrors.Internal(err)
	}
	return area, nil
}

func (s *Service) UpdateServiceArea(ctx context.Context, userID, id uuid.UUID, req *model.UpdateServiceAreaRequest) (*model.ServiceArea, error) {
	if (req.Lat == nil) != (req.Lng == nil) {
		return nil, apperrors.BadRequest("lat and lng must be given together", nil)
	}
	area, err := s.areaRepo.Update(ctx, userID, id, req)
	if err != nil {
		return nil, mapError("service area", err)
	}
	return area, nil
}

func (s *Service) DeleteServiceArea(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.areaRepo.Delete(ctx, userID, id); err != nil {
		return mapError("service area", err)
	}
	return nil
}

func (s *Service) ListServiceAreas(ctx context.Context, userID uuid.UUID) ([]*model.ServiceArea, error) {
	areas, err := s.areaRepo.ListByProfessional(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return areas, nil
}

func mapError(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(fmt.Errorf("%s: %w", resource, err))
}
