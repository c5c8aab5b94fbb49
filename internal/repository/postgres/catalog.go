package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

const serviceColumns = `id, artisan_user_id, category_id, title, description, price_type,
	price_amount, duration_minutes, is_emergency_available, is_travel_included,
	is_active, created_at, updated_at`

type catalogRepository struct {
	BaseRepository
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{NewBaseRepository(db)}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*model.ServiceCategory, error) {
	categories := []*model.ServiceCategory{}
	if err := r.selectAll(ctx, &categories, `SELECT id, name, slug FROM service_categories ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.ServiceCategory, error) {
	var c model.ServiceCategory
	if err := r.get(ctx, &c, `SELECT id, name, slug FROM service_categories WHERE slug = $1`, slug); err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *catalogRepository) CreateService(ctx context.Context, svc *model.Service) error {
	query := `
		INSERT INTO services (
			artisan_user_id, category_id, title, description, price_type, price_amount,
			duration_minutes, is_emergency_available, is_travel_included
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + serviceColumns

	err := r.get(ctx, svc, query,
		svc.ProfessionalID,
		svc.CategoryID,
		svc.Title,
		svc.Description,
		svc.PriceType,
		svc.PriceAmount,
		svc.DurationMinutes,
		svc.IsEmergencyAvailable,
		svc.IsTravelIncluded,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *catalogRepository) UpdateService(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	query := `
		UPDATE services
		SET title = COALESCE($3, title),
			description = COALESCE($4, description),
			price_type = COALESCE($5, price_type),
			price_amount = COALESCE($6, price_amount),
			duration_minutes = COALESCE($7, duration_minutes),
			is_emergency_available = COALESCE($8, is_emergency_available),
			is_travel_included = COALESCE($9, is_travel_included),
			is_active = COALESCE($10, is_active),
			updated_at = NOW()
		WHERE id = $1 AND artisan_user_id = $2
		RETURNING ` + serviceColumns

	var svc model.Service
	err := r.get(ctx, &svc, query,
		id,
		professionalID,
		req.Title,
		req.Description,
		req.PriceType,
		req.PriceAmount,
		req.DurationMinutes,
		req.IsEmergencyAvailable,
		req.IsTravelIncluded,
		req.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return &svc, nil
}

func (r *catalogRepository) DeactivateService(ctx context.Context, professionalID, id uuid.UUID) error {
	query := `UPDATE services SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND artisan_user_id = $2`
	res, err := r.exec(ctx, query, id, professionalID)
	if err != nil {
		return fmt.Errorf("failed to deactivate service: %w", err)
	}
	return expectOne(res)
}

func (r *catalogRepository) GetActiveService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var svc model.Service
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND is_active = TRUE`
	if err := r.get(ctx, &svc, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (r *catalogRepository) ListServices(ctx context.Context, professionalID uuid.UUID, activeOnly bool) ([]*model.ServiceListing, error) {
	query := `
		SELECT s.id, s.artisan_user_id, s.category_id, s.title, s.description, s.price_type,
			s.price_amount, s.duration_minutes, s.is_emergency_available, s.is_travel_included,
			s.is_active, s.created_at, s.updated_at,
			sc.name AS category_name, sc.slug AS category_slug
		FROM services s
		JOIN service_categories sc ON sc.id = s.category_id
		WHERE s.artisan_user_id = $1 AND ($2 = FALSE OR s.is_active = TRUE)
		ORDER BY s.created_at DESC
	`
	services := []*model.ServiceListing{}
	if err := r.selectAll(ctx, &services, query, professionalID, activeOnly); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
