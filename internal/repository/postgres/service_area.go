package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
)

const areaColumns = `id, artisan_user_id, area_name, radius_km,
	ST_Y(center::geometry) AS lat,
	ST_X(center::geometry) AS lng`

type serviceAreaRepository struct {
	BaseRepository
}

func NewServiceAreaRepository(db *sqlx.DB) repository.ServiceAreaRepository {
	return &serviceAreaRepository{NewBaseRepository(db)}
}

func (r *serviceAreaRepository) Create(ctx context.Context, area *model.ServiceArea) error {
	query := `
		INSERT INTO artisan_service_areas (artisan_user_id, area_name, center, radius_km)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5)
		RETURNING ` + areaColumns

	if err := r.get(ctx, area, query, area.ProfessionalID, area.AreaName, area.Lng, area.Lat, area.RadiusKm); err != nil {
		return fmt.Errorf("failed to create service area: %w", err)
	}
	return nil
}

// Update moves the center only when both coordinates are given.
func (r *serviceAreaRepository) Update(ctx context.Context, professionalID, id uuid.UUID, req *model.UpdateServiceAreaRequest) (*model.ServiceArea, error) {
	query := `
		UPDATE artisan_service_areas
		SET area_name = COALESCE($3, area_name),
			radius_km = COALESCE($4, radius_km),
			center = CASE
				WHEN $5::double precision IS NULL OR $6::double precision IS NULL THEN center
				ELSE ST_SetSRID(ST_MakePoint($6, $5), 4326)::geography
			END
		WHERE id = $1 AND artisan_user_id = $2
		RETURNING ` + areaColumns

	var area model.ServiceArea
	if err := r.get(ctx, &area, query, id, professionalID, req.AreaName, req.RadiusKm, req.Lat, req.Lng); err != nil {
		return nil, fmt.Errorf("failed to update service area: %w", err)
	}
	return &area, nil
}

func (r *serviceAreaRepository) Delete(ctx context.Context, professionalID, id uuid.UUID) error {
	res, err := r.exec(ctx, `DELETE FROM artisan_service_areas WHERE id = $1 AND artisan_user_id = $2`, id, professionalID)
	if err != nil {
		return fmt.Errorf("failed to delete service area: %w", err)
	}
	return expectOne(res)
}

func (r *serviceAreaRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*model.ServiceArea, error) {
	areas := []*model.ServiceArea{}
	query := `SELECT ` + areaColumns + ` FROM artisan_service_areas WHERE artisan_user_id = $1 ORDER BY created_at ASC`
	if err := r.selectAll(ctx, &areas, query, professionalID); err != nil {
		return nil, fmt.Errorf("failed to list service areas: %w", err)
	}
	return areas, nil
}
