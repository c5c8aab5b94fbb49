package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/allservices/marketplace-api/internal/model"
)

// professionalRoles are the stored roles that carry the professional capability.
const professionalRoles = `u.role IN ('pro', 'both', 'admin')`

type queryArgs struct {
	values []interface{}
}

// add appends v and returns its placeholder.
func (a *queryArgs) add(v interface{}) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// BuildSearchQuery renders the professional search as a single parameterised
// statement. An area qualifies for a location search when it covers the
// point (radius clamped to at least 1 km) and its center is within the
// requested search radius.
func BuildSearchQuery(f model.SearchFilters) (string, []interface{}) {
	args := &queryArgs{}
	where := []string{professionalRoles}

	if f.Verified != nil {
		where = append(where, "ap.is_verified = "+args.add(*f.Verified))
	}
	if f.RatingMin != nil {
		where = append(where, "ap.rating_avg >= "+args.add(*f.RatingMin))
	}

	if f.Category != nil || f.PriceMin != nil || f.PriceMax != nil {
		serviceWhere := []string{"s.is_active = TRUE"}
		if f.Category != nil {
			serviceWhere = append(serviceWhere, "sc.slug = "+args.add(*f.Category))
		}
		if f.PriceMin != nil {
			serviceWhere = append(serviceWhere, "s.price_amount >= "+args.add(*f.PriceMin))
		}
		if f.PriceMax != nil {
			serviceWhere = append(serviceWhere, "s.price_amount <= "+args.add(*f.PriceMax))
		}
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM services s
			JOIN service_categories sc ON sc.id = s.category_id
			WHERE s.artisan_user_id = u.id AND %s
		)`, strings.Join(serviceWhere, " AND ")))
	}

	nearSelect := `NULL::double precision AS distance_km,
		NULL::double precision AS lat,
		NULL::double precision AS lng`
	nearJoin := ""
	if f.Location != nil {
		lng := args.add(f.Location.Lng)
		lat := args.add(f.Location.Lat)
		point := fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography", lng, lat)
		radius := args.add(f.RadiusKm * 1000)

		nearJoin = fmt.Sprintf(`
		JOIN LATERAL (
			SELECT ST_Distance(asa.center, %[1]s) / 1000 AS distance_km,
				ST_Y(asa.center::geometry) AS lat,
				ST_X(asa.center::geometry) AS lng
			FROM artisan_service_areas asa
			WHERE asa.artisan_user_id = u.id
				AND asa.center IS NOT NULL
				AND ST_DWithin(asa.center, %[1]s, GREATEST(asa.radius_km, 1) * 1000)
				AND ST_DWithin(asa.center, %[1]s, %[2]s)
			ORDER BY ST_Distance(asa.center, %[1]s) ASC
			LIMIT 1
		) near ON TRUE`, point, radius)
		nearSelect = `near.distance_km, near.lat, near.lng`
	}

	limit := args.add(f.Limit)
	offset := args.add(f.Offset())

	query := fmt.Sprintf(`
		SELECT
			u.id,
			u.first_name,
			u.last_name,
			u.avatar_url,
			ap.business_name,
			ap.bio,
			ap.is_verified,
			ap.rating_avg,
			ap.reviews_count,
			%s,
			(
				SELECT MIN(s.price_amount)
				FROM services s
				WHERE s.artisan_user_id = u.id AND s.is_active = TRUE
			) AS min_price
		FROM users u
		JOIN artisan_profiles ap ON ap.user_id = u.id%s
		WHERE %s
		ORDER BY %s, u.id ASC
		LIMIT %s OFFSET %s`,
		nearSelect, nearJoin, strings.Join(where, " AND "), orderBy(f.Sort), limit, offset)

	return query, args.values
}

func orderBy(sort model.SearchSort) string {
	switch sort {
	case model.SortDistance:
		return "distance_km ASC NULLS LAST"
	case model.SortPrice:
		return "min_price ASC NULLS LAST"
	case model.SortNewest:
		return "u.created_at DESC"
	default:
		return "ap.rating_avg DESC"
	}
}

func (r *professionalRepository) Search(ctx context.Context, filters model.SearchFilters) ([]*model.ProfessionalSummary, error) {
	query, args := BuildSearchQuery(filters)

	items := []*model.ProfessionalSummary{}
	if err := r.selectAll(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search professionals: %w", err)
	}
	return items, nil
}
