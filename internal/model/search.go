package model

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/allservices/marketplace-api/pkg/geo"
)

type SearchSort string

const (
	SortDistance SearchSort = "distance"
	SortPrice    SearchSort = "price"
	SortRating   SearchSort = "rating"
	SortNewest   SearchSort = "newest"
)

const (
	DefaultSearchRadiusKm = 10
	DefaultPageSize       = 20
	MaxPageSize           = 50
	// MaxPage keeps (page-1)*limit well inside int range.
	MaxPage               = 1_000_000
)

// SearchFilters is the normalised form of a search query string. Pointer
// fields are absent when nil.
type SearchFilters struct {
	Category  *string
	PriceMin  *float64
	PriceMax  *float64
	RatingMin *float64
	Verified  *bool
	Location  *geo.Point
	RadiusKm  float64
	Sort      SearchSort
	Page      int
	Limit     int
}

func (f SearchFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ParseSearchFilters never fails: malformed values are treated as absent.
func ParseSearchFilters(q url.Values) SearchFilters {
	f := SearchFilters{
		RadiusKm: DefaultSearchRadiusKm,
		Sort:     SortDistance,
		Page:     1,
		Limit:    DefaultPageSize,
	}

	if c := strings.TrimSpace(q.Get("category")); c != "" {
		f.Category = &c
	}
	f.PriceMin = parseNumber(q.Get("price_min"))
	f.PriceMax = parseNumber(q.Get("price_max"))
	f.RatingMin = parseNumber(q.Get("rating_min"))

	if _, ok := q["verified"]; ok {
		v := q.Get("verified") == "true"
		f.Verified = &v
	}

	lat, lng := parseNumber(q.Get("lat")), parseNumber(q.Get("lng"))
	if lat != nil && lng != nil {
		p := geo.Point{Lat: *lat, Lng: *lng}
		if p.Valid() {
			f.Location = &p
		}
	}
	if r := parseNumber(q.Get("radius_km")); r != nil && *r > 0 {
		f.RadiusKm = *r
	}

	if s := q.Get("sort"); s != "" {
		f.Sort = SearchSort(s)
	}
	if p := parseNumber(q.Get("page")); p != nil {
		f.Page = int(math.Min(MaxPage, math.Max(1, math.Floor(*p))))
	}
	if l := parseNumber(q.Get("limit")); l != nil {
		f.Limit = int(math.Min(MaxPageSize, math.Max(1, math.Floor(*l))))
	}

	return f
}

// parseNumber returns nil for empty or non-finite input.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	return &n
}

type SearchResult struct {
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
	Items []*ProfessionalSummary `json:"items"`
}
