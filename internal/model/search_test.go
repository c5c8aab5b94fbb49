package model

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchFiltersDefaults(t *testing.T) {
	f := ParseSearchFilters(url.Values{})

	assert.Nil(t, f.Category)
	assert.Nil(t, f.PriceMin)
	assert.Nil(t, f.PriceMax)
	assert.Nil(t, f.RatingMin)
	assert.Nil(t, f.Verified)
	assert.Nil(t, f.Location)
	assert.Equal(t, float64(DefaultSearchRadiusKm), f.RadiusKm)
	assert.Equal(t, SortDistance, f.Sort)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)
	assert.Equal(t, 0, f.Offset())
}

func TestParseSearchFiltersMalformedIsAbsent(t *testing.T) {
	f := ParseSearchFilters(url.Values{
		"price_min":  {"cheap"},
		"price_max":  {"NaN"},
		"rating_min": {"Inf"},
		"lat":        {"48.85"},
		"lng":        {""},
		"radius_km":  {"far"},
		"page":       {"abc"},
		"limit":      {"x"},
	})

	assert.Nil(t, f.PriceMin)
	assert.Nil(t, f.PriceMax)
	assert.Nil(t, f.RatingMin)
	assert.Nil(t, f.Location, "location needs both coordinates")
	assert.Equal(t, float64(DefaultSearchRadiusKm), f.RadiusKm)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)
}

func TestParseSearchFiltersValues(t *testing.T) {
	f := ParseSearchFilters(url.Values{
		"category":   {"plomberie"},
		"price_min":  {"20"},
		"price_max":  {"150.5"},
		"rating_min": {"4"},
		"verified":   {"true"},
		"lat":        {"48.8566"},
		"lng":        {"2.3522"},
		"radius_km":  {"5"},
		"sort":       {"price"},
		"page":       {"3"},
		"limit":      {"10"},
	})

	require.NotNil(t, f.Category)
	assert.Equal(t, "plomberie", *f.Category)
	assert.Equal(t, 20.0, *f.PriceMin)
	assert.Equal(t, 150.5, *f.PriceMax)
	assert.Equal(t, 4.0, *f.RatingMin)
	assert.True(t, *f.Verified)
	require.NotNil(t, f.Location)
	assert.Equal(t, 48.8566, f.Location.Lat)
	assert.Equal(t, 5.0, f.RadiusKm)
	assert.Equal(t, SortPrice, f.Sort)
	assert.Equal(t, 20, f.Offset())
}

func TestParseSearchFiltersVerifiedOnlyLiteralTrue(t *testing.T) {
	f := ParseSearchFilters(url.Values{"verified": {"1"}})
	require.NotNil(t, f.Verified)
	assert.False(t, *f.Verified)
}

func TestParseSearchFiltersOutOfRangeCoordinates(t *testing.T) {
	f := ParseSearchFilters(url.Values{"lat": {"123"}, "lng": {"2"}})
	assert.Nil(t, f.Location)
}

func TestParseSearchFiltersPaginationBounds(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"0", "0", 1, 1},
		{"-4", "-10", 1, 1},
		{"2", "500", 2, MaxPageSize},
		{"1.7", "12.9", 1, 12},
		{"1e18", "50", MaxPage, MaxPageSize},
		{"1e300", "50", MaxPage, MaxPageSize},
	}
	for _, tt := range tests {
		f := ParseSearchFilters(url.Values{"page": {tt.page}, "limit": {tt.limit}})
		assert.Equal(t, tt.wantPage, f.Page, "page=%s", tt.page)
		assert.Equal(t, tt.wantLimit, f.Limit, "limit=%s", tt.limit)
		assert.GreaterOrEqual(t, f.Page, 1)
		assert.GreaterOrEqual(t, f.Offset(), 0)
	}
}
