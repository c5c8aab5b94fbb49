//go:build integration

package api_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingFlow(t *testing.T) {
	customer := register(t, "client", "customer")
	pro := register(t, "artisan", "professional")

	// Catalog and coverage
	svcResp := makeRequest(http.MethodPost, "/artisan/services", map[string]interface{}{
		"category_slug": "plomberie",
		"title":         "Fuite d'eau",
		"price_type":    "fixed",
		"price_amount":  80.5,
	}, pro.Token)
	require.True(t, svcResp.IsSuccess(), "Failed to create service: %s", svcResp.Message)
	serviceID := svcResp.GetString("id")

	areaResp := makeRequest(http.MethodPost, "/artisans/me/service-areas", map[string]interface{}{
		"area_name": "Paris",
		"lat":       48.8566,
		"lng":       2.3522,
		"radius_km": 20,
	}, pro.Token)
	require.True(t, areaResp.IsSuccess(), "Failed to add service area: %s", areaResp.Message)

	// Search finds the professional near Paris
	searchResp := makeRequest(http.MethodGet, "/artisans?category=plomberie&lat=48.86&lng=2.35&radius_km=10&limit=100", nil, "")
	require.True(t, searchResp.IsSuccess())
	found := false
	for _, item := range searchResp.Items() {
		if item["id"] == pro.ID {
			found = true
		}
	}
	assert.True(t, found, "professional missing from search results")

	// Book
	bookResp := makeRequest(http.MethodPost, "/bookings", map[string]interface{}{
		"service_id": serviceID,
		"start_at":   time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"address": map[string]interface{}{
			"address_line1": "1 rue de Rivoli",
			"city":          "Paris",
			"lat":           48.8606,
			"lng":           2.3376,
		},
	}, customer.Token)
	require.True(t, bookResp.IsSuccess(), "Failed to book: %s", bookResp.Message)
	bookingID := bookResp.GetString("id")
	assert.Equal(t, "pending", bookResp.GetString("status"))

	// Review is refused before completion
	early := makeRequest(http.MethodPost, "/reviews", map[string]interface{}{"booking_id": bookingID, "rating": 5}, customer.Token)
	assert.Equal(t, http.StatusConflict, early.Code)

	// Accept twice: the second call changes nothing
	accept := makeRequest(http.MethodPost, fmt.Sprintf("/artisan/bookings/%s/accept", bookingID), nil, pro.Token)
	require.True(t, accept.IsSuccess(), accept.Message)
	assert.Equal(t, "accepted", accept.GetString("status"))

	again := makeRequest(http.MethodPost, fmt.Sprintf("/artisan/bookings/%s/accept", bookingID), nil, pro.Token)
	assert.True(t, again.IsSuccess())
	assert.Nil(t, again.Data)

	// Customers cannot act on the professional side
	forbidden := makeRequest(http.MethodPost, fmt.Sprintf("/artisan/bookings/%s/complete", bookingID), nil, customer.Token)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	complete := makeRequest(http.MethodPost, fmt.Sprintf("/artisan/bookings/%s/complete", bookingID), nil, pro.Token)
	require.True(t, complete.IsSuccess(), complete.Message)
	assert.Equal(t, "completed", complete.GetString("status"))

	// Completed bookings cannot be cancelled
	cancel := makeRequest(http.MethodPost, fmt.Sprintf("/bookings/%s/cancel", bookingID), nil, customer.Token)
	assert.Equal(t, http.StatusConflict, cancel.Code)

	// Review and aggregate
	bad := makeRequest(http.MethodPost, "/reviews", map[string]interface{}{"booking_id": bookingID, "rating": 6}, customer.Token)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	review := makeRequest(http.MethodPost, "/reviews", map[string]interface{}{"booking_id": bookingID, "rating": 4, "comment": "Rapide"}, customer.Token)
	require.True(t, review.IsSuccess(), review.Message)

	detail := makeRequest(http.MethodGet, "/artisans/"+pro.ID, nil, "")
	require.True(t, detail.IsSuccess(), detail.Message)
	card, _ := detail.Data["artisan"].(map[string]interface{})
	assert.EqualValues(t, 4, card["rating_avg"])
	assert.EqualValues(t, 1, card["reviews_count"])

	reviews := makeRequest(http.MethodGet, "/reviews/artisan/"+pro.ID, nil, "")
	require.True(t, reviews.IsSuccess())
	assert.Len(t, reviews.Items(), 1)
}

func TestAuthGuards(t *testing.T) {
	resp := makeRequest(http.MethodGet, "/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	customer := register(t, "guard", "customer")
	resp = makeRequest(http.MethodGet, "/artisan/bookings", nil, customer.Token)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Another customer sees a missing payment target, not a forbidden one
	other := register(t, "other", "customer")
	resp = makeRequest(http.MethodPost, "/payments/create-intent", map[string]interface{}{
		"booking_id": "7f1b6a2e-3c4d-4e5f-8a9b-0c1d2e3f4a5b",
	}, other.Token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchExcludesUncoveredAndInactive(t *testing.T) {
	offer := func(t *testing.T, prefix string, lat, lng, radius float64) (account, string) {
		pro := register(t, prefix, "professional")
		svc := makeRequest(http.MethodPost, "/artisan/services", map[string]interface{}{
			"category_slug": "plomberie",
			"title":         "Débouchage",
			"price_type":    "fixed",
			"price_amount":  60,
		}, pro.Token)
		require.True(t, svc.IsSuccess(), "Failed to create service: %s", svc.Message)

		area := makeRequest(http.MethodPost, "/artisans/me/service-areas", map[string]interface{}{
			"area_name": prefix,
			"lat":       lat,
			"lng":       lng,
			"radius_km": radius,
		}, pro.Token)
		require.True(t, area.IsSuccess(), "Failed to add service area: %s", area.Message)
		return pro, svc.GetString("id")
	}

	// Each run gets its own cell, at least ~20km from the others
	cell := time.Now().UnixNano() % 400
	lat := 43.0 + float64(cell/20)*0.3
	lng := 0.5 + float64(cell%20)*0.3

	near, _ := offer(t, "proche", lat, lng, 10)
	far, _ := offer(t, "loin", lat+1, lng, 20)
	inactive, inactiveSvc := offer(t, "inactif", lat, lng, 10)

	off := makeRequest(http.MethodPatch, "/artisan/services/"+inactiveSvc, map[string]interface{}{"is_active": false}, inactive.Token)
	require.True(t, off.IsSuccess(), "Failed to deactivate service: %s", off.Message)

	resp := makeRequest(http.MethodGet, fmt.Sprintf("/artisans?category=plomberie&lat=%f&lng=%f&radius_km=5&limit=50", lat, lng), nil, "")
	require.True(t, resp.IsSuccess(), resp.Message)

	ids := map[interface{}]bool{}
	for _, item := range resp.Items() {
		ids[item["id"]] = true
	}
	assert.True(t, ids[near.ID], "covering professional missing")
	assert.False(t, ids[far.ID], "area outside the search radius must be excluded")
	assert.False(t, ids[inactive.ID], "inactive service must not match the category")
}
