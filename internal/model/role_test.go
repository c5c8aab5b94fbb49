package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleFromCapabilities(t *testing.T) {
	tests := []struct {
		name string
		caps []Capability
		want StoredRole
	}{
		{"empty is customer", nil, RoleCustomer},
		{"customer", []Capability{CapabilityCustomer}, RoleCustomer},
		{"professional", []Capability{CapabilityProfessional}, RolePro},
		{"both", []Capability{CapabilityProfessional, CapabilityCustomer}, RoleBoth},
		{"duplicates", []Capability{CapabilityProfessional, CapabilityProfessional}, RolePro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleFromCapabilities(tt.caps))
		})
	}
}

func TestRoleRoundTrip(t *testing.T) {
	for _, r := range []StoredRole{RoleCustomer, RolePro, RoleBoth} {
		assert.Equal(t, r, RoleFromCapabilities(r.Capabilities()), string(r))
	}
	assert.ElementsMatch(t, []Capability{CapabilityCustomer, CapabilityProfessional}, RoleAdmin.Capabilities())
	assert.Equal(t, []Capability{CapabilityCustomer}, StoredRole("legacy").Capabilities())
}

func TestParseCapabilities(t *testing.T) {
	caps, err := ParseCapabilities([]string{"client", "artisan", "Professional"})
	require.NoError(t, err)
	assert.Equal(t, []Capability{CapabilityCustomer, CapabilityProfessional}, caps)

	_, err = ParseCapabilities([]string{"superuser"})
	assert.Error(t, err)
}

func TestMergeCapabilities(t *testing.T) {
	assert.Equal(t, RoleBoth, MergeCapabilities(RoleCustomer, []Capability{CapabilityProfessional}))
	assert.Equal(t, RolePro, MergeCapabilities(RolePro, nil))
	assert.Equal(t, RoleAdmin, MergeCapabilities(RoleAdmin, []Capability{CapabilityCustomer}))
	assert.True(t, RoleBoth.Has(CapabilityProfessional))
	assert.False(t, RoleCustomer.Has(CapabilityProfessional))
}
