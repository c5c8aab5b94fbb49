package model

import (
	"fmt"
	"strings"
)

// StoredRole is the single role value persisted on a user row.
type StoredRole string

const (
	RoleCustomer StoredRole = "customer"
	RolePro      StoredRole = "pro"
	RoleBoth     StoredRole = "both"
	RoleAdmin    StoredRole = "admin"
)

// Capability is what crosses the API boundary: a user acts as a customer,
// a professional, or both.
type Capability string

const (
	CapabilityCustomer     Capability = "customer"
	CapabilityProfessional Capability = "professional"
)

func (r StoredRole) Valid() bool {
	switch r {
	case RoleCustomer, RolePro, RoleBoth, RoleAdmin:
		return true
	}
	return false
}

// Capabilities expands a stored role. Unknown values behave as customer.
func (r StoredRole) Capabilities() []Capability {
	switch r {
	case RolePro:
		return []Capability{CapabilityProfessional}
	case RoleBoth, RoleAdmin:
		return []Capability{CapabilityCustomer, CapabilityProfessional}
	default:
		return []Capability{CapabilityCustomer}
	}
}

func (r StoredRole) Has(c Capability) bool {
	for _, have := range r.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

// RoleFromCapabilities folds a capability set into a stored role. The empty
// set is a customer.
func RoleFromCapabilities(caps []Capability) StoredRole {
	var customer, pro bool
	for _, c := range caps {
		switch c {
		case CapabilityCustomer:
			customer = true
		case CapabilityProfessional:
			pro = true
		}
	}
	switch {
	case customer && pro:
		return RoleBoth
	case pro:
		return RolePro
	default:
		return RoleCustomer
	}
}

// ParseCapability accepts the API tags and their legacy aliases.
func ParseCapability(s string) (Capability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "customer", "client":
		return CapabilityCustomer, nil
	case "professional", "pro", "artisan":
		return CapabilityProfessional, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func ParseCapabilities(in []string) ([]Capability, error) {
	out := make([]Capability, 0, len(in))
	seen := make(map[Capability]bool, len(in))
	for _, s := range in {
		c, err := ParseCapability(s)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// MergeCapabilities returns the union of a role's capabilities and add.
func MergeCapabilities(r StoredRole, add []Capability) StoredRole {
	if r == RoleAdmin {
		return RoleAdmin
	}
	return RoleFromCapabilities(append(r.Capabilities(), add...))
}
