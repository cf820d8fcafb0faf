package authroles

// Package authroles maps identity-provider group membership onto
// application roles.

import (
	"strings"

	"github.com/carhub/carhub-web/internal/domain/auth"
	"github.com/carhub/carhub-web/internal/ports"
)

// StaticRoleMapper maps provider groups to roles using two configured
// group names. Admin wins over mechanic when a user is in both.
type StaticRoleMapper struct {
	mechanicGroup string
	adminGroup    string
}

var _ ports.RoleMapper = (*StaticRoleMapper)(nil)

// NewStaticRoleMapper creates a mapper with the given group names.
func NewStaticRoleMapper(mechanicGroup, adminGroup string) *StaticRoleMapper {
	return &StaticRoleMapper{
		mechanicGroup: strings.ToLower(mechanicGroup),
		adminGroup:    strings.ToLower(adminGroup),
	}
}

// Map returns the role for the given provider groups. Group comparison
// is case-insensitive; anyone outside both groups is a plain user.
func (m *StaticRoleMapper) Map(groups []string) auth.Role {
	mechanic := false
	for _, g := range groups {
		switch strings.ToLower(g) {
		case m.adminGroup:
			return auth.RoleAdmin
		case m.mechanicGroup:
			mechanic = true
		}
	}
	if mechanic {
		return auth.RoleMechanic
	}
	return auth.RoleUser
}
