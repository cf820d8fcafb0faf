package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carhub/carhub-web/internal/domain/auth"
)

func TestMapRole(t *testing.T) {
	m := NewStaticRoleMapper("mechanics", "admins")

	tests := []struct {
		name   string
		groups []string
		want   auth.Role
	}{
		{"admin group", []string{"admins"}, auth.RoleAdmin},
		{"mechanic group", []string{"mechanics"}, auth.RoleMechanic},
		{"no groups", nil, auth.RoleUser},
		{"unrelated groups", []string{"billing", "support"}, auth.RoleUser},
		{"admin wins over mechanic", []string{"mechanics", "admins"}, auth.RoleAdmin},
		{"case insensitive", []string{"Admins"}, auth.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}
}
