package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/account-service/internal/domain"
)

func TestHierarchyImplies(t *testing.T) {
	h := NewHierarchy(DefaultHierarchyEdges)

	tests := []struct {
		name string
		a    domain.Role
		b    domain.Role
		want bool
	}{
		{name: "self implication", a: domain.RoleOperator, b: domain.RoleOperator, want: true},
		{name: "direct edge", a: domain.RoleSuperadmin, b: domain.RoleOffice, want: true},
		{name: "transitive edge", a: domain.RoleSuperadmin, b: domain.RoleOperator, want: true},
		{name: "office implies operator", a: domain.RoleOffice, b: domain.RoleOperator, want: true},
		{name: "no upward implication", a: domain.RoleOperator, b: domain.RoleOffice, want: false},
		{name: "scoped roles stay outside", a: domain.RoleSuperadmin, b: domain.RoleFederalState, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Implies(tt.a, tt.b))
		})
	}
}

func TestHierarchySatisfies(t *testing.T) {
	h := NewHierarchy(DefaultHierarchyEdges)

	held := []domain.Role{domain.RoleRessort, domain.RoleOffice}
	assert.True(t, h.Satisfies(held, domain.RoleOperator))
	assert.True(t, h.Satisfies(held, domain.RoleOffice))
	assert.False(t, h.Satisfies(held, domain.RoleSuperadmin))
	assert.False(t, h.Satisfies(nil, domain.RoleOperator))
}

func TestHierarchyCustomEdges(t *testing.T) {
	h := NewHierarchy([]HierarchyEdge{
		{Higher: "A", Lower: "B"},
		{Higher: "B", Lower: "C"},
		{Higher: "C", Lower: "D"},
	})

	assert.True(t, h.Implies("A", "D"))
	assert.True(t, h.Implies("B", "D"))
	assert.False(t, h.Implies("D", "A"))
}
