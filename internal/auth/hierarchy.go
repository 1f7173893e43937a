package auth

import "github.com/spec-kit/account-service/internal/domain"

// Hierarchy is a directed ordering over roles built once at startup.
// Implies(a, b) answers "does holding a satisfy a requirement for b".
// The scoped federal-state/ressort check in the account service is a flat
// membership check and never consults this ordering.
type Hierarchy struct {
	implied map[domain.Role]map[domain.Role]struct{}
}

// HierarchyEdge declares one "higher includes lower" pair.
type HierarchyEdge struct {
	Higher domain.Role
	Lower  domain.Role
}

// DefaultHierarchyEdges is the coarse admin/operator ordering.
var DefaultHierarchyEdges = []HierarchyEdge{
	{Higher: domain.RoleSuperadmin, Lower: domain.RoleOffice},
	{Higher: domain.RoleOffice, Lower: domain.RoleOperator},
}

// NewHierarchy builds the transitive closure of the given edges.
func NewHierarchy(edges []HierarchyEdge) *Hierarchy {
	direct := make(map[domain.Role][]domain.Role)
	for _, e := range edges {
		direct[e.Higher] = append(direct[e.Higher], e.Lower)
	}

	h := &Hierarchy{implied: make(map[domain.Role]map[domain.Role]struct{})}
	for higher := range direct {
		reach := make(map[domain.Role]struct{})
		stack := append([]domain.Role(nil), direct[higher]...)
		for len(stack) > 0 {
			role := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := reach[role]; seen {
				continue
			}
			reach[role] = struct{}{}
			stack = append(stack, direct[role]...)
		}
		h.implied[higher] = reach
	}
	return h
}

// Implies reports whether holding role a satisfies a requirement for role b.
// Every role implies itself.
func (h *Hierarchy) Implies(a, b domain.Role) bool {
	if a == b {
		return true
	}
	_, ok := h.implied[a][b]
	return ok
}

// Satisfies reports whether any held role implies the required one.
func (h *Hierarchy) Satisfies(held []domain.Role, required domain.Role) bool {
	for _, r := range held {
		if h.Implies(r, required) {
			return true
		}
	}
	return false
}
