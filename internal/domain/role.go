package domain

// Role names an authorization capability.
type Role string

const (
	// RoleSuperadmin is the blanket administrative role; it bypasses all
	// scoped-access checks.
	RoleSuperadmin Role = "ROLE_SUPERADMIN"
	// RoleOffice marks reviewers who confirm new registrations.
	RoleOffice Role = "ROLE_OFFICE"
	// RoleOperator is the default role for reporting operators.
	RoleOperator Role = "ROLE_OPERATOR"
	// RoleFederalState scopes a user to their affiliated federal state.
	RoleFederalState Role = "ROLE_FEDERAL_STATE"
	// RoleRessort scopes a user to their affiliated ressort.
	RoleRessort Role = "ROLE_RESSORT"
)
