// Package auth holds the role policy of the student administration routes.
package auth

import (
	"slices"

	"github.com/yigit/studentadmin/internal/app/models"
)

// Role sets, from the widest audience to the narrowest.
var (
	// Everyone holding an account, students included.
	AnyRole = []models.RoleType{models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff, models.RoleStudent}
	// Staff may read records and run bulk imports and exports.
	StaffRoles = []models.RoleType{models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff}
	// Admins may additionally edit records and reset single passwords.
	AdminRoles = []models.RoleType{models.RoleSuperAdmin, models.RoleAdmin}
	// Only the superadmin deletes, blocks and resets every password.
	SuperAdminRoles = []models.RoleType{models.RoleSuperAdmin}
)

// IsKnownRole reports whether role is one of the defined roles.
func IsKnownRole(role models.RoleType) bool {
	return slices.Contains(AnyRole, role)
}

// Allows reports whether role belongs to required.
func Allows(required []models.RoleType, role models.RoleType) bool {
	return slices.Contains(required, role)
}
