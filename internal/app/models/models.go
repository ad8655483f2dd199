package models

// RoleType is the role claim carried by access tokens.
type RoleType string

const (
	RoleSuperAdmin RoleType = "superadmin"
	RoleAdmin      RoleType = "admin"
	RoleStaff      RoleType = "staff"
	RoleStudent    RoleType = "student"
)
