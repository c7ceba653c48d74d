package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole determines which transitions an actor may drive.
type UserRole string

const (
	UserRoleCustomer  UserRole = "CUSTOMER"
	UserRoleDesigner  UserRole = "DESIGNER"
	UserRoleValidator UserRole = "VALIDATOR"
	UserRolePrintShop UserRole = "PRINT_SHOP"
	UserRoleAdmin     UserRole = "ADMIN"
)

var userRoles = map[UserRole]struct{}{
	UserRoleCustomer:  {},
	UserRoleDesigner:  {},
	UserRoleValidator: {},
	UserRolePrintShop: {},
	UserRoleAdmin:     {},
}

// ParseUserRole converts raw input into UserRole, rejecting unknown values.
func ParseUserRole(s string) (UserRole, bool) {
	role := UserRole(s)
	_, ok := userRoles[role]
	return role, ok
}

// User represents a registered actor in the ordering pipeline.
type User struct {
	ID           uuid.UUID
	Login        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}
