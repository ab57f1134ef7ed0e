// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"

	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

// Role identifies one of the fixed actor kinds. Each role has its own account namespace.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleCompany Role = "COMPANY"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleCompany}

// ParseRole matches s case-insensitively against the closed set of roles.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleCompany:
		return RoleCompany, nil
	default:
		return "", domainerror.ErrUnknownRole
	}
}

// Label returns the human-readable name used in notifications.
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	case RoleCompany:
		return "Partner Company"
	default:
		return "User"
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
