package domain

import "errors"

// Role is the access level carried in an API token.
type Role string

const (
	// RoleAdmin can also void or delete cases and run backfills.
	RoleAdmin Role = "admin"

	// RoleOperator records cases, payments and expenses.
	RoleOperator Role = "operator"

	// RoleViewer only reads cases and reports.
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanWrite reports whether the role may record movements and edit cases.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanRemove reports whether the role may void or delete records.
func (r Role) CanRemove() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
