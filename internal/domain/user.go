package domain

import "time"

type RoleKind string

const (
	RoleStaff    RoleKind = "staff"
	RoleAdmin    RoleKind = "admin"
	RoleTopAdmin RoleKind = "top_admin"
)

// Identity is a login-capable account. Each identity owns exactly one Role row;
// the store enforces the one-to-one with a unique index on identity_id.
type Identity struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
}

type Role struct {
	ID             int64
	IdentityID     int64
	Kind           RoleKind
	FirstName      string
	LastName       string
	Phone          string
	ApprovalStatus bool
}

// IsAdminKind reports whether the role is one of the two administrator kinds
// that sit behind the approval gate.
func (r Role) IsAdminKind() bool {
	return r.Kind == RoleAdmin || r.Kind == RoleTopAdmin
}

// RoleProfile is a role joined with its identity's contact fields,
// used by approval screens and reports.
type RoleProfile struct {
	Role
	Username string
	Email    string
}
