package models

import "time"

// Role represents the closed set of staff roles recognised by the RBAC layer.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleTeacher    Role = "teacher"
	RoleFranchise  Role = "franchise"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTeacher, RoleFranchise:
		return true
	}
	return false
}

// Profile represents a staff principal (teacher, super admin or franchise
// operator). One profile per authenticated account; the role is assigned at
// provisioning time and never mutated through this API.
type Profile struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	Address      string     `db:"address" json:"address,omitempty"`
	Role         Role       `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role      *Role
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
