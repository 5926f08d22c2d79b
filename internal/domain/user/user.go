package user

import (
	"errors"
	"time"
)

// Role is a closed enum; every branch in the portal dispatches on it
// rather than comparing raw strings.
type Role string

const (
	// RoleLimited is the default tier for new sign-ups. Limited accounts
	// can browse the catalog but never reach the gate form.
	RoleLimited Role = "limited"

	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleLimited, RoleInvestor, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanAccessGatedContent reports whether the role clears the document gate.
func (r Role) CanAccessGatedContent() bool {
	return r == RoleInvestor || r == RoleAdmin
}

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
	ErrInvalidRole      = errors.New("invalid role")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=120"`
	Phone string `json:"phone" binding:"required,min=5,max=32"`
}

type SetRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=limited investor admin"`
}
