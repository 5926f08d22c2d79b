package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
)

// ErrReservedAdmin rejects role changes on the seeded bootstrap admin, so
// the one account guaranteed to hold admin rights can never be locked out.
var ErrReservedAdmin = errors.New("bootstrap admin role cannot be changed")

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error)
}

type Manager struct {
	users         UserStore
	reservedEmail string
}

func NewManager(users UserStore, reservedAdminEmail string) *Manager {
	return &Manager{
		users:         users,
		reservedEmail: strings.ToLower(reservedAdminEmail),
	}
}

// SetRole changes the target's role. Any admin may promote or demote any
// non-reserved account, including demoting themselves; RBAC on the route
// guarantees the caller is an admin.
func (m *Manager) SetRole(ctx context.Context, targetUserID string, newRole user.Role) (user.User, error) {
	if !newRole.IsValid() {
		return user.User{}, user.ErrInvalidRole
	}

	target, err := m.users.GetByID(ctx, targetUserID)

	if err != nil {
		return user.User{}, err
	}

	if m.reservedEmail != "" && strings.EqualFold(target.Email, m.reservedEmail) {
		return user.User{}, ErrReservedAdmin
	}

	return m.users.UpdateRole(ctx, targetUserID, newRole)
}
