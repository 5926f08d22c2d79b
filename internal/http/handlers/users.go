package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/roles"
	"github.com/gin-gonic/gin"
)

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type RoleSetter interface {
	SetRole(ctx context.Context, targetUserID string, newRole user.Role) (user.User, error)
}

type UsersHandler struct {
	users UserLister
	roles RoleSetter
}

func NewUsersHandler(users UserLister, roleManager RoleSetter) *UsersHandler {
	return &UsersHandler{users: users, roles: roleManager}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// SetRole is the admin tier-management endpoint. The seeded bootstrap
// admin is immutable here, so there is always at least one admin left.
func (h *UsersHandler) SetRole(ctx *gin.Context) {
	var req user.SetRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.roles.SetRole(cctx, ctx.Param("id"), user.Role(req.Role))

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrInvalidRole):
			RespondBadRequest(ctx, "Unknown role", nil)
		case errors.Is(err, roles.ErrReservedAdmin):
			RespondConflict(ctx, "reserved_admin", "The bootstrap admin role cannot be changed.")
		default:
			RespondInternal(ctx, "Could not update role")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}
