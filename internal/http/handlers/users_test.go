package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/http/handlers"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/roles"
	"github.com/gin-gonic/gin"
)

type fakeUserLister struct {
	listFn func(ctx context.Context) ([]user.User, error)
}

func (f *fakeUserLister) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

type fakeRoleSetter struct {
	setFn func(ctx context.Context, targetUserID string, newRole user.Role) (user.User, error)
}

func (f *fakeRoleSetter) SetRole(ctx context.Context, targetUserID string, newRole user.Role) (user.User, error) {
	if f.setFn != nil {
		return f.setFn(ctx, targetUserID, newRole)
	}
	return user.User{}, nil
}

func TestSetRoleHandler(t *testing.T) {
	targetID := newUUID()

	tests := []struct {
		name       string
		body       string
		setup      func(*fakeRoleSetter)
		wantStatus int
	}{
		{
			name: "success",
			body: `{"role":"investor"}`,
			setup: func(f *fakeRoleSetter) {
				f.setFn = func(ctx context.Context, id string, newRole user.Role) (user.User, error) {
					return user.User{ID: id, Email: "m@example.com", Role: newRole}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown_role_rejected_by_binding",
			body:       `{"role":"superuser"}`,
			setup:      nil, // never reaches the manager
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "reserved_admin_conflict",
			body: `{"role":"limited"}`,
			setup: func(f *fakeRoleSetter) {
				f.setFn = func(ctx context.Context, id string, newRole user.Role) (user.User, error) {
					return user.User{}, roles.ErrReservedAdmin
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "target_not_found",
			body: `{"role":"investor"}`,
			setup: func(f *fakeRoleSetter) {
				f.setFn = func(ctx context.Context, id string, newRole user.Role) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "store_error",
			body: `{"role":"investor"}`,
			setup: func(f *fakeRoleSetter) {
				f.setFn = func(ctx context.Context, id string, newRole user.Role) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			setter := &fakeRoleSetter{}
			if tt.setup != nil {
				tt.setup(setter)
			}

			h := handlers.NewUsersHandler(&fakeUserLister{}, setter)

			r := gin.New()
			r.PUT("/admin/users/:id/role", h.SetRole)

			req := httptest.NewRequest(http.MethodPut, "/admin/users/"+targetID+"/role", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListUsersHandler(t *testing.T) {
	lister := &fakeUserLister{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{
				{ID: "u1", Email: "a@example.com", Role: user.RoleAdmin},
				{ID: "u2", Email: "b@example.com", Role: user.RoleLimited},
			}, nil
		},
	}

	h := handlers.NewUsersHandler(lister, &fakeRoleSetter{})

	r := gin.New()
	r.GET("/admin/users", h.ListUsers)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
}
