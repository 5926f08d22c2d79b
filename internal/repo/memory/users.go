package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu        sync.RWMutex
	items     map[string]user.User
	interests map[string]map[string]struct{} // userID -> set of resource ids

	// FailAddInterest forces AddInterest to return this error; tests use
	// it to show the gate flow survives a failed interest update.
	FailAddInterest error
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:     make(map[string]user.User),
		interests: make(map[string]map[string]struct{}),
	}
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash, name, phone string, role user.Role) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.ToLower(email)

	for _, u := range r.items {
		if u.Email == email {
			return user.User{}, user.ErrEmailAlreadyUsed
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.Name = req.Name
	u.Phone = req.Phone
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) UpdateRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) AddInterest(ctx context.Context, userID, resourceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailAddInterest != nil {
		return r.FailAddInterest
	}

	if _, ok := r.items[userID]; !ok {
		return user.ErrNotFound
	}

	set, ok := r.interests[userID]

	if !ok {
		set = make(map[string]struct{})
		r.interests[userID] = set
	}

	set[resourceID] = struct{}{}
	return nil
}

func (r *UsersRepo) InterestsFor(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.interests[userID]
	out := make([]string, 0, len(set))

	for id := range set {
		out = append(out, id)
	}

	sort.Strings(out)

	return out, nil
}
