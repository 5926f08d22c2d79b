package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
)

// LeadsRepo is the in-memory LeadStore adapter, used in tests and local
// runs without postgres.
type LeadsRepo struct {
	mu    sync.RWMutex
	items []lead.Lead

	// FailAppend forces Append to return this error; tests use it to
	// exercise the gate's failed branch.
	FailAppend error
}

func NewLeadsRepo() *LeadsRepo {
	return &LeadsRepo{}
}

func (r *LeadsRepo) Append(ctx context.Context, l lead.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailAppend != nil {
		return r.FailAppend
	}

	r.items = append(r.items, l)
	return nil
}

func (r *LeadsRepo) List(ctx context.Context) ([]lead.Lead, error) {
	r.mu.RLock()
	out := make([]lead.Lead, len(r.items))
	copy(out, r.items)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
