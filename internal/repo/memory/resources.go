package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/google/uuid"
)

type ResourcesRepo struct {
	mu    sync.RWMutex
	items map[string]resource.Resource
}

func NewResourcesRepo() *ResourcesRepo {
	return &ResourcesRepo{
		items: make(map[string]resource.Resource),
	}
}

func (r *ResourcesRepo) Create(ctx context.Context, req resource.CreateResourceRequest) (resource.Resource, error) {
	now := time.Now().UTC()

	res := resource.Resource{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Category:   req.Category,
		Summary:    req.Summary,
		FundingAsk: req.FundingAsk,
		Valuation:  req.Valuation,
		Tags:       req.Tags,
		ImageURL:   req.ImageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	r.items[res.ID] = res
	r.mu.Unlock()

	return res, nil
}

func (r *ResourcesRepo) GetByID(ctx context.Context, id string) (resource.Resource, error) {
	r.mu.RLock()
	res, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}

	return res, nil
}

func (r *ResourcesRepo) List(ctx context.Context) ([]resource.Resource, error) {
	r.mu.RLock()
	out := make([]resource.Resource, 0, len(r.items))

	for _, res := range r.items {
		out = append(out, res)
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

func (r *ResourcesRepo) Update(ctx context.Context, id string, req resource.UpdateResourceRequest) (resource.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.items[id]

	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}

	res.Title = req.Title
	res.Category = req.Category
	res.Summary = req.Summary
	res.FundingAsk = req.FundingAsk
	res.Valuation = req.Valuation
	res.Tags = req.Tags
	res.ImageURL = req.ImageURL
	res.UpdatedAt = time.Now().UTC()

	r.items[id] = res

	return res, nil
}

func (r *ResourcesRepo) AttachDocument(ctx context.Context, id string, documentRef string) (resource.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.items[id]

	if !ok {
		return resource.Resource{}, resource.ErrNotFound
	}

	res.DocumentRef = &documentRef
	res.UpdatedAt = time.Now().UTC()
	r.items[id] = res

	return res, nil
}

func (r *ResourcesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return resource.ErrNotFound
	}

	delete(r.items, id)
	return nil
}
