package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/actorctx"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
)

// LeadStore is the append-only persistence port for leads. One production
// adapter (postgres) and one in-memory adapter exist; selection happens by
// injection at wiring time.
type LeadStore interface {
	Append(ctx context.Context, l lead.Lead) error
	List(ctx context.Context) ([]lead.Lead, error)
}

// InterestStore maintains the per-user interested-resource set.
type InterestStore interface {
	AddInterest(ctx context.Context, userID, resourceID string) error
	InterestsFor(ctx context.Context, userID string) ([]string, error)
}

// Catalog is the read side of the resource listing.
type Catalog interface {
	GetByID(ctx context.Context, id string) (resource.Resource, error)
}

type Registry struct {
	leads     LeadStore
	interests InterestStore
	catalog   Catalog
	log       *slog.Logger
}

func New(leads LeadStore, interests InterestStore, catalog Catalog, log *slog.Logger) *Registry {
	return &Registry{
		leads:     leads,
		interests: interests,
		catalog:   catalog,
		log:       log,
	}
}

// RecordLead appends one lead event. Delivery is at-least-once: the gate's
// submitting guard debounces double submits, the store does not dedupe.
func (r *Registry) RecordLead(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error) {
	if req.Email == "" || req.Phone == "" {
		// the gate validates first; this guards direct callers
		return lead.Lead{}, fmt.Errorf("%w: email and phone are required", lead.ErrNotRecorded)
	}

	l := lead.New(req, resourceID, resourceTitle)

	err := r.leads.Append(ctx, l)

	if err != nil {
		return lead.Lead{}, fmt.Errorf("%w: %v", lead.ErrNotRecorded, err)
	}

	actor, _ := actorctx.UserIDFrom(ctx)
	r.log.InfoContext(ctx, "lead_recorded",
		"lead_id", l.ID,
		"resource_id", resourceID,
		"actor_id", actor,
	)

	return l, nil
}

// MarkInterested is an idempotent set-union on the user's interest set.
func (r *Registry) MarkInterested(ctx context.Context, userID, resourceID string) error {
	err := r.interests.AddInterest(ctx, userID, resourceID)

	if err != nil {
		// secondary effect: callers treat this as best-effort
		r.log.WarnContext(ctx, "mark_interested_failed",
			"user_id", userID,
			"resource_id", resourceID,
			"err", err,
		)
		return err
	}

	return nil
}

// ListLeads returns every captured lead, newest first.
func (r *Registry) ListLeads(ctx context.Context) ([]lead.Lead, error) {
	return r.leads.List(ctx)
}

// ResourcesForUser projects the interest set through the catalog.
// Resources that have since been deleted are silently dropped.
func (r *Registry) ResourcesForUser(ctx context.Context, userID string) ([]resource.Resource, error) {
	ids, err := r.interests.InterestsFor(ctx, userID)

	if err != nil {
		return nil, err
	}

	out := make([]resource.Resource, 0, len(ids))

	for _, id := range ids {
		res, err := r.catalog.GetByID(ctx, id)

		if err != nil {
			if errors.Is(err, resource.ErrNotFound) {
				continue
			}
			return nil, err
		}

		out = append(out, res)
	}

	return out, nil
}
