package gate

import (
	"context"
	"errors"
	"sync"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrRoleRestricted on submit means the form was driven for a limited
	// account; routing should have stopped earlier, so this is treated as
	// a programming error rather than a user-facing branch.
	ErrRoleRestricted = errors.New("role restricted")

	ErrMissingContact     = errors.New("email and phone are required")
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// LeadRecorder is the slice of the registry an attempt needs.
type LeadRecorder interface {
	RecordLead(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error)
	MarkInterested(ctx context.Context, userID, resourceID string) error
}

// Attempt drives one gate attempt for one (user, resource) pair. Only one
// submission may be in flight at a time; a failed submission returns the
// attempt to form_pending so the caller can resubmit.
type Attempt struct {
	mu       sync.Mutex
	state    State
	user     *user.User
	resource resource.Resource
	registry LeadRecorder
}

func Begin(u *user.User, res resource.Resource, registry LeadRecorder) *Attempt {
	return &Attempt{
		state:    Evaluate(u, res).State,
		user:     u,
		resource: res,
		registry: registry,
	}
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Result is what a successful submission yields: the durably recorded
// lead and the document delivery handle.
type Result struct {
	Lead     lead.Lead `json:"lead"`
	Delivery Delivery  `json:"delivery"`
}

// Submit runs form_pending -> submitting -> success|failed. The lead write
// is the integrity step; the interest-set update is best-effort and never
// fails the flow.
func (a *Attempt) Submit(ctx context.Context, form lead.CreateLeadRequest) (Result, error) {
	a.mu.Lock()

	switch a.state {
	case StateSubmitting:
		a.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	case StateAuthenticationRequired, StateAnonymous:
		a.mu.Unlock()
		return Result{}, ErrAuthenticationRequired
	case StateRoleRestricted:
		a.mu.Unlock()
		return Result{}, ErrRoleRestricted
	case StateSuccess:
		// each attempt captures at most one lead; a new attempt logs again
		a.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}

	// read-only prefill wins over whatever the client sent
	if a.user != nil {
		if a.user.Name != "" {
			form.Name = a.user.Name
		}
		if a.user.Email != "" {
			form.Email = a.user.Email
		}
		if a.user.Phone != "" {
			form.Phone = a.user.Phone
		}
	}

	if form.Email == "" || form.Phone == "" {
		a.mu.Unlock()
		return Result{}, ErrMissingContact
	}

	a.state = StateSubmitting
	a.mu.Unlock()

	recorded, err := a.registry.RecordLead(ctx, form, a.resource.ID, a.resource.Title)

	if err != nil {
		a.mu.Lock()
		// failed is surfaced to the caller; the form stays resubmittable
		a.state = StateFormPending
		a.mu.Unlock()
		return Result{}, err
	}

	if a.user != nil {
		// best effort: the lead record is the source of truth
		_ = a.registry.MarkInterested(ctx, a.user.ID, a.resource.ID)
	}

	a.mu.Lock()
	a.state = StateSuccess
	a.mu.Unlock()

	return Result{
		Lead:     recorded,
		Delivery: deliveryFor(a.resource),
	}, nil
}
