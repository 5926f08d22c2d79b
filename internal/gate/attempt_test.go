package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/gate"
)

type fakeRecorder struct {
	recordFn func(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error)
	markFn   func(ctx context.Context, userID, resourceID string) error

	recorded []lead.Lead
	marked   [][2]string
}

func (f *fakeRecorder) RecordLead(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error) {
	if f.recordFn != nil {
		return f.recordFn(ctx, req, resourceID, resourceTitle)
	}

	l := lead.New(req, resourceID, resourceTitle)
	f.recorded = append(f.recorded, l)
	return l, nil
}

func (f *fakeRecorder) MarkInterested(ctx context.Context, userID, resourceID string) error {
	if f.markFn != nil {
		return f.markFn(ctx, userID, resourceID)
	}

	f.marked = append(f.marked, [2]string{userID, resourceID})
	return nil
}

func investor() *user.User {
	return &user.User{
		ID:    "u1",
		Name:  "Ada Investor",
		Email: "ada@example.com",
		Phone: "+15550001",
		Role:  user.RoleInvestor,
	}
}

func deck(ref string) resource.Resource {
	res := resource.Resource{ID: "r1", Title: "Seed Round"}
	if ref != "" {
		res.DocumentRef = &ref
	}
	return res
}

func TestSubmit_RecordsLeadAndDeliversDocument(t *testing.T) {
	rec := &fakeRecorder{}
	a := gate.Begin(investor(), deck("s3://decks/r1.pdf"), rec)

	if a.State() != gate.StateFormPending {
		t.Fatalf("fresh attempt should be form_pending, got %q", a.State())
	}

	result, err := a.Submit(context.Background(), lead.CreateLeadRequest{
		Name:  "ignored",
		Email: "ignored@example.com",
		Phone: "000",
	})

	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if a.State() != gate.StateSuccess {
		t.Fatalf("got state %q, want %q", a.State(), gate.StateSuccess)
	}

	// the account identity wins over whatever the client typed
	if result.Lead.Email != "ada@example.com" || result.Lead.Phone != "+15550001" || result.Lead.Name != "Ada Investor" {
		t.Fatalf("lead should carry the account identity, got %+v", result.Lead)
	}

	if result.Delivery.DocumentRef != "s3://decks/r1.pdf" {
		t.Fatalf("expected the attached document, got %+v", result.Delivery)
	}
	if result.Delivery.Placeholder != "" {
		t.Fatalf("placeholder should be empty when a document exists")
	}

	if len(rec.marked) != 1 || rec.marked[0] != [2]string{"u1", "r1"} {
		t.Fatalf("expected one interest mark for (u1,r1), got %v", rec.marked)
	}
}

func TestSubmit_PlaceholderWhenNoDocument(t *testing.T) {
	rec := &fakeRecorder{}
	a := gate.Begin(investor(), deck(""), rec)

	result, err := a.Submit(context.Background(), lead.CreateLeadRequest{})

	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Delivery.DocumentRef != "" {
		t.Fatalf("no document was attached, got ref %q", result.Delivery.DocumentRef)
	}
	if result.Delivery.Placeholder == "" {
		t.Fatalf("expected a placeholder message")
	}
}

func TestSubmit_MissingContactRejected(t *testing.T) {
	u := investor()
	u.Phone = ""

	a := gate.Begin(u, deck(""), &fakeRecorder{})

	_, err := a.Submit(context.Background(), lead.CreateLeadRequest{
		Name:  "Ada Investor",
		Email: "ada@example.com",
		// phone absent everywhere
	})

	if !errors.Is(err, gate.ErrMissingContact) {
		t.Fatalf("got %v, want ErrMissingContact", err)
	}
	if a.State() != gate.StateFormPending {
		t.Fatalf("attempt should stay form_pending, got %q", a.State())
	}
}

func TestSubmit_AnonymousAndLimitedBlocked(t *testing.T) {
	anon := gate.Begin(nil, deck(""), &fakeRecorder{})

	_, err := anon.Submit(context.Background(), lead.CreateLeadRequest{})
	if !errors.Is(err, gate.ErrAuthenticationRequired) {
		t.Fatalf("anonymous submit: got %v, want ErrAuthenticationRequired", err)
	}

	limited := investor()
	limited.Role = user.RoleLimited

	a := gate.Begin(limited, deck(""), &fakeRecorder{})

	_, err = a.Submit(context.Background(), lead.CreateLeadRequest{})
	if !errors.Is(err, gate.ErrRoleRestricted) {
		t.Fatalf("limited submit: got %v, want ErrRoleRestricted", err)
	}
}

func TestSubmit_FailedWriteAllowsRetry(t *testing.T) {
	calls := 0
	rec := &fakeRecorder{}
	rec.recordFn = func(ctx context.Context, req lead.CreateLeadRequest, resourceID, resourceTitle string) (lead.Lead, error) {
		calls++
		if calls == 1 {
			return lead.Lead{}, lead.ErrNotRecorded
		}
		return lead.New(req, resourceID, resourceTitle), nil
	}

	a := gate.Begin(investor(), deck(""), rec)

	_, err := a.Submit(context.Background(), lead.CreateLeadRequest{})
	if !errors.Is(err, lead.ErrNotRecorded) {
		t.Fatalf("first submit: got %v, want ErrNotRecorded", err)
	}
	if a.State() != gate.StateFormPending {
		t.Fatalf("failed attempt should return to form_pending, got %q", a.State())
	}

	// no document was handed out on failure; the retry succeeds
	result, err := a.Submit(context.Background(), lead.CreateLeadRequest{})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if result.Delivery.ResourceID != "r1" {
		t.Fatalf("retry should deliver for r1, got %+v", result.Delivery)
	}
	if calls != 2 {
		t.Fatalf("expected 2 record calls, got %d", calls)
	}
}

func TestSubmit_SecondSubmitAfterSuccessRejected(t *testing.T) {
	rec := &fakeRecorder{}
	a := gate.Begin(investor(), deck(""), rec)

	if _, err := a.Submit(context.Background(), lead.CreateLeadRequest{}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := a.Submit(context.Background(), lead.CreateLeadRequest{})
	if !errors.Is(err, gate.ErrSubmissionInFlight) {
		t.Fatalf("got %v, want ErrSubmissionInFlight", err)
	}
	if len(rec.recorded) != 1 {
		t.Fatalf("each attempt captures at most one lead, got %d", len(rec.recorded))
	}
}

func TestSubmit_InterestFailureDoesNotFailFlow(t *testing.T) {
	rec := &fakeRecorder{}
	rec.markFn = func(ctx context.Context, userID, resourceID string) error {
		return errors.New("interest store down")
	}

	a := gate.Begin(investor(), deck(""), rec)

	if _, err := a.Submit(context.Background(), lead.CreateLeadRequest{}); err != nil {
		t.Fatalf("submit should succeed despite interest failure: %v", err)
	}
	if a.State() != gate.StateSuccess {
		t.Fatalf("got state %q, want success", a.State())
	}
}
