package gate

import (
	"fmt"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
)

// State is the per-attempt position in the document gate.
type State string

const (
	StateAnonymous              State = "anonymous"
	StateAuthenticationRequired State = "authentication_required"
	StateRoleRestricted         State = "role_restricted"
	StateFormPending            State = "form_pending"
	StateSubmitting             State = "submitting"
	StateSuccess                State = "success"
	StateFailed                 State = "failed"
)

// Field is one gate-form input. Prefilled values taken from a known
// identity are read-only so the captured lead cannot drift from the
// authenticated user.
type Field struct {
	Value    string `json:"value"`
	ReadOnly bool   `json:"readOnly"`
}

type Prefill struct {
	Name  Field `json:"name"`
	Email Field `json:"email"`
	Phone Field `json:"phone"`
}

// Decision is the outcome of evaluating (user, resource) for gate access.
// Prefill is populated only when the state is form_pending.
type Decision struct {
	State   State    `json:"state"`
	Prefill *Prefill `json:"prefill,omitempty"`
}

// Evaluate is side-effect free: it inspects the caller's identity and role
// and decides which of the three gate branches applies.
func Evaluate(u *user.User, res resource.Resource) Decision {
	if u == nil {
		return Decision{State: StateAuthenticationRequired}
	}

	if !u.Role.CanAccessGatedContent() {
		// limited tier: contact-admin escape hatch only, no form, no lead
		return Decision{State: StateRoleRestricted}
	}

	return Decision{
		State:   StateFormPending,
		Prefill: prefillFor(u),
	}
}

func prefillFor(u *user.User) *Prefill {
	return &Prefill{
		Name:  Field{Value: u.Name, ReadOnly: u.Name != ""},
		Email: Field{Value: u.Email, ReadOnly: u.Email != ""},
		Phone: Field{Value: u.Phone, ReadOnly: u.Phone != ""},
	}
}

// Delivery is the handle returned once a submission succeeds. DocumentRef
// is set when the resource has an attached document; otherwise the caller
// serves the plain-text placeholder.
type Delivery struct {
	ResourceID  string `json:"resourceId"`
	DocumentRef string `json:"documentRef,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

func deliveryFor(res resource.Resource) Delivery {
	d := Delivery{ResourceID: res.ID}

	if res.HasDocument() {
		d.DocumentRef = *res.DocumentRef
		return d
	}

	d.Placeholder = fmt.Sprintf(
		"Thank you for your interest in %s.\n\nThe pitch deck for this opportunity has not been published yet; our team will follow up with the full document.",
		res.Title,
	)
	return d
}
