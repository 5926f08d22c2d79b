package gate_test

import (
	"testing"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/gate"
)

func TestEvaluate_AnonymousNeedsAuthentication(t *testing.T) {
	d := gate.Evaluate(nil, resource.Resource{ID: "r1", Title: "Seed Round"})

	if d.State != gate.StateAuthenticationRequired {
		t.Fatalf("got state %q, want %q", d.State, gate.StateAuthenticationRequired)
	}
	if d.Prefill != nil {
		t.Fatalf("anonymous decision should not carry prefill")
	}
}

func TestEvaluate_LimitedIsRoleRestricted(t *testing.T) {
	u := &user.User{ID: "u1", Email: "a@b.com", Role: user.RoleLimited}

	d := gate.Evaluate(u, resource.Resource{ID: "r1", Title: "Seed Round"})

	if d.State != gate.StateRoleRestricted {
		t.Fatalf("got state %q, want %q", d.State, gate.StateRoleRestricted)
	}
	if d.Prefill != nil {
		t.Fatalf("role_restricted decision should not carry prefill")
	}
}

func TestEvaluate_InvestorGetsFormWithReadOnlyPrefill(t *testing.T) {
	u := &user.User{
		ID:    "u1",
		Name:  "Ada Investor",
		Email: "ada@example.com",
		Phone: "+15550001",
		Role:  user.RoleInvestor,
	}

	d := gate.Evaluate(u, resource.Resource{ID: "r1", Title: "Seed Round"})

	if d.State != gate.StateFormPending {
		t.Fatalf("got state %q, want %q", d.State, gate.StateFormPending)
	}
	if d.Prefill == nil {
		t.Fatalf("form_pending decision must carry prefill")
	}

	if d.Prefill.Email.Value != "ada@example.com" || !d.Prefill.Email.ReadOnly {
		t.Fatalf("email prefill should be read-only with the account value, got %+v", d.Prefill.Email)
	}
	if d.Prefill.Name.Value != "Ada Investor" || !d.Prefill.Name.ReadOnly {
		t.Fatalf("name prefill should be read-only, got %+v", d.Prefill.Name)
	}
	if d.Prefill.Phone.Value != "+15550001" || !d.Prefill.Phone.ReadOnly {
		t.Fatalf("phone prefill should be read-only, got %+v", d.Prefill.Phone)
	}
}

func TestEvaluate_EmptyProfileFieldsStayEditable(t *testing.T) {
	u := &user.User{ID: "u1", Email: "ada@example.com", Role: user.RoleAdmin}

	d := gate.Evaluate(u, resource.Resource{ID: "r1", Title: "Seed Round"})

	if d.State != gate.StateFormPending {
		t.Fatalf("admin should reach the form, got %q", d.State)
	}
	if d.Prefill.Phone.ReadOnly {
		t.Fatalf("empty phone must remain editable")
	}
	if d.Prefill.Name.ReadOnly {
		t.Fatalf("empty name must remain editable")
	}
}
