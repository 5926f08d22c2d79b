package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/actorctx"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/job"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/user"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/gate"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/http/middlewares"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/jobs"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/observability"
	"github.com/gin-gonic/gin"
)

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type ResourceGetter interface {
	GetByID(ctx context.Context, id string) (resource.Resource, error)
}

type JobEnqueuer interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

// JobWaker nudges the worker after an enqueue. Best effort; nil disables it.
type JobWaker interface {
	NotifyJob(ctx context.Context, jobID string) error
}

type GateHandler struct {
	users     UserGetter
	resources ResourceGetter
	registry  gate.LeadRecorder
	jobStore  JobEnqueuer
	waker     JobWaker
	prom      *observability.Prom
}

func NewGateHandler(users UserGetter, resources ResourceGetter, registry gate.LeadRecorder, jobStore JobEnqueuer, waker JobWaker, prom *observability.Prom) *GateHandler {
	return &GateHandler{
		users:     users,
		resources: resources,
		registry:  registry,
		jobStore:  jobStore,
		waker:     waker,
		prom:      prom,
	}
}

// CheckAccess evaluates the gate for the caller without side effects.
// Anonymous callers are allowed through OptionalAuth and get the
// authentication_required branch.
func (h *GateHandler) CheckAccess(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	res, err := h.resources.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			RespondNotFound(ctx, "Resource not found")
			return
		}
		RespondInternal(ctx, "Could not evaluate access")
		return
	}

	var caller *user.User

	if id, ok := middlewares.UserIDFromContext(ctx); ok && id != "" {
		u, err := h.users.GetByID(cctx, id)

		if err != nil {
			RespondInternal(ctx, "Could not evaluate access")
			return
		}
		caller = &u
	}

	decision := gate.Evaluate(caller, res)
	h.countDecision(decision.State)

	ctx.JSON(http.StatusOK, decision)
}

// SubmitLead runs one full gate attempt: evaluate, validate the form,
// durably record the lead, then hand back the document delivery.
func (h *GateHandler) SubmitLead(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	var form lead.CreateLeadRequest

	if !BindJSON(ctx, &form) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	cctx = actorctx.WithUserID(cctx, userID)

	res, err := h.resources.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			RespondNotFound(ctx, "Resource not found")
			return
		}
		RespondInternal(ctx, "Could not submit")
		return
	}

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondUnAuthorized(ctx, "unauthorized", "Unknown account")
		return
	}

	attempt := gate.Begin(&u, res, h.registry)

	result, err := attempt.Submit(cctx, form)

	if err != nil {
		switch {
		case errors.Is(err, gate.ErrAuthenticationRequired):
			h.countDecision(gate.StateAuthenticationRequired)
			RespondUnAuthorized(ctx, "unauthorized", "Sign in to request this document")
		case errors.Is(err, gate.ErrRoleRestricted):
			h.countDecision(gate.StateRoleRestricted)
			RespondForbidden(ctx, "role_restricted", "Your account tier cannot access gated documents. Contact the administrator.")
		case errors.Is(err, gate.ErrMissingContact):
			h.countDecision(gate.StateFormPending)
			RespondBadRequest(ctx, "Email and phone are required", gin.H{"state": gate.StateFormPending})
		case errors.Is(err, lead.ErrNotRecorded):
			// durable write failed: no access granted, caller may retry
			h.countDecision(gate.StateFailed)
			RespondError(ctx, http.StatusServiceUnavailable, "lead_not_recorded",
				"Your request could not be recorded. Please try again.",
				gin.H{"state": gate.StateFailed, "retryable": true})
		default:
			RespondInternal(ctx, "Could not submit")
		}
		return
	}

	h.countDecision(gate.StateSuccess)

	if h.prom != nil {
		h.prom.LeadsCapturedTotal.Inc()
	}

	h.enqueueLeadAlert(cctx, result.Lead)

	ctx.JSON(http.StatusCreated, gin.H{
		"state":    gate.StateSuccess,
		"lead":     result.Lead,
		"delivery": result.Delivery,
	})
}

// enqueueLeadAlert schedules the async sales notification. The lead is
// already durable, so a failed enqueue is logged by the store metrics and
// never turns the submission into an error.
func (h *GateHandler) enqueueLeadAlert(ctx context.Context, l lead.Lead) {
	if h.jobStore == nil {
		return
	}

	payload, err := jobs.LeadNotificationPayload{
		LeadID:        l.ID,
		Name:          l.Name,
		Email:         l.Email,
		Phone:         l.Phone,
		ResourceID:    l.ResourceID,
		ResourceTitle: l.ResourceTitle,
		CapturedAt:    l.CreatedAt,
	}.JSON()

	if err != nil {
		return
	}

	key := "lead-alert:" + l.ID

	j, err := h.jobStore.Create(ctx, job.CreateRequest{
		Type:           jobs.TypeLeadNotification,
		Payload:        payload,
		IdempotencyKey: &key,
	})

	if err != nil {
		return
	}

	if h.waker != nil {
		_ = h.waker.NotifyJob(ctx, j.ID)
	}
}

func (h *GateHandler) countDecision(state gate.State) {
	if h.prom != nil {
		h.prom.GateDecisionsTotal.WithLabelValues(string(state)).Inc()
	}
}
