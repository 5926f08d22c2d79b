package lead

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotRecorded wraps any store failure while appending a lead. Callers
// must treat it as retryable and must not assume the lead exists.
var ErrNotRecorded = errors.New("lead not recorded")

// Lead is an append-only contact record: one per successful gate
// submission, never mutated afterwards.
type Lead struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Company       *string   `json:"company,omitempty"`
	ResourceID    string    `json:"resourceId"`
	ResourceTitle string    `json:"resourceTitle"` // denormalized at capture time
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateLeadRequest carries the gate form. Email and phone are the
// integrity gate: every captured lead must be contactable.
type CreateLeadRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=120"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   string  `json:"phone" binding:"required,min=5,max=32"`
	Company *string `json:"company" binding:"omitempty,max=160"`
}

func New(req CreateLeadRequest, resourceID, resourceTitle string) Lead {
	return Lead{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       req.Company,
		ResourceID:    resourceID,
		ResourceTitle: resourceTitle,
		CreatedAt:     time.Now().UTC(),
	}
}
