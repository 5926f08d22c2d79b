package resource

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("resource not found")

// Resource is one listed investment opportunity. DocumentRef is nil until
// an admin attaches the pitch deck; its presence is the sole condition for
// real document delivery instead of the placeholder.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	FundingAsk  string    `json:"fundingAsk,omitempty"`
	Valuation   string    `json:"valuation,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	DocumentRef *string   `json:"documentRef,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r Resource) HasDocument() bool {
	return r.DocumentRef != nil && *r.DocumentRef != ""
}

type CreateResourceRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=160"`
	Category   string   `json:"category" binding:"omitempty,max=80"`
	Summary    string   `json:"summary" binding:"omitempty,max=2000"`
	FundingAsk string   `json:"fundingAsk" binding:"omitempty,max=80"`
	Valuation  string   `json:"valuation" binding:"omitempty,max=80"`
	Tags       []string `json:"tags" binding:"omitempty,max=16,dive,min=1,max=40"`
	ImageURL   string   `json:"imageUrl" binding:"omitempty,url"`
}

// Full replacement payload, same shape as create.
type UpdateResourceRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=160"`
	Category   string   `json:"category" binding:"omitempty,max=80"`
	Summary    string   `json:"summary" binding:"omitempty,max=2000"`
	FundingAsk string   `json:"fundingAsk" binding:"omitempty,max=80"`
	Valuation  string   `json:"valuation" binding:"omitempty,max=80"`
	Tags       []string `json:"tags" binding:"omitempty,max=16,dive,min=1,max=40"`
	ImageURL   string   `json:"imageUrl" binding:"omitempty,url"`
}

type AttachDocumentRequest struct {
	DocumentRef string `json:"documentRef" binding:"required,min=1,max=1024"`
}
