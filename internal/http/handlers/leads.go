package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/lead"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/utils"
	"github.com/gin-gonic/gin"
)

type LeadLister interface {
	ListLeads(ctx context.Context) ([]lead.Lead, error)
}

type LeadsHandler struct {
	registry LeadLister
}

func NewLeadsHandler(registry LeadLister) *LeadsHandler {
	return &LeadsHandler{registry: registry}
}

const (
	defaultLeadPageSize = 50
	maxLeadPageSize     = 200
)

// ListLeads returns captured leads newest first, with opaque cursor
// pagination over the (createdAt, id) sort key.
func (h *LeadsHandler) ListLeads(ctx *gin.Context) {
	limit := defaultLeadPageSize

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 {
			RespondBadRequest(ctx, "limit must be a positive integer", nil)
			return
		}
		if n > maxLeadPageSize {
			n = maxLeadPageSize
		}
		limit = n
	}

	var after *utils.LeadCursor

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeLeadCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid cursor", nil)
			return
		}
		after = &c
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	all, err := h.registry.ListLeads(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list leads")
		return
	}

	page, next := paginateLeads(all, after, limit)

	body := gin.H{
		"items": page,
		"count": len(page),
	}
	if next != "" {
		body["nextCursor"] = next
	}

	ctx.JSON(http.StatusOK, body)
}

// paginateLeads slices the newest-first list after the cursor position.
func paginateLeads(all []lead.Lead, after *utils.LeadCursor, limit int) ([]lead.Lead, string) {
	start := 0

	if after != nil {
		for i, l := range all {
			if l.CreatedAt.Before(after.CreatedAt) ||
				(l.CreatedAt.Equal(after.CreatedAt) && l.ID < after.ID) {
				start = i
				break
			}
			start = len(all)
		}
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	page := all[start:end]

	if end >= len(all) || len(page) == 0 {
		return page, ""
	}

	last := page[len(page)-1]
	next, err := utils.EncodeLeadCursor(last.CreatedAt, last.ID)

	if err != nil {
		return page, ""
	}

	return page, next
}
