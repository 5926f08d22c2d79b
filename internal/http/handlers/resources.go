package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/cache"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/config"
	"github.com/inclusivbank-lab/Inclusiv-Bank-Investor-Portal/internal/domain/resource"
	"github.com/gin-gonic/gin"
)

type ResourcesStore interface {
	Create(ctx context.Context, req resource.CreateResourceRequest) (resource.Resource, error)
	GetByID(ctx context.Context, id string) (resource.Resource, error)
	List(ctx context.Context) ([]resource.Resource, error)
	Update(ctx context.Context, id string, req resource.UpdateResourceRequest) (resource.Resource, error)
	AttachDocument(ctx context.Context, id string, documentRef string) (resource.Resource, error)
	Delete(ctx context.Context, id string) error
}

const resourceListCacheKey = "resources:list"

type ResourcesHandler struct {
	store     ResourcesStore
	listCache *cache.Cache
}

func NewResourcesHandler(store ResourcesStore, listCache *cache.Cache) *ResourcesHandler {
	return &ResourcesHandler{store: store, listCache: listCache}
}

// ListResources is the public catalog. Listing metadata is never gated;
// only document delivery is.
func (h *ResourcesHandler) ListResources(ctx *gin.Context) {
	if h.listCache != nil {
		if v, ok := h.listCache.Get(resourceListCacheKey); ok {
			if items, ok := v.([]resource.Resource); ok {
				RespondJSONWithETag(ctx, http.StatusOK, gin.H{
					"items": items,
					"count": len(items),
				})
				return
			}
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, err := h.store.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list resources")
		return
	}

	if h.listCache != nil {
		h.listCache.Set(resourceListCacheKey, items)
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *ResourcesHandler) GetResource(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	res, err := h.store.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			RespondNotFound(ctx, "Resource not found")
			return
		}
		RespondInternal(ctx, "Could not fetch resource")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, res)
}

func (h *ResourcesHandler) CreateResource(ctx *gin.Context) {
	var req resource.CreateResourceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	res, err := h.store.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create resource")
		return
	}

	h.invalidateList()

	ctx.JSON(http.StatusCreated, res)
}

func (h *ResourcesHandler) UpdateResource(ctx *gin.Context) {
	id := ctx.Param("id")

	var req resource.UpdateResourceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	res, err := h.store.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			RespondNotFound(ctx, "Resource not found")
			return
		}
		RespondInternal(ctx, "Could not update resource")
		return
	}

	h.invalidateList()

	ctx.JSON(http.StatusOK, res)
}

// AttachDocument publishes the actual pitch deck. From this point the
// gate delivers the document instead of the placeholder.
func (h *ResourcesHandler) AttachDocument(ctx *gin.Context) {
	id := ctx.Param("id")

	var req resource.AttachDocumentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	res, err := h.store.AttachDocument(cctx, id, req.DocumentRef)

	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			RespondNotFound(ctx, "Resource not found")
			return
		}
		RespondInternal(ctx, "Could not attach document")
		return
	}

	h.invalidateList()

	ctx.JSON(http.StatusOK, res)
}

func (h *ResourcesHandler) DeleteResource(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.store.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, resource.ErrNotFound) {
			RespondNotFound(ctx, "Resource not found")
			return
		}
		RespondInternal(ctx, "Could not delete resource")
		return
	}

	h.invalidateList()

	ctx.Status(http.StatusNoContent)
}

func (h *ResourcesHandler) invalidateList() {
	if h.listCache != nil {
		h.listCache.Delete(resourceListCacheKey)
	}
}
