package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublishedQueue handles GET /admin/hotels/published: published listings plus
// offlined ones, which the admin UI greys out for re-publication bookkeeping
// and deletion. The response is never cached anywhere; an admin must see the
// result of their own offline action on the very next read.
func (h *Handler) PublishedQueue(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	listings, err := h.engine.ListPublished(c.Request.Context(), CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"hotels": listings})
}

// PendingQueue handles GET /admin/hotels/pending: the moderation queue with
// each owning merchant's display name.
func (h *Handler) PendingQueue(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	listings, err := h.engine.ListPending(c.Request.Context(), CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"hotels": listings})
}

// AdminGetListing handles GET /admin/hotels/:id, any status.
func (h *Handler) AdminGetListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	listing, err := h.engine.Get(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"hotel": listing})
}

// ApproveListing handles POST /admin/hotels/:id/approve.
func (h *Handler) ApproveListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	listing, err := h.engine.Approve(c.Request.Context(), CurrentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidatePublicCache()
	respond(c, http.StatusOK, gin.H{"hotel": listing})
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// RejectListing handles POST /admin/hotels/:id/reject. The reason is optional
// free text; an empty reason is recorded as "" rather than dropped.
func (h *Handler) RejectListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	listing, err := h.engine.Reject(c.Request.Context(), CurrentActor(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"hotel": listing})
}

// OfflineListing handles POST /admin/hotels/:id/offline.
func (h *Handler) OfflineListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	listing, err := h.engine.Offline(c.Request.Context(), CurrentActor(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidatePublicCache()
	respond(c, http.StatusOK, gin.H{"hotel": listing})
}

// AdminDeleteListing handles DELETE /admin/hotels/:id. The workflow engine
// enforces which states an admin may delete from.
func (h *Handler) AdminDeleteListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.engine.Delete(c.Request.Context(), CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}

	h.invalidatePublicCache()
	respond(c, http.StatusOK, gin.H{})
}
