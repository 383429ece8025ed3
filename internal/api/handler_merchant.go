package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-marketplace-backend/internal/model"
	"hotel-marketplace-backend/internal/workflow"
)

// MyListings handles GET /hotels/my: every listing the merchant owns, in any
// status, newest activity first.
func (h *Handler) MyListings(c *gin.Context) {
	listings, err := h.engine.ListMine(c.Request.Context(), CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"hotels": listings})
}

// SubmitListing handles POST /hotels: a new submission entering the
// moderation queue.
func (h *Handler) SubmitListing(c *gin.Context) {
	var in workflow.ListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, bindError(err))
		return
	}

	listing, err := h.engine.Submit(c.Request.Context(), CurrentActor(c), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"hotel": listing})
}

// GetListing handles GET /hotels/:id for the owner or an admin.
func (h *Handler) GetListing(c *gin.Context) {
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

// EditListing handles PUT /hotels/:id: full content replace, back to Pending.
func (h *Handler) EditListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var in workflow.ListingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, bindError(err))
		return
	}

	listing, err := h.engine.Edit(c.Request.Context(), CurrentActor(c), id, &in)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidatePublicCache()
	respond(c, http.StatusOK, gin.H{"hotel": listing})
}

type statusChangeRequest struct {
	Status *int `json:"status" binding:"required"`
}

// WithdrawListing handles PATCH /hotels/:id/status. The only status change a
// merchant may request is {status:2}, the historical wire form of withdrawing
// a pending submission.
func (h *Handler) WithdrawListing(c *gin.Context) {
	id, err := listingID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req statusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	if model.ListingStatus(*req.Status) != model.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "unsupported status change"})
		return
	}

	if err := h.engine.Withdraw(c.Request.Context(), CurrentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{})
}

// DeleteListing handles DELETE /hotels/:id for the owning merchant.
func (h *Handler) DeleteListing(c *gin.Context) {
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

func listingID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, workflow.ErrNotFound
	}
	return id, nil
}

// bindError turns a gin binding failure into a validation error so it maps to
// 400 with the envelope.
func bindError(err error) error {
	return fmt.Errorf("%w: malformed request body: %v", workflow.ErrValidation, err)
}
