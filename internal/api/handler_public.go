package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BrowseHotels handles GET /hotels: the unauthenticated traveler-facing list
// of published listings. This is the one read that sits behind the response
// cache; every mutation that changes publication flushes it.
func (h *Handler) BrowseHotels(c *gin.Context) {
	listings, err := h.store.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"hotels": listings})
}
