package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"hotel-marketplace-backend/internal/store"
	"hotel-marketplace-backend/internal/workflow"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine  *workflow.Engine
	store   store.Store
	cache   *cache.Cache
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(engine *workflow.Engine, s store.Store, responseCache *cache.Cache, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		engine:  engine,
		store:   s,
		cache:   responseCache,
		webpush: webpushOptions,
	}
}

// respond writes the success envelope with the given payload merged in.
func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps a workflow error onto its HTTP status and writes the
// failure envelope. The message is the user-facing error string.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusConflict
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "internal error"
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

// invalidatePublicCache drops every cached public response. Called after any
// successful mutation so the browse surface converges immediately; the actor
// that performed the write already got the updated record in the response.
func (h *Handler) invalidatePublicCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}
