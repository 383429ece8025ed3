package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hotel-marketplace-backend/internal/mw"
	"hotel-marketplace-backend/internal/store"
	"hotel-marketplace-backend/internal/workflow"
)

// RouterConfig carries the knobs the router needs from the application
// configuration.
type RouterConfig struct {
	JWTSecret       string
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(engine *workflow.Engine, s store.Store, cfg RouterConfig, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	// The public response cache; write handlers flush it after mutations.
	responseCache := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(responseCache, cfg.CacheTTL)

	handler := NewHandler(engine, s, responseCache, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	r.Use(rateLimiter)

	auth := Auth(cfg.JWTSecret)

	// Traveler-facing browse surface, unauthenticated and cached.
	r.GET("/hotels", caching, handler.BrowseHotels)

	// Merchant surface.
	hotels := r.Group("/hotels")
	hotels.Use(auth)
	{
		hotels.GET("/my", RequireRole(workflow.RoleMerchant), handler.MyListings)
		hotels.POST("", RequireRole(workflow.RoleMerchant), handler.SubmitListing)
		hotels.GET("/:id", handler.GetListing) // owner or admin, enforced by the engine
		hotels.PUT("/:id", RequireRole(workflow.RoleMerchant), handler.EditListing)
		hotels.PATCH("/:id/status", RequireRole(workflow.RoleMerchant), handler.WithdrawListing)
		hotels.DELETE("/:id", RequireRole(workflow.RoleMerchant), handler.DeleteListing)

		subs := hotels.Group("/subscriptions", RequireRole(workflow.RoleMerchant))
		subs.GET("", handler.GetSubscriptions)
		subs.PUT("", handler.PutSubscription)
		subs.DELETE("", handler.DeleteSubscription)

		hotels.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	// Admin moderation surface.
	admin := r.Group("/admin/hotels")
	admin.Use(auth, RequireRole(workflow.RoleAdmin))
	{
		admin.GET("/published", handler.PublishedQueue)
		admin.GET("/pending", handler.PendingQueue)
		admin.GET("/:id", handler.AdminGetListing)
		admin.POST("/:id/approve", handler.ApproveListing)
		admin.POST("/:id/reject", handler.RejectListing)
		admin.POST("/:id/offline", handler.OfflineListing)
		admin.DELETE("/:id", handler.AdminDeleteListing)
	}

	return r
}
