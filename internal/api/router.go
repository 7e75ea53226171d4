package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"laundry-booking-backend/internal/mw"
)

// RouterConfig carries the tunables the router needs from config.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	db := h.store.DB()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Booking surface.
		api.POST("/reservations", h.CreateReservation)
		api.DELETE("/reservations/:id", h.CancelReservation)

		// Cached listings.
		api.GET("/laundromats", caching, GetLaundromats(db))
		api.GET("/laundromats/:id/machines", GetLaundromatMachines(db))

		// Machine maintenance toggle.
		api.PATCH("/machines/:id/maintenance", h.SetMachineMaintenance)

		// Notifications and push subscriptions.
		api.GET("/notifications", h.GetNotifications)
		api.PATCH("/notifications/:id/read", h.MarkNotificationRead)
		api.GET("/subscriptions", h.GetSubscriptions)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	// Privileged trigger for the external scheduler.
	r.POST("/internal/reconcile", h.RunReconciliation)

	return r
}
