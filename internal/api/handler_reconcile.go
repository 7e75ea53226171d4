package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/reconcile"
)

// RunReconciliation handles POST /internal/reconcile. It is the external
// trigger surface for the reconciliation job, guarded by a shared secret
// since completing reservations is a privileged operation. An optional `now`
// query parameter (RFC3339) pins the sweep instant.
func (h *Handler) RunReconciliation(c *gin.Context) {
	if h.sharedSecret == "" {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "reconciliation trigger is not configured"})
		return
	}
	secret := c.GetHeader("X-Reconcile-Secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.sharedSecret)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid shared secret"})
		return
	}

	now := h.clock.Now()
	if at := c.Query("now"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid 'now' timestamp, use RFC3339"})
			return
		}
		now = parsed
	}

	report, err := h.job.Run(c.Request.Context(), now)
	if err != nil {
		if errors.Is(err, reconcile.ErrAlreadyRunning) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a reconciliation run is already in flight"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
