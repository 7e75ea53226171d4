package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createReservationRequest struct {
	CustomerID string    `json:"customer_id" binding:"required"`
	MachineID  string    `json:"machine_id" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing or invalid actor headers"})
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.svc.Create(c.Request.Context(), actor, req.CustomerID, req.MachineID, req.Start)
	if err != nil {
		writeCoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

type cancelReservationRequest struct {
	Reason string `json:"reason"`
}

// CancelReservation handles DELETE /api/reservations/:id.
func (h *Handler) CancelReservation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing or invalid actor headers"})
		return
	}

	var req cancelReservationRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.svc.Cancel(c.Request.Context(), actor, c.Param("id"), req.Reason); err != nil {
		writeCoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}
