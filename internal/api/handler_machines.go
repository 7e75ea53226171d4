package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

type maintenanceRequest struct {
	Maintenance *bool `json:"maintenance" binding:"required"`
}

// SetMachineMaintenance handles PATCH /api/machines/:id/maintenance. Only the
// owning operator or an administrator may toggle it, and never while a
// reservation is active on the machine.
func (h *Handler) SetMachineMaintenance(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok || actor.Role == model.RoleCustomer {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "operator or admin role required"})
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	machineID := c.Param("id")

	machine, err := h.store.GetMachine(ctx, machineID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
		} else {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		}
		return
	}

	if actor.Role == model.RoleOperator {
		laundromat, err := h.store.GetLaundromat(ctx, machine.LaundromatID)
		if err != nil || laundromat.OwnerID != actor.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "only the owning operator may change this machine"})
			return
		}
	}

	active, err := h.store.CountActiveReservations(ctx, machineID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if active > 0 {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "machine has an active reservation"})
		return
	}

	status := model.MachineAvailable
	if *req.Maintenance {
		status = model.MachineMaintenance
	}
	if err := h.store.SetMachineStatus(ctx, machineID, status); err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": machineID, "status": status})
}
