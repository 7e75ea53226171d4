package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
)

// LaundromatResponse represents the API response for a single laundromat.
type LaundromatResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	TotalMachines     int64  `json:"totalMachines"`
	AvailableMachines int64  `json:"availableMachines"`
}

// GetLaundromats handles the GET /api/laundromats request.
func GetLaundromats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var laundromats []model.Laundromat
		if err := db.Order("name asc").Find(&laundromats).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve laundromats"})
			return
		}

		// One aggregation pass for per-site machine counts.
		type aggRow struct {
			LaundromatID string
			Total        int64
			Available    int64
		}
		var aggs []aggRow
		if err := db.
			Model(&model.Machine{}).
			Select("laundromat_id as laundromat_id, COUNT(*) as total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as available", model.MachineAvailable).
			Group("laundromat_id").
			Scan(&aggs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate machines"})
			return
		}

		aggMap := make(map[string]aggRow, len(aggs))
		for _, a := range aggs {
			aggMap[a.LaundromatID] = a
		}

		responses := make([]LaundromatResponse, 0, len(laundromats))
		for _, l := range laundromats {
			a := aggMap[l.ID]
			responses = append(responses, LaundromatResponse{
				ID: l.ID, Name: l.Name, Address: l.Address,
				TotalMachines: a.Total, AvailableMachines: a.Available,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// GetLaundromatMachines handles the GET /api/laundromats/:id/machines request.
func GetLaundromatMachines(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		laundromatID := c.Param("id")

		var laundromat model.Laundromat
		if err := db.First(&laundromat, "id = ?", laundromatID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Laundromat not found"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve laundromat"})
			}
			return
		}

		var machines []model.Machine
		if err := db.Where("laundromat_id = ?", laundromatID).Order("created_at desc").Find(&machines).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
			return
		}

		c.JSON(http.StatusOK, machines)
	}
}
