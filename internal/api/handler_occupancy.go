package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carestay-backend/internal/model"
	"carestay-backend/internal/store"
)

type occupancyResponse struct {
	OccupancyRate float64               `json:"occupancyRate"`
	Sectors       []store.SectorSummary `json:"sectors"`
}

// GetOccupancy returns the global occupancy rate and one summary per sector.
func (h *Handler) GetOccupancy(c *gin.Context) {
	c.JSON(http.StatusOK, occupancyResponse{
		OccupancyRate: h.store.OccupancyRate(),
		Sectors:       h.store.SectorSummaries(),
	})
}

// GetSectorOccupancy returns the summary of one sector.
func (h *Handler) GetSectorOccupancy(c *gin.Context) {
	sector := model.Sector(c.Param("sector"))
	if !sector.Valid() {
		notFound(c, "sector")
		return
	}
	c.JSON(http.StatusOK, h.store.SectorSummaries()[sector.Order()])
}

// GetCareLevels lists the GIR groups with their descriptions.
func (h *Handler) GetCareLevels(c *gin.Context) {
	c.JSON(http.StatusOK, model.CareLevelDescriptions())
}
