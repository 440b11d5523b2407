package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carestay-backend/internal/model"
)

type residentRequest struct {
	FirstName   string     `json:"firstName" binding:"required"`
	LastName    string     `json:"lastName" binding:"required"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Notes       string     `json:"notes"`
}

func (r residentRequest) toModel(id int64) model.Resident {
	return model.Resident{
		ID:          id,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Notes:       r.Notes,
	}
}

func (h *Handler) ListResidents(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Residents())
}

func (h *Handler) CreateResident(c *gin.Context) {
	var req residentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.store.AddResident(req.toModel(0)))
}

func (h *Handler) GetResident(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, found := h.store.Resident(id)
	if !found {
		notFound(c, "resident")
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateResident(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req residentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	r := req.toModel(id)
	if !h.store.UpdateResident(r) {
		notFound(c, "resident")
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteResident removes a resident. Their stays are kept.
func (h *Handler) DeleteResident(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !h.store.DeleteResident(id) {
		notFound(c, "resident")
		return
	}
	c.Status(http.StatusNoContent)
}
