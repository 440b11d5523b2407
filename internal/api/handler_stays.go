package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carestay-backend/internal/model"
	"carestay-backend/internal/store"
)

type createStayRequest struct {
	ResidentID int64           `json:"residentId" binding:"required,min=1"`
	RoomID     int64           `json:"roomId" binding:"required,min=1"`
	StartDate  time.Time       `json:"startDate" binding:"required"`
	GIRLevel   model.CareLevel `json:"girLevel" binding:"required,gir"`
	StayType   model.StayType  `json:"stayType" binding:"required,staytype"`
	Notes      string          `json:"notes"`
}

type updateStayRequest struct {
	createStayRequest
	EndDate *time.Time `json:"endDate"`
}

type endStayRequest struct {
	EndDate *time.Time `json:"endDate"`
}

// checkReferences answers 400 when the stay points at an unknown room or resident.
func (h *Handler) checkReferences(c *gin.Context, roomID, residentID int64) bool {
	if _, found := h.store.Room(roomID); !found {
		badRequest(c, fmt.Errorf("room %d does not exist", roomID))
		return false
	}
	if _, found := h.store.Resident(residentID); !found {
		badRequest(c, fmt.Errorf("resident %d does not exist", residentID))
		return false
	}
	return true
}

// ListStays returns stays filtered by ?roomId=, ?residentId= and ?active=true.
func (h *Handler) ListStays(c *gin.Context) {
	var f store.StayFilter
	var ok bool
	if f.RoomID, ok = int64Query(c, "roomId"); !ok {
		return
	}
	if f.ResidentID, ok = int64Query(c, "residentId"); !ok {
		return
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, errors.New("invalid active"))
			return
		}
		f.ActiveOnly = active
	}
	c.JSON(http.StatusOK, h.store.Stays(f))
}

// CreateStay opens a stay and marks its room occupied.
func (h *Handler) CreateStay(c *gin.Context) {
	var req createStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.checkReferences(c, req.RoomID, req.ResidentID) {
		return
	}

	stay := h.store.CreateStay(model.Stay{
		ResidentID: req.ResidentID,
		RoomID:     req.RoomID,
		StartDate:  req.StartDate,
		GIRLevel:   req.GIRLevel,
		StayType:   req.StayType,
		Notes:      req.Notes,
	})
	c.JSON(http.StatusCreated, stay)
}

func (h *Handler) GetStay(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	stay, found := h.store.Stay(id)
	if !found {
		notFound(c, "stay")
		return
	}
	c.JSON(http.StatusOK, stay)
}

// UpdateStay replaces a stay. Room occupancy is left as is; use the end
// endpoint to free a room.
func (h *Handler) UpdateStay(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		badRequest(c, errors.New("endDate is before startDate"))
		return
	}
	if _, found := h.store.Stay(id); !found {
		notFound(c, "stay")
		return
	}
	if !h.checkReferences(c, req.RoomID, req.ResidentID) {
		return
	}

	stay := model.Stay{
		ID:         id,
		ResidentID: req.ResidentID,
		RoomID:     req.RoomID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		GIRLevel:   req.GIRLevel,
		StayType:   req.StayType,
		Notes:      req.Notes,
	}
	if !h.store.UpdateStay(stay) {
		notFound(c, "stay")
		return
	}
	c.JSON(http.StatusOK, stay)
}

// EndStay closes a stay, by default at the current time, and frees its room.
func (h *Handler) EndStay(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req endStayRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	end := time.Now()
	if req.EndDate != nil {
		end = *req.EndDate
	}

	stay, found := h.store.Stay(id)
	if !found {
		notFound(c, "stay")
		return
	}
	if end.Before(stay.StartDate) {
		badRequest(c, errors.New("endDate is before startDate"))
		return
	}
	if !h.store.EndStay(id, end) {
		notFound(c, "stay")
		return
	}
	stay, _ = h.store.Stay(id)
	c.JSON(http.StatusOK, stay)
}

func (h *Handler) DeleteStay(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !h.store.DeleteStay(id) {
		notFound(c, "stay")
		return
	}
	c.Status(http.StatusNoContent)
}
