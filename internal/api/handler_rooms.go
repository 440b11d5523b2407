package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carestay-backend/internal/model"
)

type createRoomRequest struct {
	ID     int64            `json:"id" binding:"omitempty,min=1"`
	Number string           `json:"number" binding:"required"`
	Sector model.Sector     `json:"sector" binding:"required,sector"`
	Status model.RoomStatus `json:"status" binding:"omitempty,roomstatus"`
	Notes  string           `json:"notes"`
}

type roomStatusRequest struct {
	Status model.RoomStatus `json:"status" binding:"required,roomstatus"`
}

type roomNotesRequest struct {
	Notes *string `json:"notes" binding:"required"`
}

// ListRooms returns all rooms, or those of one sector with ?sector=.
func (h *Handler) ListRooms(c *gin.Context) {
	if raw := c.Query("sector"); raw != "" {
		sector := model.Sector(raw)
		if !sector.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown sector"})
			return
		}
		c.JSON(http.StatusOK, h.store.RoomsBySector(sector))
		return
	}
	c.JSON(http.StatusOK, h.store.Rooms())
}

// CreateRoom adds a room. Without an id the next free room id is used.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.ID != 0 {
		if _, exists := h.store.Room(req.ID); exists {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "room id already in use"})
			return
		}
	}

	room := h.store.AddRoom(model.Room{
		ID:     req.ID,
		Number: req.Number,
		Sector: req.Sector,
		Status: req.Status,
		Notes:  req.Notes,
	})
	c.JSON(http.StatusCreated, room)
}

// GetRoom returns one room.
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	room, found := h.store.Room(id)
	if !found {
		notFound(c, "room")
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom removes a room. Its stays are kept.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if !h.store.DeleteRoom(id) {
		notFound(c, "room")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRoomStatus changes a room's status.
func (h *Handler) SetRoomStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req roomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.store.SetRoomStatus(id, req.Status) {
		notFound(c, "room")
		return
	}
	room, _ := h.store.Room(id)
	c.JSON(http.StatusOK, room)
}

// SetRoomNotes replaces a room's notes.
func (h *Handler) SetRoomNotes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req roomNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.store.SetRoomNotes(id, *req.Notes) {
		notFound(c, "room")
		return
	}
	room, _ := h.store.Room(id)
	c.JSON(http.StatusOK, room)
}

type activeStayResponse struct {
	Stay     model.Stay      `json:"stay"`
	Resident *model.Resident `json:"resident,omitempty"`
}

// GetRoomStay returns the stay currently occupying a room together with its
// resident, when the resident still exists.
func (h *Handler) GetRoomStay(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, found := h.store.Room(id); !found {
		notFound(c, "room")
		return
	}
	stay, found := h.store.ActiveStay(id)
	if !found {
		notFound(c, "active stay")
		return
	}
	resp := activeStayResponse{Stay: stay}
	if r, found := h.store.Resident(stay.ResidentID); found {
		resp.Resident = &r
	}
	c.JSON(http.StatusOK, resp)
}
