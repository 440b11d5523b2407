package model

import "time"

// Sector identifies one of the facility zones a room belongs to.
type Sector string

const (
	SectorUP1   Sector = "UP1"
	SectorUP2   Sector = "UP2"
	SectorAileA Sector = "AILE_A"
	SectorAileB Sector = "AILE_B"
	SectorAileC Sector = "AILE_C"
	SectorAileD Sector = "AILE_D"
)

// Sectors lists every sector in display order.
var Sectors = []Sector{SectorUP1, SectorUP2, SectorAileA, SectorAileB, SectorAileC, SectorAileD}

// Valid reports whether s is a known sector.
func (s Sector) Valid() bool {
	return s.Order() >= 0
}

// Order returns the position of s in Sectors, or -1 for an unknown sector.
func (s Sector) Order() int {
	for i, known := range Sectors {
		if s == known {
			return i
		}
	}
	return -1
}

// RoomStatus is the occupancy state of a room.
type RoomStatus string

const (
	RoomVacant      RoomStatus = "vacant"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// Valid reports whether s is a known room status.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomVacant, RoomOccupied, RoomMaintenance:
		return true
	}
	return false
}

// Room is a bedroom of the facility.
type Room struct {
	ID               int64      `json:"id"`
	Number           string     `json:"number"`
	Sector           Sector     `json:"sector"`
	Status           RoomStatus `json:"status"`
	Notes            string     `json:"notes"`
	LastStatusChange time.Time  `json:"lastStatusChange"`
	// CurrentStayID points at the in-progress stay occupying the room.
	CurrentStayID *int64 `json:"currentStayId,omitempty"`
}

// Clone returns a deep copy of r.
func (r Room) Clone() Room {
	if r.CurrentStayID != nil {
		id := *r.CurrentStayID
		r.CurrentStayID = &id
	}
	return r
}
