package store

import (
	"sort"

	"carestay-backend/internal/model"
	"carestay-backend/internal/parse"
)

// StayFilter narrows Stays. Zero fields match everything.
type StayFilter struct {
	RoomID     int64
	ResidentID int64
	ActiveOnly bool
}

func (f StayFilter) match(st model.Stay) bool {
	if f.RoomID != 0 && st.RoomID != f.RoomID {
		return false
	}
	if f.ResidentID != 0 && st.ResidentID != f.ResidentID {
		return false
	}
	if f.ActiveOnly && !st.Active() {
		return false
	}
	return true
}

// SectorSummary counts the rooms of one sector by status.
type SectorSummary struct {
	Sector        model.Sector `json:"sector"`
	TotalRooms    int          `json:"totalRooms"`
	Occupied      int          `json:"occupiedRooms"`
	Vacant        int          `json:"vacantRooms"`
	Maintenance   int          `json:"maintenanceRooms"`
	OccupancyRate float64      `json:"occupancyRate"`
}

// Rooms returns every room ordered by sector then room number.
func (s *Store) Rooms() []model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRooms(s.rooms, func(model.Room) bool { return true })
}

// RoomsBySector returns the rooms of one sector ordered by room number.
func (s *Store) RoomsBySector(sector model.Sector) []model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedRooms(s.rooms, func(r model.Room) bool { return r.Sector == sector })
}

// Room looks a room up by id.
func (s *Store) Room(id int64) (model.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.roomIndexLocked(id); i >= 0 {
		return s.rooms[i].Clone(), true
	}
	return model.Room{}, false
}

// Residents returns every resident in creation order.
func (s *Store) Residents() []model.Resident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Resident, 0, len(s.residents))
	for _, r := range s.residents {
		out = append(out, r.Clone())
	}
	return out
}

// Resident looks a resident up by id.
func (s *Store) Resident(id int64) (model.Resident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.residentIndexLocked(id); i >= 0 {
		return s.residents[i].Clone(), true
	}
	return model.Resident{}, false
}

// Stays returns the stays matching f in creation order.
func (s *Store) Stays(f StayFilter) []model.Stay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Stay, 0)
	for _, st := range s.stays {
		if f.match(st) {
			out = append(out, st.Clone())
		}
	}
	return out
}

// Stay looks a stay up by id.
func (s *Store) Stay(id int64) (model.Stay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.stayIndexLocked(id); i >= 0 {
		return s.stays[i].Clone(), true
	}
	return model.Stay{}, false
}

// ActiveStay returns the stay referenced by the room's occupancy pointer. It
// does not scan stays by room id when the pointer is empty.
func (s *Store) ActiveStay(roomID int64) (model.Stay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ri := s.roomIndexLocked(roomID)
	if ri < 0 || s.rooms[ri].CurrentStayID == nil {
		return model.Stay{}, false
	}
	if si := s.stayIndexLocked(*s.rooms[ri].CurrentStayID); si >= 0 {
		return s.stays[si].Clone(), true
	}
	return model.Stay{}, false
}

// OccupancyRate returns the percentage of occupied rooms, 0 when there are none.
func (s *Store) OccupancyRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return occupancyRate(s.rooms, func(model.Room) bool { return true })
}

// SectorOccupancyRate returns the percentage of occupied rooms in a sector,
// 0 when the sector has none.
func (s *Store) SectorOccupancyRate(sector model.Sector) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return occupancyRate(s.rooms, func(r model.Room) bool { return r.Sector == sector })
}

// SectorSummaries returns one summary per known sector, in sector order.
func (s *Store) SectorSummaries() []SectorSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byIndex := make([]SectorSummary, len(model.Sectors))
	for i, sector := range model.Sectors {
		byIndex[i].Sector = sector
	}
	for _, r := range s.rooms {
		i := r.Sector.Order()
		if i < 0 {
			continue
		}
		sum := &byIndex[i]
		sum.TotalRooms++
		switch r.Status {
		case model.RoomOccupied:
			sum.Occupied++
		case model.RoomMaintenance:
			sum.Maintenance++
		default:
			sum.Vacant++
		}
	}
	for i := range byIndex {
		if byIndex[i].TotalRooms > 0 {
			byIndex[i].OccupancyRate = float64(byIndex[i].Occupied) / float64(byIndex[i].TotalRooms) * 100
		}
	}
	return byIndex
}

func (s *Store) sectorRatesLocked() map[model.Sector]float64 {
	rates := make(map[model.Sector]float64, len(model.Sectors))
	for _, sector := range model.Sectors {
		sector := sector
		rates[sector] = occupancyRate(s.rooms, func(r model.Room) bool { return r.Sector == sector })
	}
	return rates
}

func occupancyRate(rooms []model.Room, keep func(model.Room) bool) float64 {
	var total, occupied int
	for _, r := range rooms {
		if !keep(r) {
			continue
		}
		total++
		if r.Status == model.RoomOccupied {
			occupied++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(occupied) / float64(total) * 100
}

func sortedRooms(rooms []model.Room, keep func(model.Room) bool) []model.Room {
	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Sector.Order(), out[j].Sector.Order()
		if oi != oj {
			return oi < oj
		}
		return parse.LessRoomNumber(out[i].Number, out[j].Number)
	})
	return out
}
