// Package store is the single source of truth for rooms, residents and stays.
//
// Every operation is total: an unknown id leaves the state unchanged and the
// mutation reports false instead of failing. All mutations run under one
// write lock, which also guards the id counters.
package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"carestay-backend/internal/metrics"
	"carestay-backend/internal/model"
)

// VacancyHook is called after a room became vacant. It runs outside the store
// lock and receives a copy of the room.
type VacancyHook func(room model.Room)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for consistency warnings.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(s *Store) { s.rec = rec }
}

// WithClock overrides time.Now for status-change timestamps and seeding.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store holds the three collections and keeps room occupancy consistent with
// the stays that reference it.
type Store struct {
	mu        sync.RWMutex
	rooms     []model.Room
	residents []model.Resident
	stays     []model.Stay

	nextResidentID int64
	nextStayID     int64

	// version counts applied mutations; savedVersion is the version last
	// written to a slot.
	version      uint64
	savedVersion uint64

	hooks []VacancyHook
	now   func() time.Time
	log   *zap.Logger
	rec   metrics.Recorder
}

// New creates an empty store. Call Load to hydrate it from a slot.
func New(opts ...Option) *Store {
	s := &Store{
		nextResidentID: 1,
		nextStayID:     1,
		now:            time.Now,
		log:            zap.NewNop(),
		rec:            metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnVacancy registers a hook fired whenever a room transitions to vacant.
func (s *Store) OnVacancy(h VacancyHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// mutate runs fn under the write lock. fn reports whether it changed state and
// which rooms it vacated; hooks and metrics are handled after unlocking.
func (s *Store) mutate(op string, fn func() (applied bool, vacated []model.Room)) bool {
	s.mu.Lock()
	applied, vacated := fn()
	var rates map[model.Sector]float64
	var hooks []VacancyHook
	if applied {
		s.version++
		rates = s.sectorRatesLocked()
		hooks = append(hooks, s.hooks...)
	}
	s.mu.Unlock()

	s.rec.IncMutation(op, applied)
	if !applied {
		return false
	}
	for sector, rate := range rates {
		s.rec.SetSectorOccupancy(string(sector), rate)
	}
	for _, room := range vacated {
		for _, h := range hooks {
			h(room)
		}
	}
	return true
}

// AddRoom appends a room. The caller owns id uniqueness; a zero id is
// replaced by the highest existing room id plus one.
func (s *Store) AddRoom(room model.Room) model.Room {
	var added model.Room
	s.mutate("add_room", func() (bool, []model.Room) {
		if room.ID == 0 {
			room.ID = s.maxRoomIDLocked() + 1
		}
		if room.Status == "" {
			room.Status = model.RoomVacant
		}
		if room.LastStatusChange.IsZero() {
			room.LastStatusChange = s.now()
		}
		added = room.Clone()
		s.rooms = append(s.rooms, added.Clone())
		return true, nil
	})
	return added
}

// DeleteRoom removes a room. Stays referencing it are left in place.
func (s *Store) DeleteRoom(id int64) bool {
	return s.mutate("delete_room", func() (bool, []model.Room) {
		i := s.roomIndexLocked(id)
		if i < 0 {
			return false, nil
		}
		s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
		return true, nil
	})
}

// SetRoomStatus changes a room's status and refreshes its status timestamp.
// The occupancy pointer is not touched.
func (s *Store) SetRoomStatus(id int64, status model.RoomStatus) bool {
	return s.mutate("set_room_status", func() (bool, []model.Room) {
		i := s.roomIndexLocked(id)
		if i < 0 {
			return false, nil
		}
		room := &s.rooms[i]
		prev := room.Status
		room.Status = status
		room.LastStatusChange = s.now()

		if status == model.RoomOccupied && room.CurrentStayID == nil {
			s.log.Warn("room marked occupied without an active stay",
				zap.Int64("room_id", room.ID), zap.String("number", room.Number))
		}
		if status == model.RoomVacant && prev != model.RoomVacant {
			return true, []model.Room{room.Clone()}
		}
		return true, nil
	})
}

// SetRoomNotes replaces a room's notes.
func (s *Store) SetRoomNotes(id int64, notes string) bool {
	return s.mutate("set_room_notes", func() (bool, []model.Room) {
		i := s.roomIndexLocked(id)
		if i < 0 {
			return false, nil
		}
		s.rooms[i].Notes = notes
		return true, nil
	})
}

// AddResident stores a new resident under the next resident id.
func (s *Store) AddResident(r model.Resident) model.Resident {
	var added model.Resident
	s.mutate("add_resident", func() (bool, []model.Room) {
		r.ID = s.nextResidentID
		s.nextResidentID++
		added = r.Clone()
		s.residents = append(s.residents, added.Clone())
		return true, nil
	})
	return added
}

// UpdateResident replaces the resident with the same id.
func (s *Store) UpdateResident(r model.Resident) bool {
	return s.mutate("update_resident", func() (bool, []model.Room) {
		i := s.residentIndexLocked(r.ID)
		if i < 0 {
			return false, nil
		}
		s.residents[i] = r.Clone()
		return true, nil
	})
}

// DeleteResident removes a resident. Stays referencing it are left in place.
func (s *Store) DeleteResident(id int64) bool {
	return s.mutate("delete_resident", func() (bool, []model.Room) {
		i := s.residentIndexLocked(id)
		if i < 0 {
			return false, nil
		}
		s.residents = append(s.residents[:i], s.residents[i+1:]...)
		return true, nil
	})
}

// CreateStay stores a new stay and makes it the occupant of its room. If the
// room already has an in-progress stay, that stay is ended at the new stay's
// start date so a room never holds two in-progress stays.
func (s *Store) CreateStay(st model.Stay) model.Stay {
	var created model.Stay
	s.mutate("create_stay", func() (bool, []model.Room) {
		st.ID = s.nextStayID
		s.nextStayID++

		if ri := s.roomIndexLocked(st.RoomID); ri >= 0 {
			room := &s.rooms[ri]
			if room.CurrentStayID != nil {
				if pi := s.stayIndexLocked(*room.CurrentStayID); pi >= 0 && s.stays[pi].Active() {
					end := st.StartDate
					s.stays[pi].EndDate = &end
					s.log.Info("ended previous stay on room reassignment",
						zap.Int64("room_id", room.ID),
						zap.Int64("previous_stay_id", s.stays[pi].ID),
						zap.Int64("stay_id", st.ID))
				}
			}
			id := st.ID
			room.CurrentStayID = &id
			if room.Status != model.RoomOccupied {
				room.LastStatusChange = s.now()
			}
			room.Status = model.RoomOccupied
		}

		created = st.Clone()
		s.stays = append(s.stays, created.Clone())
		return true, nil
	})
	return created
}

// UpdateStay replaces the stay with the same id. Room occupancy is not
// re-derived from the edit.
func (s *Store) UpdateStay(st model.Stay) bool {
	return s.mutate("update_stay", func() (bool, []model.Room) {
		i := s.stayIndexLocked(st.ID)
		if i < 0 {
			return false, nil
		}
		s.stays[i] = st.Clone()
		return true, nil
	})
}

// EndStay sets the stay's end date and marks its room vacant with no
// pointer. The room is left alone when its pointer names another stay that
// is still in progress. Any other room still pointing at the stay is freed
// as well.
func (s *Store) EndStay(id int64, endDate time.Time) bool {
	return s.mutate("end_stay", func() (bool, []model.Room) {
		i := s.stayIndexLocked(id)
		if i < 0 {
			return false, nil
		}
		end := endDate
		s.stays[i].EndDate = &end

		var vacated []model.Room
		for ri := range s.rooms {
			room := &s.rooms[ri]
			switch {
			case room.CurrentStayID != nil && *room.CurrentStayID == id:
			case room.ID == s.stays[i].RoomID && !s.heldByOtherActiveLocked(room, id):
			default:
				continue
			}
			if r, ok := s.vacateLocked(ri); ok {
				vacated = append(vacated, r)
			}
		}
		return true, vacated
	})
}

// heldByOtherActiveLocked reports whether room points at an in-progress stay
// other than stayID.
func (s *Store) heldByOtherActiveLocked(room *model.Room, stayID int64) bool {
	if room.CurrentStayID == nil || *room.CurrentStayID == stayID {
		return false
	}
	si := s.stayIndexLocked(*room.CurrentStayID)
	return si >= 0 && s.stays[si].Active()
}

// DeleteStay removes a stay and frees any room whose pointer referenced it.
func (s *Store) DeleteStay(id int64) bool {
	return s.mutate("delete_stay", func() (bool, []model.Room) {
		i := s.stayIndexLocked(id)
		if i < 0 {
			return false, nil
		}
		s.stays = append(s.stays[:i], s.stays[i+1:]...)

		var vacated []model.Room
		for ri := range s.rooms {
			if p := s.rooms[ri].CurrentStayID; p != nil && *p == id {
				if room, ok := s.releaseLocked(s.rooms[ri].ID, id); ok {
					vacated = append(vacated, room)
				}
			}
		}
		return true, vacated
	})
}

// releaseLocked frees roomID when its pointer references stayID.
func (s *Store) releaseLocked(roomID, stayID int64) (model.Room, bool) {
	ri := s.roomIndexLocked(roomID)
	if ri < 0 {
		return model.Room{}, false
	}
	if p := s.rooms[ri].CurrentStayID; p == nil || *p != stayID {
		return model.Room{}, false
	}
	return s.vacateLocked(ri)
}

// vacateLocked clears the pointer of the room at index ri and marks it
// vacant. It reports the room when its status changed.
func (s *Store) vacateLocked(ri int) (model.Room, bool) {
	room := &s.rooms[ri]
	prev := room.Status
	room.CurrentStayID = nil
	room.Status = model.RoomVacant
	if prev == model.RoomVacant {
		return model.Room{}, false
	}
	room.LastStatusChange = s.now()
	return room.Clone(), true
}

func (s *Store) roomIndexLocked(id int64) int {
	for i := range s.rooms {
		if s.rooms[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) residentIndexLocked(id int64) int {
	for i := range s.residents {
		if s.residents[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) stayIndexLocked(id int64) int {
	for i := range s.stays {
		if s.stays[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) maxRoomIDLocked() int64 {
	var highest int64
	for _, r := range s.rooms {
		if r.ID > highest {
			highest = r.ID
		}
	}
	return highest
}
