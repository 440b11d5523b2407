package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"carestay-backend/internal/model"
	"carestay-backend/internal/persist"
	"carestay-backend/internal/seed"
)

// Snapshot is the persisted form of the store. Dates travel as RFC 3339
// strings and are parsed back into time values on load.
type Snapshot struct {
	Rooms     []model.Room     `json:"rooms"`
	Residents []model.Resident `json:"residents"`
	Stays     []model.Stay     `json:"stays"`
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Rooms:     make([]model.Room, 0, len(s.rooms)),
		Residents: make([]model.Resident, 0, len(s.residents)),
		Stays:     make([]model.Stay, 0, len(s.stays)),
	}
	for _, r := range s.rooms {
		snap.Rooms = append(snap.Rooms, r.Clone())
	}
	for _, r := range s.residents {
		snap.Residents = append(snap.Residents, r.Clone())
	}
	for _, st := range s.stays {
		snap.Stays = append(snap.Stays, st.Clone())
	}
	return snap
}

// Restore replaces the whole state with snap. Id counters resume after the
// highest id found. The restored state counts as unsaved.
func (s *Store) Restore(snap Snapshot) {
	s.mutate("restore", func() (bool, []model.Room) {
		s.restoreLocked(snap)
		return true, nil
	})
}

func (s *Store) restoreLocked(snap Snapshot) {
	s.rooms = make([]model.Room, 0, len(snap.Rooms))
	for _, r := range snap.Rooms {
		s.rooms = append(s.rooms, r.Clone())
	}
	s.residents = make([]model.Resident, 0, len(snap.Residents))
	s.nextResidentID = 1
	for _, r := range snap.Residents {
		s.residents = append(s.residents, r.Clone())
		if r.ID >= s.nextResidentID {
			s.nextResidentID = r.ID + 1
		}
	}
	s.stays = make([]model.Stay, 0, len(snap.Stays))
	s.nextStayID = 1
	for _, st := range snap.Stays {
		s.stays = append(s.stays, st.Clone())
		if st.ID >= s.nextStayID {
			s.nextStayID = st.ID + 1
		}
	}
}

// Load hydrates the store from slot. When the slot is empty the room
// inventory is seeded and seeded is true; the seeded state is left dirty so
// the next flush persists it.
func (s *Store) Load(ctx context.Context, slot persist.Slot) (seeded bool, err error) {
	payload, err := slot.Load(ctx)
	if errors.Is(err, persist.ErrNotFound) {
		rooms := seed.Rooms(s.now())
		s.Restore(Snapshot{Rooms: rooms})
		s.log.Info("no snapshot found, seeded room inventory", zap.Int("rooms", len(rooms)))
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap, err := DecodeSnapshot(payload)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.restoreLocked(snap)
	s.version++
	s.savedVersion = s.version
	rates := s.sectorRatesLocked()
	s.mu.Unlock()

	for sector, rate := range rates {
		s.rec.SetSectorOccupancy(string(sector), rate)
	}

	s.log.Info("snapshot loaded",
		zap.Int("rooms", len(snap.Rooms)),
		zap.Int("residents", len(snap.Residents)),
		zap.Int("stays", len(snap.Stays)))
	return false, nil
}

// Save writes the current state to slot.
func (s *Store) Save(ctx context.Context, slot persist.Slot) error {
	start := time.Now()

	s.mu.RLock()
	snap := s.snapshotLocked()
	version := s.version
	s.mu.RUnlock()

	payload, err := EncodeSnapshot(snap)
	if err == nil {
		err = slot.Save(ctx, payload)
	}
	s.rec.ObserveFlush(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.mu.Lock()
	if version > s.savedVersion {
		s.savedVersion = version
	}
	s.mu.Unlock()
	return nil
}

// Dirty reports whether the state changed since it was last loaded or saved.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version != s.savedVersion
}

// EncodeSnapshot serializes snap.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot parses a serialized snapshot.
func DecodeSnapshot(payload []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
