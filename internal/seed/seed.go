// Package seed builds the initial room inventory used when no snapshot exists.
package seed

import (
	"fmt"
	"time"

	"carestay-backend/internal/model"
)

// Range is an inclusive span of room numbers.
type Range struct {
	Start int
	End   int
}

// SectorRanges maps each sector to the room numbers it contains.
var SectorRanges = map[model.Sector]Range{
	model.SectorUP1:   {Start: 15, End: 28},
	model.SectorUP2:   {Start: 1, End: 14},
	model.SectorAileA: {Start: 101, End: 114},
	model.SectorAileB: {Start: 115, End: 128},
	model.SectorAileC: {Start: 130, End: 156},
	model.SectorAileD: {Start: 137, End: 149},
}

// RoomNumber formats n the way the sector labels its doors: the UP units use
// two digits, the wings use the bare number.
func RoomNumber(sector model.Sector, n int) string {
	switch sector {
	case model.SectorUP1, model.SectorUP2:
		return fmt.Sprintf("%02d", n)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Rooms returns the full initial inventory, every room vacant, ids starting at 1
// in sector order.
func Rooms(now time.Time) []model.Room {
	var rooms []model.Room
	var id int64 = 1
	for _, sector := range model.Sectors {
		r := SectorRanges[sector]
		for n := r.Start; n <= r.End; n++ {
			rooms = append(rooms, model.Room{
				ID:               id,
				Number:           RoomNumber(sector, n),
				Sector:           sector,
				Status:           model.RoomVacant,
				LastStatusChange: now,
			})
			id++
		}
	}
	return rooms
}
