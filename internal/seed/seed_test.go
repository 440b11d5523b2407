package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carestay-backend/internal/model"
)

func TestRoomNumber(t *testing.T) {
	assert.Equal(t, "01", RoomNumber(model.SectorUP2, 1))
	assert.Equal(t, "15", RoomNumber(model.SectorUP1, 15))
	assert.Equal(t, "101", RoomNumber(model.SectorAileA, 101))
	assert.Equal(t, "7", RoomNumber(model.SectorAileD, 7))
}

func TestRooms(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rooms := Rooms(now)

	// 14 + 14 + 14 + 14 + 27 + 13
	require.Len(t, rooms, 96)

	first := rooms[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, model.SectorUP1, first.Sector)
	assert.Equal(t, "15", first.Number)

	perSector := make(map[model.Sector]int)
	for i, r := range rooms {
		assert.Equal(t, int64(i+1), r.ID, "ids should be contiguous")
		assert.Equal(t, model.RoomVacant, r.Status)
		assert.Nil(t, r.CurrentStayID)
		assert.Equal(t, now, r.LastStatusChange)
		perSector[r.Sector]++
	}
	assert.Equal(t, 14, perSector[model.SectorUP2])
	assert.Equal(t, 27, perSector[model.SectorAileC])
	assert.Equal(t, 13, perSector[model.SectorAileD])

	up2 := rooms[14]
	assert.Equal(t, model.SectorUP2, up2.Sector)
	assert.Equal(t, "01", up2.Number)
}
