package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carestay-backend/config"
	"carestay-backend/internal/db"
	"carestay-backend/internal/model"
	"carestay-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testServerConfig = config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000}

func newTestStore() *store.Store {
	s := store.New()
	s.AddRoom(model.Room{ID: 1, Number: "15", Sector: model.SectorUP1})
	s.AddRoom(model.Room{ID: 2, Number: "01", Sector: model.SectorUP2})
	s.AddRoom(model.Room{ID: 3, Number: "101", Sector: model.SectorAileA})
	return s
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRooms(t *testing.T) {
	s := newTestStore()
	r := NewRouter(NewHandler(s, nil, nil, nil), testServerConfig, nil)

	t.Run("list is ordered by sector", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/rooms", nil)
		require.Equal(t, http.StatusOK, w.Code)
		rooms := decode[[]model.Room](t, w)
		require.Len(t, rooms, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{rooms[0].ID, rooms[1].ID, rooms[2].ID})
	})

	t.Run("filter by sector", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/rooms?sector=AILE_A", nil)
		require.Equal(t, http.StatusOK, w.Code)
		rooms := decode[[]model.Room](t, w)
		require.Len(t, rooms, 1)
		assert.Equal(t, "101", rooms[0].Number)

		w = doJSON(t, r, http.MethodGet, "/api/rooms?sector=ROOF", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"number": "102", "sector": "AILE_A"})
		require.Equal(t, http.StatusCreated, w.Code)
		room := decode[model.Room](t, w)
		assert.Equal(t, int64(4), room.ID)
		assert.Equal(t, model.RoomVacant, room.Status)

		w = doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"id": 4, "number": "103", "sector": "AILE_A"})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"number": "1", "sector": "ROOF"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("status and notes", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPut, "/api/rooms/2/status", gin.H{"status": "maintenance"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, model.RoomMaintenance, decode[model.Room](t, w).Status)

		w = doJSON(t, r, http.MethodPut, "/api/rooms/2/status", gin.H{"status": "broken"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, http.MethodPut, "/api/rooms/2/notes", gin.H{"notes": ""})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, r, http.MethodPut, "/api/rooms/99/notes", gin.H{"notes": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get and delete", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/api/rooms/abc", nil).Code)
		assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/api/rooms/4", nil).Code)
		assert.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/api/rooms/4", nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/rooms/4", nil).Code)
		assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodDelete, "/api/rooms/4", nil).Code)
	})
}

func TestResidents(t *testing.T) {
	r := NewRouter(NewHandler(store.New(), nil, nil, nil), testServerConfig, nil)

	w := doJSON(t, r, http.MethodPost, "/api/residents", gin.H{"firstName": "Jeanne", "lastName": "Martin", "dateOfBirth": "1931-05-12T00:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[model.Resident](t, w)
	assert.Equal(t, int64(1), created.ID)
	require.NotNil(t, created.DateOfBirth)

	w = doJSON(t, r, http.MethodPost, "/api/residents", gin.H{"firstName": "Paul"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/residents/1", gin.H{"firstName": "Jeanne", "lastName": "Durand"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Durand", decode[model.Resident](t, w).LastName)

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodPut, "/api/residents/7", gin.H{"firstName": "A", "lastName": "B"}).Code)

	w = doJSON(t, r, http.MethodGet, "/api/residents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Resident](t, w), 1)

	assert.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/api/residents/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/residents/1", nil).Code)
}

func TestStayLifecycle(t *testing.T) {
	s := newTestStore()
	resident := s.AddResident(model.Resident{FirstName: "Jeanne", LastName: "Martin"})
	r := NewRouter(NewHandler(s, nil, nil, nil), testServerConfig, nil)

	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	body := gin.H{"residentId": resident.ID, "roomId": 1, "startDate": start, "girLevel": 3, "stayType": "permanent"}

	t.Run("validation", func(t *testing.T) {
		bad := []gin.H{
			{"residentId": resident.ID, "roomId": 1, "startDate": start, "girLevel": 7, "stayType": "permanent"},
			{"residentId": resident.ID, "roomId": 1, "startDate": start, "girLevel": 3, "stayType": "forever"},
			{"residentId": resident.ID, "roomId": 99, "startDate": start, "girLevel": 3, "stayType": "temporary"},
			{"residentId": 42, "roomId": 1, "startDate": start, "girLevel": 3, "stayType": "temporary"},
			{"roomId": 1, "startDate": start, "girLevel": 3, "stayType": "temporary"},
		}
		for _, b := range bad {
			assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodPost, "/api/stays", b).Code, b)
		}
	})

	w := doJSON(t, r, http.MethodPost, "/api/stays", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	stay := decode[model.Stay](t, w)
	assert.Equal(t, int64(1), stay.ID)

	w = doJSON(t, r, http.MethodGet, "/api/rooms/1", nil)
	room := decode[model.Room](t, w)
	assert.Equal(t, model.RoomOccupied, room.Status)
	require.NotNil(t, room.CurrentStayID)
	assert.Equal(t, stay.ID, *room.CurrentStayID)

	w = doJSON(t, r, http.MethodGet, "/api/rooms/1/stay", nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decode[activeStayResponse](t, w)
	assert.Equal(t, stay.ID, active.Stay.ID)
	require.NotNil(t, active.Resident)
	assert.Equal(t, "Martin", active.Resident.LastName)

	w = doJSON(t, r, http.MethodGet, "/api/stays?roomId=1&active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Stay](t, w), 1)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/api/stays?active=maybe", nil).Code)

	w = doJSON(t, r, http.MethodPost, "/api/stays/1/end", gin.H{"endDate": start.AddDate(0, 0, -1)})
	assert.Equal(t, http.StatusBadRequest, w.Code, "end before start")

	end := start.AddDate(0, 1, 0)
	w = doJSON(t, r, http.MethodPost, "/api/stays/1/end", gin.H{"endDate": end})
	require.Equal(t, http.StatusOK, w.Code)
	ended := decode[model.Stay](t, w)
	require.NotNil(t, ended.EndDate)
	assert.True(t, ended.EndDate.Equal(end))

	room = decode[model.Room](t, doJSON(t, r, http.MethodGet, "/api/rooms/1", nil))
	assert.Equal(t, model.RoomVacant, room.Status)
	assert.Nil(t, room.CurrentStayID)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/rooms/1/stay", nil).Code)

	update := gin.H{"residentId": resident.ID, "roomId": 1, "startDate": start, "endDate": end, "girLevel": 2, "stayType": "permanent", "notes": "révisé"}
	w = doJSON(t, r, http.MethodPut, "/api/stays/1", update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.CareLevel(2), decode[model.Stay](t, w).GIRLevel)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodPut, "/api/stays/9", update).Code)

	assert.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/api/stays/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodPost, "/api/stays/1/end", nil).Code)
}

func TestOccupancyAndCareLevels(t *testing.T) {
	s := newTestStore()
	s.CreateStay(model.Stay{ResidentID: 1, RoomID: 1, StartDate: time.Now(), GIRLevel: 4, StayType: model.StayPermanent})
	r := NewRouter(NewHandler(s, nil, nil, nil), testServerConfig, nil)

	w := doJSON(t, r, http.MethodGet, "/api/occupancy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	occ := decode[occupancyResponse](t, w)
	assert.InDelta(t, 100.0/3, occ.OccupancyRate, 0.01)
	require.Len(t, occ.Sectors, len(model.Sectors))

	w = doJSON(t, r, http.MethodGet, "/api/occupancy/UP1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[store.SectorSummary](t, w)
	assert.Equal(t, 1, sum.Occupied)
	assert.InDelta(t, 100.0, sum.OccupancyRate, 0.01)

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/occupancy/ROOF", nil).Code)

	w = doJSON(t, r, http.MethodGet, "/api/care-levels", nil)
	require.Equal(t, http.StatusOK, w.Code)
	levels := decode[[]model.CareLevelDescription](t, w)
	require.Len(t, levels, 6)
	assert.Equal(t, "Autonomie", levels[5].AutonomyLevel)
}

func TestCacheInvalidatedByWrites(t *testing.T) {
	cfg := testServerConfig
	cfg.CacheTTLSeconds = 60
	r := NewRouter(NewHandler(newTestStore(), nil, nil, nil), cfg, nil)

	before := decode[[]model.Room](t, doJSON(t, r, http.MethodGet, "/api/rooms", nil))
	require.Len(t, before, 3)

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/rooms", gin.H{"number": "16", "sector": "UP1"}).Code)

	after := decode[[]model.Room](t, doJSON(t, r, http.MethodGet, "/api/rooms", nil))
	assert.Len(t, after, 4)
}

func TestSubscriptions(t *testing.T) {
	gormDB := newSQLiteDB(t)
	r := NewRouter(NewHandler(store.New(), gormDB, &webpush.Options{VAPIDPublicKey: "pub"}, nil), testServerConfig, nil)

	endpoint := "https://push.example.com/abc?x=1"

	w := doJSON(t, r, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": endpoint, "p256dh": "k", "auth": "a", "sectors": []string{"UP1", "AILE_B", "UP1"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.ElementsMatch(t, []model.Sector{model.SectorUP1, model.SectorAileB}, decode[map[string][]model.Sector](t, w)["sectors"])

	w = doJSON(t, r, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": endpoint, "p256dh": "k2", "auth": "a2", "sectors": []string{"AILE_C"}})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, []model.Sector{model.SectorAileC}, decode[map[string][]model.Sector](t, w)["sectors"])

	w = doJSON(t, r, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": endpoint, "p256dh": "k", "auth": "a", "sectors": []string{"ROOF"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodGet, "/api/subscriptions", nil).Code)

	assert.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": endpoint}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil).Code)

	var count int64
	require.NoError(t, gormDB.Model(&model.SubscriptionSector{}).Count(&count).Error)
	assert.Zero(t, count)

	w = doJSON(t, r, http.MethodGet, "/api/vapid_public_key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"pub","sectors":["UP1","UP2","AILE_A","AILE_B","AILE_C","AILE_D"]}`, w.Body.String())
}

func TestPushDisabled(t *testing.T) {
	r := NewRouter(NewHandler(store.New(), nil, nil, nil), testServerConfig, nil)

	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, r, http.MethodGet, "/api/vapid_public_key", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, doJSON(t, r, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": "e"}).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/healthz", nil).Code)
}

func TestRouterClientIPHeader(t *testing.T) {
	limited := func(cfg config.ServerConfig) int {
		r := NewRouter(NewHandler(store.New(), nil, nil, nil), cfg, nil)
		var last int
		for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
			req := httptest.NewRequest(http.MethodGet, "/api/care-levels", nil)
			req.Header.Set("X-Real-IP", ip)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			last = w.Code
		}
		return last
	}

	cfg := config.ServerConfig{RateLimitPerSec: 0.001, RateLimitBurst: 2, RequestIPHeader: "X-Real-IP"}
	assert.Equal(t, http.StatusTooManyRequests, limited(cfg), "header ignored without a trusted proxy")

	cfg.TrustedProxies = []string{"192.0.2.1"}
	assert.Equal(t, http.StatusOK, limited(cfg), "header honoured from a trusted proxy")
}
