package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"carestay-backend/config"
	"carestay-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. metricsHandler is
// mounted at /metrics when not nil.
func NewRouter(h *Handler, cfg config.ServerConfig, metricsHandler http.Handler) *gin.Engine {
	registerValidators()

	r := gin.New()
	if cfg.RequestIPHeader != "" {
		r.RemoteIPHeaders = []string{cfg.RequestIPHeader}
	}
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		h.log.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), mw.RequestID(), mw.AccessLog(h.log.Named("http")))

	r.GET("/healthz", h.Healthz)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	api := r.Group("/api")
	api.Use(rateLimiter)

	// State endpoints share one cache; any successful write flushes it.
	state := api.Group("")
	if cfg.CacheTTLSeconds > 0 {
		ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
		state.Use(mw.Cache(cache.New(ttl, 2*ttl), ttl))
	}
	{
		state.GET("/rooms", h.ListRooms)
		state.POST("/rooms", h.CreateRoom)
		state.GET("/rooms/:id", h.GetRoom)
		state.DELETE("/rooms/:id", h.DeleteRoom)
		state.PUT("/rooms/:id/status", h.SetRoomStatus)
		state.PUT("/rooms/:id/notes", h.SetRoomNotes)
		state.GET("/rooms/:id/stay", h.GetRoomStay)

		state.GET("/residents", h.ListResidents)
		state.POST("/residents", h.CreateResident)
		state.GET("/residents/:id", h.GetResident)
		state.PUT("/residents/:id", h.UpdateResident)
		state.DELETE("/residents/:id", h.DeleteResident)

		state.GET("/stays", h.ListStays)
		state.POST("/stays", h.CreateStay)
		state.GET("/stays/:id", h.GetStay)
		state.PUT("/stays/:id", h.UpdateStay)
		state.POST("/stays/:id/end", h.EndStay)
		state.DELETE("/stays/:id", h.DeleteStay)

		state.GET("/occupancy", h.GetOccupancy)
		state.GET("/occupancy/:sector", h.GetSectorOccupancy)
		state.GET("/care-levels", h.GetCareLevels)
	}

	api.GET("/subscriptions", h.GetSubscription)
	api.PUT("/subscriptions", h.PutSubscription)
	api.DELETE("/subscriptions", h.DeleteSubscription)
	api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

	return r
}

// Healthz reports whether the database, when configured, is reachable.
func (h *Handler) Healthz(c *gin.Context) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
