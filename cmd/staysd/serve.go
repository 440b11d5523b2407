package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carestay-backend/internal/api"
	"carestay-backend/internal/metrics"
	"carestay-backend/internal/notification"
	"carestay-backend/internal/persist"
	"carestay-backend/internal/store"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
type ServeCmd struct{}

func (cmd *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cli.Config, true)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, log := a.cfg, a.log

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(reg)

	st := store.New(store.WithLogger(log.Named("store")), store.WithRecorder(rec))
	seeded, err := st.Load(ctx, a.slot)
	if err != nil {
		return err
	}
	if seeded {
		if err := st.Save(ctx, a.slot); err != nil {
			return err
		}
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var webpushOptions *webpush.Options
	var pushDB *gorm.DB
	if cfg.Push.Enabled {
		pushDB = a.db
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, a.db, webpushOptions, log, rec)
		pool.Start(workerCtx)
		st.OnVacancy(pool.Dispatch)
		log.Info("push notifications enabled", zap.Int("workers", cfg.WorkerPool.Size))
	}

	flusher := persist.NewFlusher(st, a.slot, cfg.Snapshot.FlushInterval, log.Named("flusher"))
	go flusher.Run(workerCtx)

	handler := api.NewHandler(st, pushDB, webpushOptions, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(handler, cfg.Server, metrics.Handler(reg)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping services")
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown", zap.Error(err))
	}
	cancelWorkers()
	<-flusher.Done()

	saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSave()
	if err := st.Save(saveCtx, a.slot); err != nil {
		return err
	}
	log.Info("state saved, server stopped")
	return nil
}
