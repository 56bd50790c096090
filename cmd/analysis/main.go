package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postmortem-analysis/internal/analysis"
	"postmortem-analysis/internal/api"
	"postmortem-analysis/internal/config"
	"postmortem-analysis/internal/generator"
	"postmortem-analysis/internal/jobstore"
	"postmortem-analysis/internal/redactor"
	"postmortem-analysis/internal/worker"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	gen, err := generator.NewClient(cfg, log)
	if err != nil {
		log.Error("init report generator", "error", err)
		os.Exit(1)
	}

	store := jobstore.New(log)
	red := redactor.New(log)
	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueCapacity, log)
	pool.Start(ctx)

	svc := analysis.New(store, red, gen, pool, cfg.RetentionWindow, cfg.SweepInterval, log)
	go svc.RunSweeper(ctx)

	server := api.New(svc, log)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	log.Info("analysis service listening",
		"port", cfg.HTTPPort,
		"workers", cfg.WorkerCount,
		"retention", cfg.RetentionWindow,
	)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(shutdownCtx)
	pool.Wait()
	log.Info("analysis service stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)
	return log
}
