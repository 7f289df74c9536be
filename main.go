package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/dinecommand/advisor"
	"github.com/yeremiapane/dinecommand/config"
	"github.com/yeremiapane/dinecommand/database"
	"github.com/yeremiapane/dinecommand/directory"
	"github.com/yeremiapane/dinecommand/feed"
	"github.com/yeremiapane/dinecommand/kds"
	"github.com/yeremiapane/dinecommand/router"
	"github.com/yeremiapane/dinecommand/services"
	"github.com/yeremiapane/dinecommand/store"
	"github.com/yeremiapane/dinecommand/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLoggerWithLevel(cfg.LogLevel, cfg.LogColors)

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB (guest/staff directory)
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}

	if cfg.Gemini.APIKey == "" {
		utils.ErrorLogger.Warn("GEMINI_API_KEY is not set, every analysis will return the fallback")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tables := store.NewTableStore()
	dispatcher := services.NewAdvisoryDispatcher(tables, directory.NewGormDirectory(db), advisor.NewGeminiClient(cfg.Gemini), cfg.Advisory)
	registry := services.NewConsoleRegistry(dispatcher, cfg.Advisory.ConsoleIdleTTL)

	// Live floor updates
	hub := kds.NewFloorHub()
	changes, unsubscribe := tables.Subscribe(256)
	defer unsubscribe()
	go hub.Run(ctx, changes)

	// Pacing monitor: naikkan seated duration dan pasang alert slow_pacing
	pacing := services.NewPacingMonitor(tables, cfg.Pacing.Interval, cfg.Pacing.Threshold)
	pacing.Start()
	defer pacing.Stop()

	feed.RunAll(ctx, tables, feedSources(cfg.Feed)...)

	r := router.SetupRouter(router.Deps{
		Store:                 tables,
		Guard:                 services.NewStatusGuard(tables),
		Pipeline:              services.NewAlertPipeline(tables),
		Registry:              registry,
		Hub:                   hub,
		CORSAllowedOrigin:     cfg.Server.CORSAllowedOrigin,
		AnalysisRatePerMinute: cfg.Server.AnalysisRatePerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
}

func feedSources(cfg config.FeedConfig) []feed.Source {
	var sources []feed.Source
	if cfg.RedisURL != "" {
		src, err := feed.NewRedisSource(cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			utils.ErrorLogger.Errorf("Redis feed disabled: %v", err)
		} else {
			sources = append(sources, src)
		}
	}
	if cfg.NATSURL != "" {
		sources = append(sources, feed.NewNATSSource(cfg.NATSURL, cfg.NATSSubject))
	}
	if len(sources) == 0 {
		utils.InfoLogger.Println("No external event feed configured, only PUT /api/tables/:table_id updates the floor")
	}
	return sources
}
