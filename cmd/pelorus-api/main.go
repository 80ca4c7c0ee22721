// README: Entry point; loads config, wires the safety services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pelorus/internal/ai"
	"pelorus/internal/config"
	httptransport "pelorus/internal/http"
	"pelorus/internal/infra"
	"pelorus/internal/logging"
	"pelorus/internal/metocean"
	"pelorus/internal/modules/area"
	"pelorus/internal/modules/audit"
	"pelorus/internal/modules/depth"
	"pelorus/internal/modules/override"
	"pelorus/internal/modules/safety"
	"pelorus/internal/modules/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.File)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	auditSink := audit.NewStore(dbPool)
	auditLog := audit.NewLog(cfg.Safety.AuditCapacity, auditSink, logger)

	areaStore := area.NewStore(dbPool, redisClient)
	areaCfg := area.DefaultConfig()
	areaCfg.RefreshInterval = time.Duration(cfg.Safety.AreaRefreshSeconds) * time.Second
	registry := area.NewRegistry(areaStore, areaCfg, logger)
	if err := registry.Refresh(ctx); err != nil {
		logger.Warn("initial area refresh failed, using built-in catalog", "error", err)
	}

	depthCfg := depth.DefaultConfig()
	depthCfg.ClearancePercent = cfg.Safety.ClearancePercent
	depthCfg.AbsoluteClearanceFt = cfg.Safety.AbsoluteClearanceFt
	depthCfg.ChartDatumAdjustmentFt = cfg.Safety.ChartDatumAdjustmentFt
	engine := depth.NewEngine(depthCfg)

	detector := weather.NewDetector(weather.DefaultThresholds(), logger)
	authority := override.NewAuthority(auditLog, logger)
	safetySvc := safety.NewService(registry, engine, detector, auditLog, logger)

	var briefing ai.BriefingProvider
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Fatalf("gemini init: %v", err)
		}
		defer provider.Close()
		briefing = provider
	}

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Safety:    safetySvc,
		Depth:     engine,
		Areas:     registry,
		AreaStore: areaStore,
		Overrides: authority,
		Audit:     auditLog,
		Metocean:  metocean.NewClient(cfg.Metocean.BaseURL),
		Station:   cfg.Metocean.StationID,
		Briefing:  briefing,
		APIKey:    cfg.HTTP.APIKey,
		Log:       logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
