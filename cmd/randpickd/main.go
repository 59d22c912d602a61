// Package main provides the randpick server: the wheel, team, number and
// letter pickers served over Telnet, with a gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/randpick/internal/config"
	"github.com/cory-johannsen/randpick/internal/frontend/handlers"
	"github.com/cory-johannsen/randpick/internal/frontend/telnet"
	"github.com/cory-johannsen/randpick/internal/observability"
	"github.com/cory-johannsen/randpick/internal/picker/engine"
	"github.com/cory-johannsen/randpick/internal/picker/rng"
	"github.com/cory-johannsen/randpick/internal/picker/tool"
	"github.com/cory-johannsen/randpick/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	roster, err := tool.LoadRoster(cfg.Picker)
	if err != nil {
		logger.Fatal("loading roster", zap.Error(err))
	}
	logger.Info("roster loaded",
		zap.String("roster", roster.Name),
		zap.Int("candidates", len(roster.Candidates)),
		zap.Bool("seeded", cfg.Picker.Seed != 0),
	)

	newSource := func() rng.Source { return tool.NewSource(cfg.Picker, logger) }
	pickerHandler := handlers.NewPickerHandler(cfg.Picker, roster, engine.RealScheduler{}, newSource, logger)
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, pickerHandler, logger)

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func() error {
			return telnetAcceptor.ListenAndServe()
		},
		StopFn: func() {
			telnetAcceptor.Stop()
		},
		ReadyFn: telnetAcceptor.Ready,
	})

	if cfg.Health.Enabled {
		health := server.NewHealth(cfg.Health, logger)
		lifecycle.Add("health", health)
		lifecycle.OnReady(func() { health.SetServing(server.PickerService, true) })
	}

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("health", cfg.Health.Enabled),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
