package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/houserules/server/internal/cardlib" // register the built-in card set
	"github.com/houserules/server/internal/config"
	"github.com/houserules/server/internal/game"
	"github.com/houserules/server/internal/game/engine"
	"github.com/houserules/server/internal/metrics"
	"github.com/houserules/server/internal/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting houserules server",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Int("registered_cards", len(game.RegisteredCards())),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	recorder := metrics.NewRecorder()

	newEngine := func() *engine.Engine {
		seed := cfg.Game.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		logger.Info("deck shuffle seeded", zap.Int64("seed", seed))
		return engine.New(rand.New(rand.NewSource(seed)), logger, engine.Options{
			HandSize: cfg.Game.HandSize,
			DeckSize: cfg.Game.DeckSize,
		})
	}

	roomMgr := transport.NewManager(newEngine, cfg.Game.MaxPlayers, recorder, logger)
	logger.Info("room manager initialized")

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: roomMgr.Handler(cfg.Metrics),
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled && cfg.Metrics.Address != "" && cfg.Metrics.Address != cfg.Server.Address {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
		go func() {
			logger.Info("starting metrics server", zap.String("address", cfg.Metrics.Address))
			if serveErr := metricsServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Error("metrics server error", zap.Error(serveErr))
			}
		}()
	}

	logger.Info("houserules server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	roomMgr.CloseAll()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}

	logger.Info("houserules server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
