package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hearthsim/hstracker-go/internal/config"
	"github.com/hearthsim/hstracker-go/internal/tracker"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	replayPath = flag.String("replay", "", "fact replay file to play through the engine")
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

	logger.Info("starting tracker",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	engine := tracker.NewEngine(tracker.EngineConfig{
		Stats:                &loggingStatsSink{logger: logger},
		StartDebounce:        cfg.Engine.StartDebounce,
		RefreshInterval:      cfg.Engine.RefreshInterval,
		SnapshotDelay:        cfg.Engine.SnapshotDelay,
		TurnCountdownSeconds: cfg.Engine.TurnCountdownSeconds,
	}, logger.Named("engine"))
	defer engine.Close()

	if cfg.Replay.RecordPath != "" {
		recorder, recErr := tracker.NewRecorder(cfg.Replay.RecordPath)
		if recErr != nil {
			logger.Fatal("failed to open fact recorder", zap.Error(recErr))
		}
		engine.SetRecorder(recorder)
		logger.Info("fact recording enabled", zap.String("path", cfg.Replay.RecordPath))
	}

	if *replayPath == "" {
		logger.Fatal("no fact source configured; pass -replay <file>")
	}

	source, err := tracker.OpenReplay(*replayPath, logger)
	if err != nil {
		logger.Fatal("failed to open replay", zap.Error(err))
	}

	if err := engine.Run(ctx, source); err != nil && err != context.Canceled {
		logger.Error("engine stopped", zap.Error(err))
	}

	checksum := engine.Checksum()
	logger.Info("replay complete",
		zap.Stringer("state", engine.State()),
		zap.Int("turn", engine.CurrentTurn()),
		zap.String("checksum", checksum.Hash),
	)
}

// loggingStatsSink logs end-of-match statistics instead of uploading them.
type loggingStatsSink struct {
	logger *zap.Logger
}

func (s *loggingStatsSink) MatchEnded(stats tracker.MatchStats) {
	s.logger.Info("match statistics",
		zap.Stringer("result", stats.Result),
		zap.Bool("conceded", stats.Conceded),
		zap.Duration("duration", stats.Duration),
		zap.Int("turns", stats.Turns),
		zap.Stringer("mode", stats.Mode),
		zap.Int("cards_played", len(stats.PlayedCards)),
	)
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
