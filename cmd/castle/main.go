// Package main runs the castle. By default one game is played over stdin and
// stdout; with telnet enabled every connection plays its own game.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/config"
	"github.com/cory-johannsen/castle/internal/frontend/handlers"
	"github.com/cory-johannsen/castle/internal/frontend/telnet"
	"github.com/cory-johannsen/castle/internal/game/save"
	"github.com/cory-johannsen/castle/internal/game/session"
	"github.com/cory-johannsen/castle/internal/observability"
	"github.com/cory-johannsen/castle/internal/server"
	"github.com/cory-johannsen/castle/internal/storage/file"
	"github.com/cory-johannsen/castle/internal/storage/postgres"
	"github.com/cory-johannsen/castle/internal/storage/sqlite"
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

	loadStart := time.Now()
	content, err := session.LoadContent(cfg)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.String("map", cfg.Data.MapFile),
		zap.Int("rooms", content.Table.Len()),
		zap.Int("items", len(content.Items.Items())),
		zap.Int("overlay_records", len(content.Overlay)),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	lc := server.NewLifecycle(logger)
	if cfg.Telnet.Enabled {
		sessions := session.NewManager()
		handler := handlers.NewGameHandler(content, sessions, observability.Component(logger, "session"))
		lc.Add("telnet", telnet.NewAcceptor(cfg.Telnet, handler, observability.Component(logger, "telnet")))
	} else {
		ctx := context.Background()
		saves, closeSaves, err := openSaves(ctx, cfg)
		if err != nil {
			logger.Fatal("opening save store", zap.String("backend", cfg.Save.Backend), zap.Error(err))
		}
		lc.Add("saves", server.Closer(closeSaves))

		g, err := session.NewGame(content, saves, logger)
		if err != nil {
			logger.Fatal("building game", zap.Error(err))
		}
		lc.Add("console", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				g.Start()
				return handlers.Play(ctx, g, handlers.NewStdio(os.Stdin, os.Stdout))
			},
			StopFn: g.Close,
		})
	}

	logger.Info("castle ready",
		zap.Bool("telnet", cfg.Telnet.Enabled),
		zap.String("save_backend", cfg.Save.Backend),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err := lc.Run(context.Background()); err != nil {
		logger.Error("castle stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

// openSaves builds the configured save store and its cleanup.
func openSaves(ctx context.Context, cfg config.Config) (save.Store, func(), error) {
	switch cfg.Save.Backend {
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Save.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return pool.Snapshots(), pool.Close, nil
	default:
		return file.New(cfg.Save.Path), func() {}, nil
	}
}
