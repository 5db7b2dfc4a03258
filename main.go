package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sqlward/sqlward/pkg/config"
	"github.com/sqlward/sqlward/pkg/gateway"
	"github.com/sqlward/sqlward/pkg/logging"
	"github.com/sqlward/sqlward/pkg/mcp"
	"github.com/sqlward/sqlward/pkg/mcp/tools"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck // sync on exit is best-effort

	profiles, err := config.LoadProfiles(cfg.ProfilesPath)
	if err != nil {
		logger.Fatal("failed to load profiles", zap.Error(err))
	}

	manager := gateway.NewPoolManager(gateway.ManagerConfig{
		PoolMaxConns:     cfg.Pool.MaxConns,
		PoolMaxIdleConns: cfg.Pool.MaxIdleConns,
		ConnMaxIdleTime:  time.Duration(cfg.Pool.ConnMaxIdleMinutes) * time.Minute,
	}, logger)
	defer manager.Shutdown()

	srv := mcp.NewServer("sqlward", cfg.Version, logger)
	tools.RegisterAll(srv, &tools.Deps{
		Manager:        manager,
		Profiles:       profiles,
		Runner:         gateway.NewQueryRunner(logger),
		Assembler:      gateway.NewSchemaAssembler(logger),
		DefaultMaxRows: cfg.Query.MaxRows,
		TimeoutSeconds: cfg.Query.TimeoutSeconds,
		Logger:         logger,
	})

	logger.Info("starting sqlward",
		zap.String("version", cfg.Version),
		zap.String("transport", cfg.Transport),
		zap.Int("profiles", len(profiles)),
	)

	switch cfg.Transport {
	case "http":
		httpServer := srv.NewStreamableHTTPServer()
		addr := cfg.BindAddr + ":" + cfg.Port

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.Start(addr)
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				logger.Fatal("http server failed", zap.Error(err))
			}
		case sig := <-stop:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		}
	default:
		if err := srv.ServeStdio(); err != nil {
			logger.Fatal("stdio server failed", zap.Error(err))
		}
	}
}
