package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/supervise-dev/bridge/internal/communication"
	"github.com/supervise-dev/bridge/internal/config"
	"github.com/supervise-dev/bridge/internal/dispatcher"
	"github.com/supervise-dev/bridge/internal/fs_service"
	"github.com/supervise-dev/bridge/internal/log_service"
	"github.com/supervise-dev/bridge/internal/process_service"
)

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newCommunicator(cfg *config.Config, ls log_service.LogService) communication.Communicator {
	if cfg.Communicator.Type == config.TransportGRPC {
		return communication.NewGRPCCommunicator(cfg.Server.Address, ls)
	}
	return communication.NewHTTPCommunicator(cfg.Server.Address, ls)
}

func main() {
	configPath := flag.String("config", "bridge.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ls := log_service.NewConsoleLogService(os.Stderr, "bridge-server", logLevel(cfg.Log.Level))

	fs := fs_service.NewLocalFSService(ls)
	ps := process_service.NewDefaultProcessService(ls)
	d := dispatcher.NewDispatcher(fs, ps, ls)
	comm := newCommunicator(cfg, ls)

	if err := comm.Start(d.HandleMessage); err != nil {
		ls.Error(log_service.LogEvent{
			Message:  "Failed to start server",
			Metadata: map[string]any{"address": cfg.Server.Address, "error": err.Error()},
		})
		os.Exit(1)
	}

	ls.Info(log_service.LogEvent{
		Message: "Server started",
		Metadata: map[string]any{
			"address":   cfg.Server.Address,
			"transport": cfg.Communicator.Type,
		},
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ls.Info(log_service.LogEvent{Message: "Shutting down server"})
	if err := comm.Stop(); err != nil {
		ls.Error(log_service.LogEvent{
			Message:  "Error stopping server",
			Metadata: map[string]any{"error": err.Error()},
		})
		os.Exit(1)
	}
}
