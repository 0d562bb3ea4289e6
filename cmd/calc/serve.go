package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/calculator/pkg/api"
	grpcapi "github.com/lemonberrylabs/calculator/pkg/api/grpc"
	"github.com/lemonberrylabs/calculator/pkg/config"
	"github.com/lemonberrylabs/calculator/pkg/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP and gRPC",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("config", "", "YAML config file (env CALC_CONFIG)")
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	return cmd
}

// loadConfig resolves defaults, the config file, the environment and then
// explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := os.Getenv("CALC_CONFIG")
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Server.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.Server.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Server.Host = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, logger)
}

// serve runs the HTTP and gRPC servers over one session store until ctx is
// done or either server fails. Both listeners are bound before ctx is
// watched, and serve returns only after both servers have stopped.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	httpLn, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	grpcLn, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		httpLn.Close()
		return fmt.Errorf("grpc listen: %w", err)
	}

	s := store.New(cfg.Sessions.HistoryLimit)
	server := api.New(s, logger)
	grpcServer := grpcapi.New(s, logger)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "addr", grpcLn.Addr().String())
		errCh <- grpcServer.Serve(grpcLn)
	}()
	go func() {
		logger.Info("calculator listening", "addr", httpLn.Addr().String(), "history_limit", cfg.Sessions.HistoryLimit)
		errCh <- server.Serve(httpLn)
	}()

	running := 2
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down calculator")
	case serveErr = <-errCh:
		running--
		logger.Error("server stopped", "err", serveErr)
	}

	grpcServer.GracefulStop()
	if err := server.Shutdown(); err != nil {
		logger.Error("error during shutdown", "err", err)
	}
	// Unblocks an HTTP server that had not started accepting yet.
	httpLn.Close()
	for ; running > 0; running-- {
		<-errCh
	}
	return serveErr
}
