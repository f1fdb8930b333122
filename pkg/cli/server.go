package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	urfave "github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 30
	serverMaxHeaderBytes      = 20
	serverMaxBodyBytes        = 8 << 20
)

const (
	flagHost = "host"
	flagPort = "port"
)

func newServerCmd() *urfave.Command {
	return &urfave.Command{
		Name:            "server",
		Aliases:         []string{"serve"},
		Usage:           "Start the HTTP reward server for a training harness",
		HideHelpCommand: true,
		Action:          cmdStartServer,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  flagHost,
				Usage: "Address on which the server will listen (overrides config)",
			},
			&urfave.IntFlag{
				Name:  flagPort,
				Usage: "Port on which the server will listen (overrides config)",
			},
		},
	}
}

func cmdStartServer(ctx context.Context, cmd *urfave.Command) error {
	cfg := getConfig(cmd)

	host, port := cfg.Config.Server.Host, cfg.Config.Server.Port
	if h := cmd.String(flagHost); h != "" {
		host = h
	}
	if p := cmd.Int(flagPort); p > 0 {
		port = p
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	s := &http.Server{
		Addr:           address,
		Handler:        makeRouter(cfg),
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("server started", "address", fmt.Sprintf("http://%s", address),
		"thresholds", cfg.Evaluator.Thresholds().String())

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(cfg *appConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", healthAPIHandler())

	// Scoring API
	mux.HandleFunc("POST /v1/reward", rewardAPIHandler(cfg.Evaluator, false))
	mux.HandleFunc("POST /v1/reward/explain", rewardAPIHandler(cfg.Evaluator, true))
	mux.HandleFunc("GET /v1/thresholds", thresholdsAPIHandler(cfg.Evaluator))

	// Run store API
	mux.HandleFunc("GET /v1/runs", runsAPIHandler(cfg))
	mux.HandleFunc("GET /v1/runs/{id}", runAPIHandler(cfg))

	return mux
}
