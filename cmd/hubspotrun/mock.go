package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/loykin/hubspotrun/internal/common"
	"github.com/loykin/hubspotrun/internal/metrics"
	"github.com/loykin/hubspotrun/internal/mockapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultMockKey is accepted by the mock server when no --api-key is given.
const defaultMockKey = "pat-mock-local"

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve a local fake of the HubSpot CRM objects API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadConfig()
		if err != nil {
			return err
		}
		if err := doc.SetupLogging(); err != nil {
			return err
		}

		ln, err := net.Listen("tcp", viper.GetString("addr"))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serveMock(ctx, ln, cmd)
	},
}

func mockHandler(apiKey string, withMetrics bool) http.Handler {
	api := mockapi.New(mockapi.Options{APIKey: apiKey})
	if !withMetrics {
		return api.Handler()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", api.Handler())
	return mux
}

// serveMock runs until ctx is done, then shuts the server down.
func serveMock(ctx context.Context, ln net.Listener, cmd *cobra.Command) error {
	logger := common.GetLogger().WithComponent("mock")
	apiKey := strings.TrimSpace(viper.GetString("api_key"))
	if apiKey == "" {
		apiKey = defaultMockKey
	}
	srv := &http.Server{
		Handler:           mockHandler(apiKey, viper.GetBool("metrics")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mock HubSpot API listening on http://%s (api key %s)\n", ln.Addr(), apiKey)
	logger.Info("mock server started", "addr", ln.Addr().String(), "metrics", viper.GetBool("metrics"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down mock server")
	return srv.Shutdown(shutdownCtx)
}
