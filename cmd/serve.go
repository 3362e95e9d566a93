package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/rtcmint/internal/api"
	"github.com/darmiel/rtcmint/internal/service"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rtcmint server",
	Long: `Starts the HTTP server for token issuance (POST /tokens/{provider}) and
asset delivery (GET /assets/{wasm,video}/{filename}).

Provider secrets are read once at startup from the environment (e.g. AGORA_APP_ID)
or from the "secrets" section of the user config. Providers with missing secrets
are still routed but answer with a configuration error.`,
	Example: `  AGORA_APP_ID=... AGORA_APP_CERTIFICATE=... rtcmint serve --config rtcmint.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		bundle := f.LoadSecrets()
		log.Info().Strs("secrets", bundle.Present()).Msg("Resolved provider secrets")

		log.Info().Msg("Initializing asset stores...")
		assetServer, err := cfg.Assets.BuildServer(cmd.Context())
		if err != nil {
			return fmt.Errorf("building asset stores: %w", err)
		}

		srv := api.NewServer(service.NewTokenService(bundle), assetServer)
		server := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Duration,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Strs("asset_classes", assetServer.Classes()).Msgf("Starting server on %s...", cfg.Server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server crashed: %w", err)
		case <-quit:
		}
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides server.addr)")
}
