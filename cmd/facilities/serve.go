package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ougirez/facilities/internal/api"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			apiService, err := api.NewAPIService(ctx, st)
			if err != nil {
				return fmt.Errorf("api.NewAPIService: %w", err)
			}

			addr := viper.GetString(constants.ViperHTTPAddrKey)
			go apiService.Serve(addr)
			logger.Infof(ctx, "listening on %s", addr)

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return apiService.Shutdown(shutdownCtx)
		},
	}
}
