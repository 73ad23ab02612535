package main

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
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long:  `Starts the stateless dialog webhook. Every turn's state travels with the platform payload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}

		srv := &http.Server{
			Addr:         a.serverCfg.Addr,
			Handler:      a.handler,
			ReadTimeout:  a.serverCfg.ReadTimeout,
			WriteTimeout: a.serverCfg.WriteTimeout,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("starting voice diary webhook")
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		var runErr error
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				runErr = fmt.Errorf("server: %w", err)
			}
		case sig := <-shutdown:
			log.Info().Stringer("signal", sig).Msg("start shutdown")
		}

		// Give outstanding requests and detached summary jobs a deadline.
		ctx, cancel := context.WithTimeout(context.Background(), a.serverCfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Dur("timeout", a.serverCfg.ShutdownTimeout).Msg("graceful shutdown did not complete")
			if err := srv.Close(); err != nil {
				log.Error().Err(err).Msg("close server")
			}
		}
		if err := a.close(ctx); err != nil {
			log.Error().Err(err).Msg("release resources")
		}
		log.Info().Msg("voice diary webhook stopped")
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
