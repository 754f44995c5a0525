package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	appkg "mockinterview/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address, overrides http.addr")
	viper.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	logger, cfg, secrets := setup()
	defer logger.Sync()

	logger.Info("starting the mockinterview server",
		zap.String("version", version),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("audio", cfg.Audio.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := appkg.New(ctx, cfg, secrets, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	if err := a.Janitor.Start(); err != nil {
		logger.Fatal("failed to start janitor", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: a.Router(),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	a.Janitor.Stop()
	if err := a.Close(shutdownCtx); err != nil {
		logger.Error("failed to close connections", zap.Error(err))
	}

	logger.Info("server exited")
}
