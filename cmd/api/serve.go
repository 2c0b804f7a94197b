package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/swoyamsuwal/django-twitter/internal/app"
	"github.com/swoyamsuwal/django-twitter/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := initialize()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if !logging.IsDevelopment(cfg.App.Env) {
			gin.SetMode(gin.ReleaseMode)
		}

		log.Info("config loaded, connecting to DB and Redis")
		application, err := app.New(cfg, log)
		if err != nil {
			return err
		}
		server := &http.Server{
			Addr:         "0.0.0.0:" + cfg.HTTP.Port,
			Handler:      application.Router(),
			ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
			WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
			IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		serveErr := serveUntilSignal(server, quit, log)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(serveErr, application.Close(ctx))
	},
}

// serveUntilSignal runs server until quit fires or the listener fails, then
// shuts it down. A listener failure is part of the returned error.
func serveUntilSignal(server *http.Server, quit <-chan os.Signal, log *zap.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var listenErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case listenErr = <-serveErr:
		if listenErr != nil {
			log.Error("HTTP server error", zap.Error(listenErr))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(listenErr, server.Shutdown(ctx))
}

func init() {
	rootCMD.AddCommand(serveCMD)
}
