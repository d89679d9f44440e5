package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/app/background"
	"github.com/LavaJover/shvark-ticket-service/internal/app/setup"
	"github.com/LavaJover/shvark-ticket-service/internal/config"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logger.Setup(cfg.LogConfig)
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, err := setup.InitializeDependencies(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize dependencies")
	}
	defer deps.Close()

	ucs := setup.InitializeUseCases(deps)
	router := setup.InitializeRouter(deps, ucs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tasks := background.NewBackgroundTasks(deps.Repositories.OrderRepo, deps.Metrics, cfg.Background.AuditInterval, cfg.Background.AuditGrace)
	tasks.StartAll(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:           router,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.HTTPServer.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPServer.WriteTimeout,
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("ticket service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	// let in-flight event publishes finish before the kafka writer closes
	ucs.Emitter.Wait()
}
