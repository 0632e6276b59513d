package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/config"
	"github.com/hideandseek/session-server/internal/gamemap"
	"github.com/hideandseek/session-server/internal/gateway"
	"github.com/hideandseek/session-server/internal/httpapi"
	"github.com/hideandseek/session-server/internal/registry"
	"github.com/hideandseek/session-server/internal/timer"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.FromEnv()

	catalog := gamemap.NewCatalog()
	gw := gateway.New(log)
	timers := timer.NewService()
	reg := registry.New(cfg, catalog, gw, timers, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(reg, log),
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	reg.Cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
