package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk/internal/auth"
	"github.com/boardwalk-games/boardwalk/internal/cache"
	"github.com/boardwalk-games/boardwalk/internal/config"
	"github.com/boardwalk-games/boardwalk/internal/database"
	"github.com/boardwalk-games/boardwalk/internal/ws"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Fatal("failed connecting to postgres")
		}
		defer database.DB.Close()
	} else {
		logrus.Warn("DATABASE_URL not set, profiles and stats disabled")
	}

	if cfg.RedisAddr != "" {
		if err := cache.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
			logrus.WithError(err).Fatal("failed connecting to redis")
		}
		defer cache.Rdb.Close()
	} else {
		logrus.Warn("REDIS_ADDR not set, action history disabled")
	}

	hub := ws.NewHub(cfg.TurnDuration, cfg.ExtensionDuration)
	handler := &ws.Handler{
		Hub:  hub,
		Auth: auth.NewService(cfg.JWTSecret),
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.Routes(),
	}

	go func() {
		logrus.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown error")
	}
}
