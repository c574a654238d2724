// README: Entry point; loads config, wires services and serves the HTTP API until signalled.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet/internal/config"
	httptransport "fleet/internal/http"
	"fleet/internal/infra"
	"fleet/internal/logger"
	"fleet/internal/maps"
	"fleet/internal/modules/notification"
	"fleet/internal/modules/ride"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firebaseApp, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.WithError(err).Fatal("firebase init")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, firebaseApp)
	if err != nil {
		log.WithError(err).Fatal("firebase auth init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("postgres init")
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Fatal("redis init")
	}
	defer func() { _ = redisClient.Close() }()

	// Push is optional; the inbox still works without FCM.
	var pusher notification.Pusher
	if fcm, err := infra.NewMessaging(ctx, firebaseApp); err != nil {
		log.WithError(err).Warn("fcm unavailable, push notifications disabled")
	} else {
		pusher = notification.NewFCMPusher(fcm)
	}

	rideSvc := ride.NewService(ride.NewPGStore(dbPool), ride.Config{ThresholdKm: cfg.Ride.ThresholdKm}, log)
	notifySvc := notification.NewService(notification.NewStore(redisClient, cfg.Notify.InboxSize), pusher, log)

	distanceSvc, err := maps.NewDistanceService(cfg.Maps.APIKey, log)
	if err != nil {
		log.WithError(err).Fatal("maps init")
	}
	if cfg.Maps.APIKey == "" {
		log.Warn("GOOGLE_MAPS_API_KEY not set, distance estimates use haversine")
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:         rideSvc,
		Notifications: notifySvc,
		Distance:      distanceSvc,
		Verifier:      verifier,
		Log:           log,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second, log)
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Error("http server stopped")
		return
	}
	log.Info("shutdown complete")
}
