// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"fleet/internal/http/handlers"
	"fleet/internal/http/middleware"
	"fleet/internal/infra"
	"fleet/internal/modules/notification"
	"fleet/internal/modules/ride"
)

type RouterDeps struct {
	Rides         *ride.Service
	Notifications *notification.Service
	Distance      handlers.DistanceEstimator
	Verifier      infra.TokenVerifier
	Log           logrus.FieldLogger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	var notifier handlers.RideNotifier
	if deps.Notifications != nil {
		notifier = deps.Notifications
	}
	rideHandler := handlers.NewRideHandler(deps.Rides, notifier, log)
	rides := api.Group("/rides")
	rides.POST("", rideHandler.Create)
	rides.GET("", rideHandler.List)
	rides.GET("/pm-dashboard", rideHandler.PMDashboard)
	rides.GET("/:id", rideHandler.Get)
	rides.GET("/:id/events", rideHandler.Events)
	rides.POST("/:id/approve", rideHandler.Approve)
	rides.POST("/:id/reject", rideHandler.Reject)
	rides.POST("/:id/assign", rideHandler.Assign)
	rides.PATCH("/:id/status", rideHandler.UpdateStatus)

	if deps.Notifications != nil {
		notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
		api.GET("/notifications", notificationHandler.Inbox)
		api.POST("/notifications/device", notificationHandler.RegisterDevice)
	}

	if deps.Distance != nil {
		mapsHandler := handlers.NewMapsHandler(deps.Distance)
		api.POST("/maps/distance", mapsHandler.Distance)
	}

	return r
}
