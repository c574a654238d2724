// README: Ride handlers for creation, approval, assignment, status updates and queries.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet/internal/http/middleware"
	"fleet/internal/modules/notification"
	"fleet/internal/modules/ride"
	"fleet/internal/types"
)

// RideNotifier receives ride updates after successful transitions.
type RideNotifier interface {
	NotifyRideUpdate(ctx context.Context, u notification.RideUpdate) error
}

type RideHandler struct {
	rides  *ride.Service
	notify RideNotifier
	log    logrus.FieldLogger
}

// NewRideHandler wires the handler. notify may be nil.
func NewRideHandler(svc *ride.Service, notify RideNotifier, log logrus.FieldLogger) *RideHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RideHandler{rides: svc, notify: notify, log: log}
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		Actor:      actorFrom(c),
		Start:      req.StartLocation,
		End:        req.EndLocation,
		DistanceKm: req.DistanceKm,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	middleware.TrackTransition("create", string(ride.StatusNone), string(r.Status))
	writeJSON(c, http.StatusCreated, toRideResponse(r))
}

func (h *RideHandler) List(c *gin.Context) {
	rides, err := h.rides.ListForActor(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRideList(rides))
}

func (h *RideHandler) PMDashboard(c *gin.Context) {
	rides, err := h.rides.ListLongDistance(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"thresholdKm": h.rides.ThresholdKm(),
		"rides":       toRideList(rides),
	})
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")), actorFrom(c))
	if err != nil {
		writeRideError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) Events(c *gin.Context) {
	events, err := h.rides.Events(c.Request.Context(), types.ID(c.Param("id")), actorFrom(c))
	if err != nil {
		writeRideError(c, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ActorRole:  e.ActorRole,
			ActorID:    e.ActorID,
			CreatedAt:  e.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, out)
}

func (h *RideHandler) Approve(c *gin.Context) {
	actor := actorFrom(c)
	r, err := h.rides.Approve(c.Request.Context(), ride.ApproveCommand{RideID: types.ID(c.Param("id")), Actor: actor})
	h.finish(c, ride.ActionApprove, actor, r, "", err)
}

func (h *RideHandler) Reject(c *gin.Context) {
	var req rejectRideReq
	// the body is optional; an empty one, chunked or not, means no reason
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	actor := actorFrom(c)
	r, err := h.rides.Reject(c.Request.Context(), ride.RejectCommand{RideID: types.ID(c.Param("id")), Actor: actor, Reason: req.Reason})
	h.finish(c, ride.ActionReject, actor, r, req.Reason, err)
}

func (h *RideHandler) Assign(c *gin.Context) {
	var req assignRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	actor := actorFrom(c)
	r, err := h.rides.Assign(c.Request.Context(), ride.AssignCommand{
		RideID:    types.ID(c.Param("id")),
		Actor:     actor,
		DriverID:  types.ID(req.DriverID),
		VehicleID: types.ID(req.VehicleID),
	})
	h.finish(c, ride.ActionAssign, actor, r, "", err)
}

func (h *RideHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.rides.UpdateStatus(c.Request.Context(), ride.UpdateStatusCommand{
		RideID: types.ID(c.Param("id")),
		Actor:  actorFrom(c),
		Status: ride.Status(req.Status),
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	// re-sending in_progress is a no-op and is not reported as a transition
	if r.Status == ride.StatusCompleted {
		middleware.TrackTransition(string(ride.ActionComplete), string(ride.StatusInProgress), string(r.Status))
		h.publish(c, r, "")
	}
	writeJSON(c, http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) finish(c *gin.Context, action ride.Action, actor ride.Actor, r *ride.Ride, reason string, err error) {
	if err != nil {
		writeRideError(c, err)
		return
	}
	from := ride.SourceStatus(action, actor.Role, r)
	middleware.TrackTransition(string(action), string(from), string(r.Status))
	h.publish(c, r, reason)
	writeJSON(c, http.StatusOK, toRideResponse(r))
}

func (h *RideHandler) publish(c *gin.Context, r *ride.Ride, reason string) {
	if h.notify == nil {
		return
	}
	err := h.notify.NotifyRideUpdate(c.Request.Context(), notification.RideUpdate{
		RideID:      r.ID,
		RequesterID: r.RequesterID,
		Status:      string(r.Status),
		Reason:      reason,
	})
	if err != nil {
		h.log.WithError(err).WithField("ride_id", r.ID).Warn("notify requester")
	}
}
