// README: Ride service implements the approval workflow, assignment and role-scoped queries.
package ride

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleet/internal/geo"
	"fleet/internal/types"
)

const DefaultThresholdKm = 25.0

type Config struct {
	// ThresholdKm is the distance above which a ride needs project-manager approval first.
	ThresholdKm float64
}

type Service struct {
	store       Store
	thresholdKm float64
	log         logrus.FieldLogger
	now         func() time.Time
}

func NewService(store Store, cfg Config, log logrus.FieldLogger) *Service {
	if cfg.ThresholdKm <= 0 {
		cfg.ThresholdKm = DefaultThresholdKm
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:       store,
		thresholdKm: cfg.ThresholdKm,
		log:         log.WithField("module", "ride"),
		now:         time.Now,
	}
}

func (s *Service) ThresholdKm() float64 {
	return s.thresholdKm
}

type CreateCommand struct {
	Actor      Actor
	Start      *LocationInput
	End        *LocationInput
	DistanceKm *float64 // optional, client-supplied
}

type ApproveCommand struct {
	RideID types.ID
	Actor  Actor
}

type RejectCommand struct {
	RideID types.ID
	Actor  Actor
	Reason string
}

type AssignCommand struct {
	RideID    types.ID
	Actor     Actor
	DriverID  types.ID
	VehicleID types.ID // optional
}

type UpdateStatusCommand struct {
	RideID types.ID
	Actor  Actor
	Status Status
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.Actor.Role != RoleUser {
		return nil, unauthorizedErr("only users may request rides, got role %q", cmd.Actor.Role)
	}
	if cmd.Actor.ID == "" {
		return nil, validationErr("requester id is required")
	}
	if cmd.Start == nil || cmd.End == nil {
		return nil, validationErr("start and end locations are required")
	}
	if cmd.Start.Lat == nil || cmd.Start.Lng == nil || cmd.End.Lat == nil || cmd.End.Lng == nil {
		return nil, validationErr("coordinates are required for both locations")
	}
	start := types.Location{Lat: *cmd.Start.Lat, Lng: *cmd.Start.Lng, Address: strings.TrimSpace(cmd.Start.Address)}
	end := types.Location{Lat: *cmd.End.Lat, Lng: *cmd.End.Lng, Address: strings.TrimSpace(cmd.End.Address)}
	if !start.Point().Valid() || !end.Point().Valid() {
		return nil, validationErr("coordinates are out of range")
	}
	if start.Address == "" || end.Address == "" {
		return nil, validationErr("addresses are required for both locations")
	}

	distance := geo.Between(start.Point(), end.Point())
	if d := cmd.DistanceKm; d != nil && *d > 0 && !math.IsInf(*d, 0) && !math.IsNaN(*d) {
		distance = *d
	}

	now := s.now()
	r := &Ride{
		ID:            types.ID(uuid.NewString()),
		RequesterID:   cmd.Actor.ID,
		Status:        InitialStatus(distance, s.thresholdKm),
		StatusVersion: 0,
		DistanceKm:    distance,
		StartLocation: start,
		EndLocation:   end,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, storageErr("create ride", err)
	}
	s.recordEvent(ctx, r.ID, StatusNone, r.Status, cmd.Actor, now)
	return r, nil
}

func (s *Service) Approve(ctx context.Context, cmd ApproveCommand) (*Ride, error) {
	r, err := s.load(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	to, ok := Next(ActionApprove, cmd.Actor.Role, r.Status)
	if !ok {
		return nil, s.refuse(r, ActionApprove, cmd.Actor)
	}
	return s.apply(ctx, ActionApprove, cmd.Actor, r, to, func(next *Ride, now time.Time) {
		recordDecision(next, cmd.Actor.Role, ApprovalDecision{Approved: true, ApprovedAt: now, ApprovedBy: cmd.Actor.ID})
	})
}

func (s *Service) Reject(ctx context.Context, cmd RejectCommand) (*Ride, error) {
	r, err := s.load(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	to, ok := Next(ActionReject, cmd.Actor.Role, r.Status)
	if !ok {
		return nil, s.refuse(r, ActionReject, cmd.Actor)
	}
	reason := strings.TrimSpace(cmd.Reason)
	return s.apply(ctx, ActionReject, cmd.Actor, r, to, func(next *Ride, now time.Time) {
		recordDecision(next, cmd.Actor.Role, ApprovalDecision{Approved: false, ApprovedAt: now, ApprovedBy: cmd.Actor.ID})
		if reason != "" {
			next.RejectionReason = &reason
		}
	})
}

func (s *Service) Assign(ctx context.Context, cmd AssignCommand) (*Ride, error) {
	if cmd.Actor.Role != RoleAdmin {
		return nil, unauthorizedErr("admin access required to assign drivers")
	}
	if strings.TrimSpace(string(cmd.DriverID)) == "" {
		return nil, validationErr("driver id is required")
	}
	r, err := s.load(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	to, ok := Next(ActionAssign, cmd.Actor.Role, r.Status)
	if !ok {
		return nil, s.refuse(r, ActionAssign, cmd.Actor)
	}
	return s.apply(ctx, ActionAssign, cmd.Actor, r, to, func(next *Ride, now time.Time) {
		driverID := cmd.DriverID
		next.DriverID = &driverID
		if cmd.VehicleID != "" {
			vehicleID := cmd.VehicleID
			next.VehicleID = &vehicleID
		}
		next.AssignedAt = &now
	})
}

// UpdateStatus lets the assigned driver report progress. Role and ownership are checked
// before the requested status, so a foreign driver always gets ErrUnauthorized.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*Ride, error) {
	if cmd.Actor.Role != RoleDriver {
		return nil, unauthorizedErr("only the assigned driver may update ride status")
	}
	r, err := s.load(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID == nil || *r.DriverID != cmd.Actor.ID {
		return nil, unauthorizedErr("ride %s is not assigned to driver %s", r.ID, cmd.Actor.ID)
	}

	var action Action
	switch cmd.Status {
	case StatusInProgress:
		action = ActionStart
	case StatusCompleted:
		action = ActionComplete
	default:
		return nil, validationErr("invalid status %q", cmd.Status)
	}
	to, ok := Next(action, cmd.Actor.Role, r.Status)
	if !ok {
		return nil, s.refuse(r, action, cmd.Actor)
	}
	if to == r.Status {
		return r, nil
	}
	return s.apply(ctx, action, cmd.Actor, r, to, func(*Ride, time.Time) {})
}

// Get returns a ride visible to the actor: admins and project managers see every ride,
// requesters their own and drivers the ones assigned to them.
func (s *Service) Get(ctx context.Context, id types.ID, actor Actor) (*Ride, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case RoleAdmin, RoleProjectManager:
		return r, nil
	case RoleUser:
		if r.RequesterID == actor.ID {
			return r, nil
		}
	case RoleDriver:
		if r.DriverID != nil && *r.DriverID == actor.ID {
			return r, nil
		}
	}
	return nil, unauthorizedErr("ride %s is not visible to %s %s", id, actor.Role, actor.ID)
}

// ListForActor returns the rides an actor works with, newest first. The project manager
// view is the actionable queue only; see ListLongDistance for the monitoring view.
func (s *Service) ListForActor(ctx context.Context, actor Actor) ([]*Ride, error) {
	var f ListFilter
	switch actor.Role {
	case RoleUser:
		f.RequesterID = actor.ID
	case RoleDriver:
		f.DriverID = actor.ID
	case RoleProjectManager:
		f.Status = StatusPendingPM
	case RoleAdmin:
	default:
		return []*Ride{}, nil
	}
	if (actor.Role == RoleUser || actor.Role == RoleDriver) && actor.ID == "" {
		return []*Ride{}, nil
	}
	rides, err := s.store.List(ctx, f)
	if err != nil {
		return nil, storageErr("list rides", err)
	}
	return rides, nil
}

// ListLongDistance is the read-only project manager dashboard: every ride above the
// threshold in any status.
func (s *Service) ListLongDistance(ctx context.Context, actor Actor) ([]*Ride, error) {
	if actor.Role != RoleProjectManager {
		return nil, unauthorizedErr("project manager access required")
	}
	threshold := s.thresholdKm
	rides, err := s.store.List(ctx, ListFilter{MinDistanceKm: &threshold})
	if err != nil {
		return nil, storageErr("list long-distance rides", err)
	}
	return rides, nil
}

func (s *Service) Events(ctx context.Context, id types.ID, actor Actor) ([]Event, error) {
	if actor.Role != RoleAdmin {
		return nil, unauthorizedErr("admin access required")
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, id)
	if err != nil {
		return nil, storageErr("list ride events", err)
	}
	return events, nil
}

func (s *Service) load(ctx context.Context, id types.ID) (*Ride, error) {
	if id == "" {
		return nil, validationErr("ride id is required")
	}
	r, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get ride", err)
	}
	return r, nil
}

// apply persists a transition with a conditional write keyed on the status and version
// that were read. Losing that race is reported as a TransitionError against the status
// the ride holds now.
func (s *Service) apply(ctx context.Context, action Action, actor Actor, r *Ride, to Status, mutate func(*Ride, time.Time)) (*Ride, error) {
	from, version := r.Status, r.StatusVersion
	now := s.now()

	next := r.Clone()
	next.Status = to
	next.UpdatedAt = now
	mutate(next, now)

	ok, err := s.store.Update(ctx, next, from, version)
	if err != nil {
		return nil, storageErr("update ride", err)
	}
	if !ok {
		cur, err := s.load(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		return nil, s.refuse(cur, action, actor)
	}
	next.StatusVersion = version + 1

	s.recordEvent(ctx, next.ID, from, to, actor, now)
	s.log.WithFields(logrus.Fields{
		"ride_id":    next.ID,
		"action":     action,
		"from":       from,
		"to":         to,
		"actor_id":   actor.ID,
		"actor_role": actor.Role,
	}).Info("ride transition")
	return next, nil
}

func (s *Service) refuse(r *Ride, action Action, actor Actor) error {
	err := &TransitionError{Action: action, Role: actor.Role, Status: r.Status}
	s.log.WithFields(logrus.Fields{
		"ride_id":    r.ID,
		"actor_id":   actor.ID,
		"actor_role": actor.Role,
	}).Warn(err.Error())
	return err
}

func (s *Service) recordEvent(ctx context.Context, id types.ID, from, to Status, actor Actor, at time.Time) {
	err := s.store.AppendEvent(ctx, &Event{
		RideID:     id,
		FromStatus: from,
		ToStatus:   to,
		ActorRole:  actor.Role,
		ActorID:    actor.ID,
		CreatedAt:  at,
	})
	if err != nil {
		s.log.WithError(err).WithField("ride_id", id).Error("append ride event")
	}
}
