// README: JSON shapes for ride requests and responses.
package handlers

import (
	"time"

	"fleet/internal/modules/ride"
	"fleet/internal/types"
)

type createRideReq struct {
	StartLocation *ride.LocationInput `json:"startLocation"`
	EndLocation   *ride.LocationInput `json:"endLocation"`
	DistanceKm    *float64           `json:"distanceKm"`
}

type rejectRideReq struct {
	Reason string `json:"reason"`
}

type assignRideReq struct {
	DriverID  string `json:"driverId"`
	VehicleID string `json:"vehicleId"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type decisionResponse struct {
	Approved   bool      `json:"approved"`
	ApprovedAt time.Time `json:"approvedAt"`
	ApprovedBy types.ID  `json:"approvedBy"`
}

type approvalResponse struct {
	ProjectManager *decisionResponse `json:"projectManager,omitempty"`
	Admin          *decisionResponse `json:"admin,omitempty"`
}

type rideResponse struct {
	ID              types.ID         `json:"id"`
	RequesterID     types.ID         `json:"requesterId"`
	DriverID        *types.ID        `json:"driverId,omitempty"`
	VehicleID       *types.ID        `json:"vehicleId,omitempty"`
	Status          ride.Status      `json:"status"`
	DistanceKm      float64          `json:"distanceKm"`
	StartLocation   types.Location   `json:"startLocation"`
	EndLocation     types.Location   `json:"endLocation"`
	Approval        approvalResponse `json:"approval"`
	RejectionReason *string          `json:"rejectionReason,omitempty"`
	AssignedAt      *time.Time       `json:"assignedAt,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type eventResponse struct {
	FromStatus ride.Status `json:"fromStatus"`
	ToStatus   ride.Status `json:"toStatus"`
	ActorRole  ride.Role   `json:"actorRole"`
	ActorID    types.ID    `json:"actorId"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func toDecision(d *ride.ApprovalDecision) *decisionResponse {
	if d == nil {
		return nil
	}
	return &decisionResponse{Approved: d.Approved, ApprovedAt: d.ApprovedAt, ApprovedBy: d.ApprovedBy}
}

func toRideResponse(r *ride.Ride) rideResponse {
	return rideResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		DriverID:      r.DriverID,
		VehicleID:     r.VehicleID,
		Status:        r.Status,
		DistanceKm:    r.DistanceKm,
		StartLocation: r.StartLocation,
		EndLocation:   r.EndLocation,
		Approval: approvalResponse{
			ProjectManager: toDecision(r.Approval.ProjectManager),
			Admin:          toDecision(r.Approval.Admin),
		},
		RejectionReason: r.RejectionReason,
		AssignedAt:      r.AssignedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toRideList(rides []*ride.Ride) []rideResponse {
	out := make([]rideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, toRideResponse(r))
	}
	return out
}
