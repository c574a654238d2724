// README: Ride aggregate, actor roles and status definitions.
package ride

import (
	"time"

	"fleet/internal/types"
)

type Status string

const (
	StatusNone                Status = "none"
	StatusPendingAdmin        Status = "pending_admin"
	StatusPendingPM           Status = "pending_pm"
	StatusPendingAdminAfterPM Status = "pending_admin_after_pm"
	StatusApproved            Status = "approved"
	StatusInProgress          Status = "in_progress"
	StatusCompleted           Status = "completed"
	StatusRejected            Status = "rejected"
)

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

type Role string

const (
	RoleUser           Role = "user"
	RoleDriver         Role = "driver"
	RoleProjectManager Role = "project_manager"
	RoleAdmin          Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleDriver, RoleProjectManager, RoleAdmin:
		return true
	}
	return false
}

// Actor is the caller identity handed over by the identity collaborator. It is trusted verbatim.
type Actor struct {
	ID   types.ID
	Role Role
}

// LocationInput is a requested ride endpoint. Nil coordinates mean the caller omitted
// them, which is distinct from a point at 0,0.
type LocationInput struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
}

func NewLocationInput(l types.Location) *LocationInput {
	lat, lng := l.Lat, l.Lng
	return &LocationInput{Lat: &lat, Lng: &lng, Address: l.Address}
}

// ApprovalDecision is the record one approving role leaves on a ride.
type ApprovalDecision struct {
	Approved   bool
	ApprovedAt time.Time
	ApprovedBy types.ID
}

type Approval struct {
	ProjectManager *ApprovalDecision
	Admin          *ApprovalDecision
}

type Ride struct {
	ID              types.ID
	RequesterID     types.ID
	DriverID        *types.ID
	VehicleID       *types.ID
	Status          Status
	StatusVersion   int
	DistanceKm      float64
	StartLocation   types.Location
	EndLocation     types.Location
	Approval        Approval
	RejectionReason *string
	AssignedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Clone returns a deep copy so stores and callers never share pointer fields.
func (r *Ride) Clone() *Ride {
	if r == nil {
		return nil
	}
	c := *r
	c.DriverID = cloneID(r.DriverID)
	c.VehicleID = cloneID(r.VehicleID)
	if r.Approval.ProjectManager != nil {
		d := *r.Approval.ProjectManager
		c.Approval.ProjectManager = &d
	}
	if r.Approval.Admin != nil {
		d := *r.Approval.Admin
		c.Approval.Admin = &d
	}
	if r.RejectionReason != nil {
		s := *r.RejectionReason
		c.RejectionReason = &s
	}
	if r.AssignedAt != nil {
		t := *r.AssignedAt
		c.AssignedAt = &t
	}
	return &c
}

type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorRole  Role
	ActorID    types.ID
	CreatedAt  time.Time
}

// ListFilter selects rides for a list query. Zero-valued fields are ignored.
type ListFilter struct {
	RequesterID   types.ID
	DriverID      types.ID
	Status        Status
	MinDistanceKm *float64 // exclusive lower bound
}

func cloneID(v *types.ID) *types.ID {
	if v == nil {
		return nil
	}
	id := *v
	return &id
}
