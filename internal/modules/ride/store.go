// README: Ride persistence contract and its PostgreSQL implementation.
package ride

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleet/internal/types"
)

// Store is the persistence collaborator of the engine. Update is a conditional write:
// it reports false, without error, when the stored status or version no longer match.
type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	Update(ctx context.Context, r *Ride, from Status, version int) (bool, error)
	List(ctx context.Context, f ListFilter) ([]*Ride, error)
	AppendEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, rideID types.ID) ([]Event, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const rideColumns = `
    id, requester_id, driver_id, vehicle_id, status, status_version, distance_km,
    start_lat, start_lng, start_address, end_lat, end_lng, end_address,
    pm_approved, pm_approved_at, pm_approved_by,
    admin_approved, admin_approved_at, admin_approved_by,
    rejection_reason, assigned_at, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, r *Ride) error {
	pm := decisionColumns(r.Approval.ProjectManager)
	admin := decisionColumns(r.Approval.Admin)
	_, err := s.db.Exec(ctx, `
        INSERT INTO rides (`+rideColumns+`
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10, $11, $12, $13,
            $14, $15, $16,
            $17, $18, $19,
            $20, $21, $22, $23
        )`,
		string(r.ID),
		string(r.RequesterID),
		toStringPtr(r.DriverID),
		toStringPtr(r.VehicleID),
		string(r.Status),
		r.StatusVersion,
		r.DistanceKm,
		r.StartLocation.Lat, r.StartLocation.Lng, r.StartLocation.Address,
		r.EndLocation.Lat, r.EndLocation.Lng, r.EndLocation.Address,
		pm.approved, pm.at, pm.by,
		admin.approved, admin.at, admin.by,
		r.RejectionReason,
		r.AssignedAt,
		r.CreatedAt,
		r.UpdatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PGStore) Update(ctx context.Context, r *Ride, from Status, version int) (bool, error) {
	pm := decisionColumns(r.Approval.ProjectManager)
	admin := decisionColumns(r.Approval.Admin)
	tag, err := s.db.Exec(ctx, `
        UPDATE rides
        SET status = $1,
            status_version = status_version + 1,
            driver_id = $2,
            vehicle_id = $3,
            pm_approved = $4, pm_approved_at = $5, pm_approved_by = $6,
            admin_approved = $7, admin_approved_at = $8, admin_approved_by = $9,
            rejection_reason = $10,
            assigned_at = $11,
            updated_at = $12
        WHERE id = $13 AND status = $14 AND status_version = $15`,
		string(r.Status),
		toStringPtr(r.DriverID),
		toStringPtr(r.VehicleID),
		pm.approved, pm.at, pm.by,
		admin.approved, admin.at, admin.by,
		r.RejectionReason,
		r.AssignedAt,
		r.UpdatedAt,
		string(r.ID),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) List(ctx context.Context, f ListFilter) ([]*Ride, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.RequesterID != "" {
		add("requester_id = $%d", string(f.RequesterID))
	}
	if f.DriverID != "" {
		add("driver_id = $%d", string(f.DriverID))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.MinDistanceKm != nil {
		add("distance_km > $%d", *f.MinDistanceKm)
	}

	query := `SELECT ` + rideColumns + ` FROM rides`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Ride{}
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO ride_state_events (
            ride_id, from_status, to_status, actor_role, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID),
		string(e.FromStatus),
		string(e.ToStatus),
		string(e.ActorRole),
		string(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func (s *PGStore) ListEvents(ctx context.Context, rideID types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, ride_id, from_status, to_status, actor_role, actor_id, created_at
        FROM ride_state_events
        WHERE ride_id = $1
        ORDER BY id ASC`, string(rideID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RideID, &e.FromStatus, &e.ToStatus, &e.ActorRole, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var driverID, vehicleID, pmBy, adminBy, reason *string
	var pmApproved, adminApproved *bool
	var pmAt, adminAt, assignedAt *time.Time

	err := row.Scan(
		&r.ID, &r.RequesterID, &driverID, &vehicleID, &r.Status, &r.StatusVersion, &r.DistanceKm,
		&r.StartLocation.Lat, &r.StartLocation.Lng, &r.StartLocation.Address,
		&r.EndLocation.Lat, &r.EndLocation.Lng, &r.EndLocation.Address,
		&pmApproved, &pmAt, &pmBy,
		&adminApproved, &adminAt, &adminBy,
		&reason, &assignedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.DriverID = toIDPtr(driverID)
	r.VehicleID = toIDPtr(vehicleID)
	r.Approval.ProjectManager = toDecision(pmApproved, pmAt, pmBy)
	r.Approval.Admin = toDecision(adminApproved, adminAt, adminBy)
	r.RejectionReason = reason
	r.AssignedAt = assignedAt
	return &r, nil
}

type decisionRow struct {
	approved *bool
	at       *time.Time
	by       *string
}

func decisionColumns(d *ApprovalDecision) decisionRow {
	if d == nil {
		return decisionRow{}
	}
	approved := d.Approved
	at := d.ApprovedAt
	by := string(d.ApprovedBy)
	return decisionRow{approved: &approved, at: &at, by: &by}
}

func toDecision(approved *bool, at *time.Time, by *string) *ApprovalDecision {
	if approved == nil {
		return nil
	}
	d := &ApprovalDecision{Approved: *approved}
	if at != nil {
		d.ApprovedAt = *at
	}
	if by != nil {
		d.ApprovedBy = types.ID(*by)
	}
	return d
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toIDPtr(v *string) *types.ID {
	if v == nil {
		return nil
	}
	id := types.ID(*v)
	return &id
}
