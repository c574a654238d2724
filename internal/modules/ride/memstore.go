// README: In-memory ride store used by tests and local runs without Postgres.
package ride

import (
	"context"
	"sort"
	"sync"

	"fleet/internal/types"
)

type MemStore struct {
	mu     sync.Mutex
	rides  map[types.ID]*Ride
	events []Event
	nextID int64
}

func NewMemStore() *MemStore {
	return &MemStore{rides: make(map[types.ID]*Ride)}
}

func (s *MemStore) Create(_ context.Context, r *Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rides[r.ID] = r.Clone()
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemStore) Update(_ context.Context, r *Ride, from Status, version int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rides[r.ID]
	if !ok || cur.Status != from || cur.StatusVersion != version {
		return false, nil
	}
	next := r.Clone()
	next.StatusVersion = version + 1
	next.RequesterID = cur.RequesterID
	next.StartLocation = cur.StartLocation
	next.EndLocation = cur.EndLocation
	next.DistanceKm = cur.DistanceKm
	next.CreatedAt = cur.CreatedAt
	s.rides[r.ID] = next
	return true, nil
}

func (s *MemStore) List(_ context.Context, f ListFilter) ([]*Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Ride{}
	for _, r := range s.rides {
		if f.RequesterID != "" && r.RequesterID != f.RequesterID {
			continue
		}
		if f.DriverID != "" && (r.DriverID == nil || *r.DriverID != f.DriverID) {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.MinDistanceKm != nil && r.DistanceKm <= *f.MinDistanceKm {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) AppendEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ev := *e
	ev.ID = s.nextID
	s.events = append(s.events, ev)
	return nil
}

func (s *MemStore) ListEvents(_ context.Context, rideID types.ID) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Event{}
	for _, e := range s.events {
		if e.RideID == rideID {
			out = append(out, e)
		}
	}
	return out, nil
}
