// README: Trip distance estimation via Google Distance Matrix with a haversine fallback.
package maps

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"googlemaps.github.io/maps"

	"fleet/internal/geo"
	"fleet/internal/types"
)

const (
	MethodGoogleMaps = "google_maps"
	MethodHaversine  = "haversine"

	// averageSpeedKmh is used to turn straight-line distance into a duration.
	averageSpeedKmh = 40.0
)

type Estimate struct {
	DistanceKm      float64
	DurationMinutes int
	Method          string
}

// matrixClient is the part of *maps.Client the distance service needs.
type matrixClient interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// DistanceService estimates trip distance, preferring Google road distance and falling
// back to the haversine formula when no key is configured or the API call fails.
type DistanceService struct {
	client matrixClient
	log    logrus.FieldLogger
}

// NewDistanceService creates the service. An empty apiKey disables Google lookups.
func NewDistanceService(apiKey string, log logrus.FieldLogger) (*DistanceService, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &DistanceService{log: log.WithField("module", "maps")}
	if apiKey == "" {
		return s, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *DistanceService) Estimate(ctx context.Context, origin, destination types.Point) (Estimate, error) {
	if !origin.Valid() || !destination.Valid() {
		return Estimate{}, errors.New("origin and destination coordinates are required")
	}
	if s.client != nil {
		est, err := s.roadEstimate(ctx, origin, destination)
		if err == nil {
			return est, nil
		}
		s.log.WithError(err).Warn("distance matrix failed, using haversine")
	}
	d := geo.Between(origin, destination)
	return Estimate{
		DistanceKm:      d,
		DurationMinutes: geo.EstimateMinutes(d, averageSpeedKmh),
		Method:          MethodHaversine,
	}, nil
}

func (s *DistanceService) roadEstimate(ctx context.Context, origin, destination types.Point) (Estimate, error) {
	resp, err := s.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{latLng(origin)},
		Destinations: []string{latLng(destination)},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		return Estimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return Estimate{}, errors.New("no route found")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return Estimate{}, fmt.Errorf("no route found: %s", el.Status)
	}
	return Estimate{
		DistanceKm:      math.Round(float64(el.Distance.Meters)/100) / 10,
		DurationMinutes: int(math.Round(el.Duration.Minutes())),
		Method:          MethodGoogleMaps,
	}, nil
}

func latLng(p types.Point) string {
	return fmt.Sprintf("%f,%f", p.Lat, p.Lng)
}
