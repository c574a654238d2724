package geo

import (
	"math"
	"testing"

	"fleet/internal/types"
)

func TestDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 6.9271, lng1: 79.8612,
			lat2: 6.9271, lng2: 79.8612,
			wantKm:    0,
			tolerance: 0,
		},
		{
			name: "Colombo to Kandy",
			lat1: 6.9271, lng1: 79.8612,
			lat2: 7.2906, lng2: 80.6337,
			wantKm:    94.3,
			tolerance: 1e-9,
		},
		{
			name: "New York to Los Angeles (~3936km)",
			lat1: 40.7128, lng1: -74.0060,
			lat2: 34.0522, lng2: -118.2437,
			wantKm:    3935.7,
			tolerance: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm() = %f, want %f (±%g)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{25.0, 121.0, 26.0, 122.0},
		{6.9271, 79.8612, 7.2906, 80.6337},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{0, 179.9, 0, -179.9},
	}
	for _, p := range pairs {
		d1 := DistanceKm(p[0], p[1], p[2], p[3])
		d2 := DistanceKm(p[2], p[3], p[0], p[1])
		if d1 != d2 {
			t.Errorf("haversine is not symmetric for %v: %f vs %f", p, d1, d2)
		}
	}
}

func TestDistanceKm_RoundsToOneDecimal(t *testing.T) {
	got := DistanceKm(6.9271, 79.8612, 7.0271, 79.9112)
	if got != math.Round(got*10)/10 {
		t.Errorf("expected one decimal place, got %v", got)
	}
	if got != 12.4 {
		t.Errorf("DistanceKm() = %v, want 12.4", got)
	}
}

func TestBetween(t *testing.T) {
	a := types.Point{Lat: 6.9271, Lng: 79.8612}
	b := types.Point{Lat: 7.2906, Lng: 80.6337}
	if Between(a, b) != DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng) {
		t.Error("Between disagrees with DistanceKm")
	}
}

func TestEstimateMinutes(t *testing.T) {
	if got := EstimateMinutes(20, 40); got != 30 {
		t.Errorf("EstimateMinutes(20, 40) = %d, want 30", got)
	}
	if got := EstimateMinutes(10, 0); got != 0 {
		t.Errorf("EstimateMinutes with zero speed = %d, want 0", got)
	}
}
