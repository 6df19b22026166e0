package service

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 44.7722, 17.1910, 44.7722, 17.1910, 0, 0.001},
		{"one degree longitude at equator", 0, 0, 0, 1, 111194.9, 1},
		{"sarajevo to banja luka", 43.8563, 18.4131, 44.7722, 17.1910, 140800, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("expected ~%f, got %f", tt.want, got)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := haversineMeters(43.8563, 18.4131, 44.7722, 17.1910)
	b := haversineMeters(44.7722, 17.1910, 43.8563, 18.4131)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("distance must be symmetric: %f vs %f", a, b)
	}
}
