package geo

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"same point", -6.2, 106.8, -6.2, 106.8, 0, 0.01},
		// ~111.19 km per degree of latitude
		{"one degree latitude", 0, 0, 1, 0, 111195, 50},
		// one degree of longitude at the equator
		{"one degree longitude equator", 0, 0, 0, 1, 111195, 50},
		// short hop, roughly 157m
		{"short distance", -6.2000, 106.8000, -6.2010, 106.8010, 157, 5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := HaversineDistance(c.lat1, c.lon1, c.lat2, c.lon2)
			if math.Abs(got-c.want) > c.tolerance {
				t.Errorf("HaversineDistance() = %.2f, want %.2f ± %.2f", got, c.want, c.tolerance)
			}
		})
	}
}

func TestHaversineDistanceSymmetry(t *testing.T) {
	a := HaversineDistance(-6.2, 106.8, 3.58, 98.67)
	b := HaversineDistance(3.58, 98.67, -6.2, 106.8)
	if math.Abs(a-b) > 0.0001 {
		t.Errorf("distance not symmetric: %.4f vs %.4f", a, b)
	}
}
