package geo

import (
	"math"
	"testing"

	"dispatch-tracking-service/internal/domain"
)

func TestDistanceSymmetryAndZero(t *testing.T) {
	pairs := []struct {
		a, b domain.Coordinate
	}{
		{domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 0, Lon: 1}},
		{domain.Coordinate{Lat: 19.0760, Lon: 72.8777}, domain.Coordinate{Lat: 18.5204, Lon: 73.8567}},
		{domain.Coordinate{Lat: -33.8688, Lon: 151.2093}, domain.Coordinate{Lat: 51.5074, Lon: -0.1278}},
	}

	for _, p := range pairs {
		ab := DistanceMeters(p.a, p.b)
		ba := DistanceMeters(p.b, p.a)
		if ab != ba {
			t.Errorf("distance not symmetric: %v vs %v", ab, ba)
		}
		if d := DistanceMeters(p.a, p.a); d != 0 {
			t.Errorf("distance to self = %v, want 0", d)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of longitude along the equator is R * pi/180.
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 1}

	want := 6371 * math.Pi / 180 // km
	got := DistanceKilometers(a, b)
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("DistanceKilometers = %v, want %v", got, want)
	}

	gotM := DistanceMeters(a, b)
	if math.Abs(gotM-want*1000) > 10 {
		t.Fatalf("DistanceMeters = %v, want %v", gotM, want*1000)
	}
}

func TestDistanceInvalidInputReturnsSentinel(t *testing.T) {
	good := domain.Coordinate{Lat: 10, Lon: 10}
	bad := []domain.Coordinate{
		{Lat: math.NaN(), Lon: 10},
		{Lat: 10, Lon: math.NaN()},
		{Lat: math.Inf(1), Lon: 10},
		{Lat: 10, Lon: math.Inf(-1)},
		{Lat: 91, Lon: 10},
		{Lat: -91, Lon: 10},
		{Lat: 10, Lon: 181},
		{Lat: 10, Lon: -181},
	}

	for _, c := range bad {
		if d := DistanceMeters(good, c); d != SentinelMeters {
			t.Errorf("DistanceMeters(good, %+v) = %v, want sentinel %v", c, d, SentinelMeters)
		}
		if d := DistanceKilometers(c, good); d != SentinelKilometers {
			t.Errorf("DistanceKilometers(%+v, good) = %v, want sentinel %v", c, d, SentinelKilometers)
		}
	}
}

func TestIsWithinRadiusBoundaryInclusive(t *testing.T) {
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 0.004}

	d := DistanceMeters(a, b)
	if !IsWithinRadius(a, b, d) {
		t.Fatalf("point at exactly %v m should be within radius %v", d, d)
	}
	if IsWithinRadius(a, b, d-1) {
		t.Fatalf("point at %v m should be outside radius %v", d, d-1)
	}
}
