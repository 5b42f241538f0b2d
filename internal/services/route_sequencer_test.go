package services

import (
	"math"
	"testing"
	"time"

	"dispatch-tracking-service/internal/domain"
)

func TestSequenceStopsNearestFirst(t *testing.T) {
	origin := domain.Coordinate{Lat: 0, Lon: 0}
	candidates := []StopCandidate{
		{CustomerID: "A", Location: domain.Coordinate{Lat: 0, Lon: 1}},
		{CustomerID: "B", Location: domain.Coordinate{Lat: 0, Lon: 2}},
		{CustomerID: "C", Location: domain.Coordinate{Lat: 0, Lon: 0.5}},
	}

	ordered, total := SequenceStops(origin, candidates)

	if len(ordered) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(ordered))
	}
	want := []string{"C", "A", "B"}
	for i, id := range want {
		if ordered[i].CustomerID != id {
			t.Fatalf("position %d = %q, want %q", i, ordered[i].CustomerID, id)
		}
	}

	// Hops: 0.5 deg + 0.5 deg + 1 deg along the equator = 2 deg total.
	wantTotal := 6371000 * 2 * math.Pi / 180
	if math.Abs(total-wantTotal) > 100 {
		t.Fatalf("total = %v, want about %v", total, wantTotal)
	}
}

func TestSequenceStopsIsPermutation(t *testing.T) {
	origin := domain.Coordinate{Lat: 12.97, Lon: 77.59}
	candidates := []StopCandidate{
		{CustomerID: "c1", Location: domain.Coordinate{Lat: 12.93, Lon: 77.62}},
		{CustomerID: "c2", Location: domain.Coordinate{Lat: 13.01, Lon: 77.55}},
		{CustomerID: "c3", Location: domain.Coordinate{Lat: 12.91, Lon: 77.64}},
		{CustomerID: "c4", Location: domain.Coordinate{Lat: 12.99, Lon: 77.71}},
		{CustomerID: "c5", Location: domain.Coordinate{Lat: 13.10, Lon: 77.59}},
	}

	ordered, _ := SequenceStops(origin, candidates)

	if len(ordered) != len(candidates) {
		t.Fatalf("expected %d stops, got %d", len(candidates), len(ordered))
	}
	seen := map[string]bool{}
	for _, s := range ordered {
		if seen[s.CustomerID] {
			t.Fatalf("customer %q appears twice", s.CustomerID)
		}
		seen[s.CustomerID] = true
	}
	for _, c := range candidates {
		if !seen[c.CustomerID] {
			t.Fatalf("customer %q missing from output", c.CustomerID)
		}
	}
}

func TestSequenceStopsDeterministic(t *testing.T) {
	origin := domain.Coordinate{Lat: 1, Lon: 1}
	candidates := []StopCandidate{
		{CustomerID: "x", Location: domain.Coordinate{Lat: 1.1, Lon: 1.0}},
		{CustomerID: "y", Location: domain.Coordinate{Lat: 1.0, Lon: 1.1}},
		{CustomerID: "z", Location: domain.Coordinate{Lat: 0.9, Lon: 1.0}},
	}

	first, firstTotal := SequenceStops(origin, candidates)
	for run := 0; run < 5; run++ {
		again, againTotal := SequenceStops(origin, candidates)
		if againTotal != firstTotal {
			t.Fatalf("run %d total = %v, want %v", run, againTotal, firstTotal)
		}
		for i := range first {
			if again[i].CustomerID != first[i].CustomerID {
				t.Fatalf("run %d position %d = %q, want %q", run, i, again[i].CustomerID, first[i].CustomerID)
			}
		}
	}
}

func TestSequenceStopsTieBreakFirstOccurrence(t *testing.T) {
	origin := domain.Coordinate{Lat: 0, Lon: 0}
	same := domain.Coordinate{Lat: 0, Lon: 1}
	candidates := []StopCandidate{
		{CustomerID: "first", Location: same},
		{CustomerID: "second", Location: same},
	}

	ordered, _ := SequenceStops(origin, candidates)
	if ordered[0].CustomerID != "first" || ordered[1].CustomerID != "second" {
		t.Fatalf("tie break violated: got %q then %q", ordered[0].CustomerID, ordered[1].CustomerID)
	}
}

func TestSequenceStopsEmpty(t *testing.T) {
	ordered, total := SequenceStops(domain.Coordinate{Lat: 1, Lon: 1}, nil)
	if len(ordered) != 0 || total != 0 {
		t.Fatalf("empty input: got %d stops, total %v", len(ordered), total)
	}
}

func TestBuildStopsOrderAndETAs(t *testing.T) {
	origin := domain.Coordinate{Lat: 0, Lon: 0}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	candidates := []StopCandidate{
		{CustomerID: "A", Address: "addr a", Location: domain.Coordinate{Lat: 0, Lon: 1}},
		{CustomerID: "B", Address: "addr b", Location: domain.Coordinate{Lat: 0, Lon: 2}},
		{CustomerID: "C", Address: "addr c", Location: domain.Coordinate{Lat: 0, Lon: 0.5}},
	}

	stops, total, minutes := BuildStops(origin, candidates, now)

	for i, s := range stops {
		if s.DeliveryOrder != i+1 {
			t.Errorf("stop %d order = %d, want %d", i, s.DeliveryOrder, i+1)
		}
		wantETA := now.Add(time.Duration(i+1) * 15 * time.Minute)
		if !s.EstimatedArrival.Equal(wantETA) {
			t.Errorf("stop %d ETA = %v, want %v", i, s.EstimatedArrival, wantETA)
		}
		if s.Status != domain.StopPending {
			t.Errorf("stop %d status = %q, want pending", i, s.Status)
		}
	}

	wantMinutes := int(math.Ceil(total/1000*3)) + 5*3
	if minutes != wantMinutes {
		t.Fatalf("estimated minutes = %d, want %d", minutes, wantMinutes)
	}
}

func TestEstimateTotalMinutes(t *testing.T) {
	// 10 km at 3 min/km plus 2 stops at 5 min each.
	if got := EstimateTotalMinutes(10000, 2); got != 40 {
		t.Fatalf("EstimateTotalMinutes(10000, 2) = %d, want 40", got)
	}
	// Fractional kilometers round up.
	if got := EstimateTotalMinutes(10100, 1); got != 36 {
		t.Fatalf("EstimateTotalMinutes(10100, 1) = %d, want 36", got)
	}
	if got := EstimateTotalMinutes(0, 0); got != 0 {
		t.Fatalf("EstimateTotalMinutes(0, 0) = %d, want 0", got)
	}
}
