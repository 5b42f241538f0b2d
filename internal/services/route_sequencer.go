package services

import (
	"math"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/geo"
)

// Fixed per-stop travel/dwell allowance used for customer-facing ETAs.
// Deliberately independent of actual route distance.
const perStopAllowance = 15 * time.Minute

// StopCandidate is an unordered, geocoded delivery destination fed to
// the sequencer. Callers filter out candidates without valid
// coordinates before sequencing.
type StopCandidate struct {
	CustomerID string
	Address    string
	Location   domain.Coordinate
}

// SequenceStops orders candidates with a greedy nearest-neighbor walk
// from the origin and returns the visiting order plus the summed hop
// distance in meters.
//
// The algorithm minimizes immediate travel distance at each step. It
// does not attempt global route optimization; determinism and
// simplicity win over optimality. Ties are broken by input order:
// the first occurrence wins.
func SequenceStops(origin domain.Coordinate, candidates []StopCandidate) ([]StopCandidate, float64) {
	if len(candidates) == 0 {
		return []StopCandidate{}, 0
	}

	remaining := make([]StopCandidate, len(candidates))
	copy(remaining, candidates)

	current := origin
	ordered := make([]StopCandidate, 0, len(candidates))
	total := 0.0

	for len(remaining) > 0 {
		best := 0
		bestDist := geo.DistanceMeters(current, remaining[0].Location)

		// Strict less-than keeps the earliest candidate on ties.
		for i := 1; i < len(remaining); i++ {
			if d := geo.DistanceMeters(current, remaining[i].Location); d < bestDist {
				best = i
				bestDist = d
			}
		}

		next := remaining[best]
		remaining = append(remaining[:best], remaining[best+1:]...)

		ordered = append(ordered, next)
		total += bestDist
		current = next.Location
	}

	return ordered, total
}

// EstimateTotalMinutes returns the whole-route time estimate:
// 3 minutes per kilometer plus a 5 minute fixed overhead per stop.
func EstimateTotalMinutes(totalMeters float64, stopCount int) int {
	return int(math.Ceil(totalMeters/1000*3)) + 5*stopCount
}

// BuildStops sequences the candidates and materializes the delivery
// stop list: 1-based visiting order, pending status, and an ETA of
// (position * 15 min) from now for each stop.
func BuildStops(origin domain.Coordinate, candidates []StopCandidate, now time.Time) ([]domain.Stop, float64, int) {
	ordered, total := SequenceStops(origin, candidates)

	stops := make([]domain.Stop, 0, len(ordered))
	for i, c := range ordered {
		stops = append(stops, domain.Stop{
			CustomerID:       c.CustomerID,
			Address:          c.Address,
			Location:         c.Location,
			DeliveryOrder:    i + 1,
			EstimatedArrival: now.Add(time.Duration(i+1) * perStopAllowance),
			Status:           domain.StopPending,
		})
	}

	return stops, total, EstimateTotalMinutes(total, len(stops))
}
