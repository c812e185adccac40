package route

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DistanceTable maps waypoint indices to cumulative route lengths.
//
// Both slices have N+1 entries for N waypoints. Points[i] is the position of
// waypoint i mod N; Distances[i] is the length walked from waypoint 0 up to
// index i, where the last step wraps from waypoint N-1 back to waypoint 0.
type DistanceTable struct {
	Points    []mgl64.Vec3
	Distances []float64
}

// BuildDistanceTable computes the distance table for a list of waypoints.
//
// A nil waypoint on either end of a pair leaves the table entry of that index
// untouched (zero in a fresh table) and does not add to the running length.
// Lookups past such a gap are out of step with their waypoints. Callers
// depend on the exact numbers, so the gap must not be repaired here.
func BuildDistanceTable(waypoints []*Waypoint) DistanceTable {
	n := len(waypoints)
	if n == 0 {
		return DistanceTable{}
	}
	table := DistanceTable{
		Points:    make([]mgl64.Vec3, n+1),
		Distances: make([]float64, n+1),
	}
	acc := 0.0
	for i := 0; i <= n; i++ {
		w1 := waypoints[i%n]
		w2 := waypoints[(i+1)%n]
		if w1 == nil || w2 == nil {
			tracer().Debugf("distance table: skipping pair %d-%d, missing waypoint", i%n, (i+1)%n)
			continue
		}
		table.Points[i] = w1.Position
		table.Distances[i] = acc
		acc += w1.Position.Sub(w2.Position).Len()
	}
	return table
}

// N returns the number of waypoints the table was built from.
func (t DistanceTable) N() int {
	if len(t.Distances) == 0 {
		return 0
	}
	return len(t.Distances) - 1
}

// Length returns the effective route length: the full loop for looped
// routes, one segment short of it otherwise.
func (t DistanceTable) Length(looped bool) float64 {
	n := t.N()
	if n == 0 {
		return 0
	}
	if looped {
		return t.Distances[n]
	}
	return t.Distances[n-1]
}
