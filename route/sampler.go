package route

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit"
)

// Sampler answers distance-parameterized queries against a distance table.
// It is only valid for the table it was created with.
type Sampler struct {
	table  DistanceTable
	n      int
	length float64
	interp segmentInterpolator
}

// NewSampler creates a sampler for a table, interpolating the way the
// configured mode does. The table needs at least two waypoints.
func NewSampler(table DistanceTable, cfg Config) *Sampler {
	if table.N() < 2 {
		panic("sampler needs a distance table of at least 2 waypoints")
	}
	return &Sampler{
		table:  table,
		n:      table.N(),
		length: table.Length(cfg.Looped),
		interp: strategyFor(cfg.Mode),
	}
}

// Length is the effective route length.
func (s *Sampler) Length() float64 {
	return s.length
}

// GetRoutePosition returns the position dist units along the route.
// dist is wrapped into the route length first.
//
// The segment enclosing dist is found by a linear scan of the table. The
// scan relies on dist being less than the final cumulative distance after
// wrapping; a table that does not belong to the route breaks this.
func (s *Sampler) GetRoutePosition(dist float64) mgl64.Vec3 {
	dist = circuit.Repeat(dist, s.length)
	index := 0
	for s.table.Distances[index] < dist {
		index++
	}
	n := s.n
	p1 := (index - 1 + n) % n
	p2 := index
	i := circuit.InverseLerp(s.table.Distances[p1], s.table.Distances[p2], dist)
	return s.interp.interpolate(s.table, index, i)
}

// GetRoutePoint returns position and direction dist units along the route.
// The direction is a forward difference over a fixed step of 0.1 units.
func (s *Sampler) GetRoutePoint(dist float64) RoutePoint {
	p := s.GetRoutePosition(dist)
	q := s.GetRoutePosition(dist + directionStep)
	return RoutePoint{
		Position:  p,
		Direction: circuit.Normalized(q.Sub(p)),
	}
}

// CatmullRom evaluates the Catmull-Rom spline segment between p1 and p2 at i.
func CatmullRom(p0, p1, p2, p3 mgl64.Vec3, i float64) mgl64.Vec3 {
	i2 := i * i
	i3 := i2 * i
	a := p1.Mul(2)
	b := p2.Sub(p0).Mul(i)
	c := p0.Mul(2).Sub(p1.Mul(5)).Add(p2.Mul(4)).Sub(p3).Mul(i2)
	d := p1.Mul(3).Sub(p0).Sub(p2.Mul(3)).Add(p3).Mul(i3)
	return a.Add(b).Add(c).Add(d).Mul(0.5)
}

// QuadraticBezier evaluates the quadratic Bézier curve with control point c
// between start and end at t.
func QuadraticBezier(start, c, end mgl64.Vec3, t float64) mgl64.Vec3 {
	u := 1 - t
	return start.Mul(u * u).Add(c.Mul(2 * u * t)).Add(end.Mul(t * t))
}
