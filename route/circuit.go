package route

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit"
)

// Circuit is a route under construction or, after Build, a built route.
// A built circuit is immutable.
type Circuit struct {
	config    Config
	waypoints []*Waypoint
	table     DistanceTable
	sampler   *Sampler
	curve     []mgl64.Vec3
	built     bool
}

// New creates an empty circuit, to be extended by subsequent builder calls.
func New(cfg Config) *Circuit {
	return &Circuit{config: cfg}
}

// Waypoint adds a named waypoint. Part of builder functionality.
func (c *Circuit) Waypoint(name string, p mgl64.Vec3) *Circuit {
	return c.Waypoints(&Waypoint{Name: name, Position: p})
}

// Missing adds a missing waypoint reference, a slot in the authored list
// without a waypoint behind it. Part of builder functionality.
func (c *Circuit) Missing() *Circuit {
	return c.Waypoints(nil)
}

// Waypoints appends waypoints, nil entries denoting missing references.
// Part of builder functionality.
func (c *Circuit) Waypoints(ws ...*Waypoint) *Circuit {
	if c.built {
		panic("cannot add waypoints to a built circuit")
	}
	c.waypoints = append(c.waypoints, ws...)
	return c
}

// Build computes the distance table and the curve points. A circuit is
// built only once; further calls return it unchanged. A failed build leaves
// the circuit unbuilt, and calling Build again reports the same error.
//
// Circuits with less than two waypoints, or with an effective length of 0,
// are built without curve points and without error.
func (c *Circuit) Build() (*Circuit, error) {
	if c.built {
		return c, nil
	}
	if err := c.config.Validate(); err != nil {
		return nil, err
	}
	if len(c.waypoints) <= 1 {
		tracer().Infof("circuit of %d waypoint(s) has no route", len(c.waypoints))
		c.built = true
		return c, nil
	}
	c.table = BuildDistanceTable(c.waypoints)
	c.sampler = NewSampler(c.table, c.config)
	if circuit.Is0(c.sampler.Length()) {
		tracer().Infof("circuit of length 0 has no route")
		c.built = true
		return c, nil
	}
	curve, err := strategyFor(c.config.Mode).curvePoints(c)
	if err != nil {
		c.table, c.sampler = DistanceTable{}, nil
		return nil, fmt.Errorf("building %s curve: %w", c.config.Mode, err)
	}
	c.curve = curve
	c.built = true
	tracer().Infof("built %s circuit: %d waypoints, length %.4g, %d curve points",
		c.config.Mode, c.N(), c.sampler.Length(), len(c.curve))
	return c, nil
}

// MustBuild is a compatibility helper which panics on build errors.
func (c *Circuit) MustBuild() *Circuit {
	c, err := c.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// N returns the number of waypoint slots, missing ones included.
func (c *Circuit) N() int {
	return len(c.waypoints)
}

// Config returns the configuration the circuit is built with.
func (c *Circuit) Config() Config {
	return c.config
}

// IsLooped is a predicate: is the route closed?
func (c *Circuit) IsLooped() bool {
	return c.config.Looped
}

// IsBuilt is a predicate: has Build been called successfully?
func (c *Circuit) IsBuilt() bool {
	return c.built
}

// HasRoute is a predicate: are there curve points to follow?
func (c *Circuit) HasRoute() bool {
	return len(c.curve) > 0
}

// W returns the waypoint at position (i mod N), possibly nil.
func (c *Circuit) W(i int) *Waypoint {
	return c.waypoints[i%len(c.waypoints)]
}

// Table returns the distance table. It is empty for degenerate circuits.
func (c *Circuit) Table() DistanceTable {
	return c.table
}

// Length returns the effective route length.
func (c *Circuit) Length() float64 {
	if c.sampler == nil {
		return 0
	}
	return c.sampler.Length()
}

// CurvePoints returns a copy of the curve point sequence.
func (c *Circuit) CurvePoints() []mgl64.Vec3 {
	points := make([]mgl64.Vec3, len(c.curve))
	copy(points, c.curve)
	return points
}

// Sampler returns the circuit's sampler, nil for circuits with less than
// two waypoints.
func (c *Circuit) Sampler() *Sampler {
	return c.sampler
}

// GetRoutePosition returns the position dist units along the route.
// Querying a circuit without distance table is a programming error.
func (c *Circuit) GetRoutePosition(dist float64) mgl64.Vec3 {
	if c.sampler == nil {
		panic("route position query on circuit without distance table")
	}
	return c.sampler.GetRoutePosition(dist)
}

// GetRoutePoint returns position and direction dist units along the route.
func (c *Circuit) GetRoutePoint(dist float64) RoutePoint {
	if c.sampler == nil {
		panic("route point query on circuit without distance table")
	}
	return c.sampler.GetRoutePoint(dist)
}
