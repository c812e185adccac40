// Package motion moves an agent body toward a target and gates it by a
// forward obstacle ray.
//
// An Actuator reads and writes the body through a Transform. Positions handed
// to and reported by the actuator are body positions minus a fixed offset, so
// a body floating above the route still drives along it. Sensing is done by a
// RayCaster, once per tick and before Advance.
package motion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'circuit.motion'
func tracer() tracing.Trace {
	return tracing.Select("circuit.motion")
}

// ReachedDistance is the distance to a target at which it counts as reached.
const ReachedDistance = 0.1

// Tag is the category of an entity met by a ray or a trigger.
type Tag string

// Tags the actuator reacts to.
const (
	TagObstacle       Tag = "Obstacle"     // static obstacle zone with a busy-flag
	TagMovingObstacle Tag = "ObstacleMove" // blocks the forward ray
)

// Transform is the externally owned body of an agent.
type Transform interface {
	Position() mgl64.Vec3
	SetPosition(mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(mgl64.Quat)
}

// Hit is the nearest entity found by a ray cast.
type Hit struct {
	Tag      Tag
	Distance float64
}

// RayCaster answers ray queries against the world.
type RayCaster interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool)
}

// BusyFlag is the writable side of a zone's obstacle gate.
type BusyFlag interface {
	SetBusy(bool)
}

// Config holds the tuning of an actuator.
type Config struct {
	LinearSpeed  float64    // units per second
	AngularSpeed float64    // slerp factor per second
	Offset       mgl64.Vec3 // body position minus route position
	RayDistance  float64    // length of the forward ray
}

// DefaultConfig returns the default actuator tuning.
func DefaultConfig() Config {
	return Config{
		LinearSpeed:  10,
		AngularSpeed: 10,
		Offset:       mgl64.Vec3{0, 0.5, 0},
		RayDistance:  1,
	}
}

// Actuator drives one body. It satisfies follow.Mover.
type Actuator struct {
	body    Transform
	caster  RayCaster
	config  Config
	stopped bool
	reached func()
}

// New creates an actuator for a body. caster may be nil, in which case the
// ray never hits.
func New(body Transform, caster RayCaster, cfg Config) *Actuator {
	if body == nil {
		panic("motion: actuator needs a body")
	}
	return &Actuator{body: body, caster: caster, config: cfg}
}

// SetReachedHandler registers the single reached handler. nil removes it.
func (a *Actuator) SetReachedHandler(h func()) {
	a.reached = h
}

// Config returns the actuator's tuning.
func (a *Actuator) Config() Config {
	return a.config
}

// Position returns the route position of the body.
func (a *Actuator) Position() mgl64.Vec3 {
	return a.body.Position().Sub(a.config.Offset)
}

func (a *Actuator) setPosition(p mgl64.Vec3) {
	a.body.SetPosition(p.Add(a.config.Offset))
}

// Sense casts the forward ray from the body and sets the gate: a moving
// obstacle within reach stops the actuator, anything else clears it.
func (a *Actuator) Sense() {
	was := a.stopped
	a.stopped = false
	if a.caster != nil {
		dir := circuit.ForwardOf(a.body.Rotation())
		if hit, ok := a.caster.Raycast(a.body.Position(), dir, a.config.RayDistance); ok {
			a.stopped = hit.Tag == TagMovingObstacle
		}
	}
	if was != a.stopped {
		tracer().Debugf("gate %s at %s", a, circuit.VString(a.Position()))
	}
}

// Blocked is a predicate: is the forward ray blocked by a moving obstacle?
func (a *Actuator) Blocked() bool {
	return a.stopped
}

// Advance moves the body toward target for dt seconds. While blocked it does
// nothing. Arrival within ReachedDistance is reported to the reached handler.
func (a *Actuator) Advance(target mgl64.Vec3, dt float64) {
	if a.stopped {
		return
	}
	pos := a.Position()
	to := target.Sub(pos)
	if !circuit.IsZero(to) {
		look := circuit.LookRotation(to, circuit.Up)
		a.body.SetRotation(circuit.RotateTowards(a.body.Rotation(), look, a.config.AngularSpeed*dt))
	}
	pos = circuit.MoveTowards(pos, target, a.config.LinearSpeed*dt)
	a.setPosition(pos)
	if circuit.Distance(pos, target) <= ReachedDistance && a.reached != nil {
		a.reached()
	}
}

// EnterZone is called when the body enters a trigger zone. Static obstacle
// zones are marked busy.
func (a *Actuator) EnterZone(tag Tag, flag BusyFlag) {
	if tag != TagObstacle || flag == nil {
		return
	}
	flag.SetBusy(true)
}

// ExitZone is called when the body leaves a trigger zone. Static obstacle
// zones are marked free.
func (a *Actuator) ExitZone(tag Tag, flag BusyFlag) {
	if tag != TagObstacle || flag == nil {
		return
	}
	flag.SetBusy(false)
}

func (a *Actuator) String() string {
	if a.stopped {
		return "stopped"
	}
	return fmt.Sprintf("clear(v=%g)", a.config.LinearSpeed)
}
