// Package sim hosts agents driving on circuits.
//
// A World owns agents, spherical obstacles and obstacle zones, and steps
// them with a fixed time delta. Per agent and tick it senses, advances the
// follower (which drives the actuator), and then reports zone transitions.
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/npillmayer/circuit"
	"github.com/npillmayer/circuit/follow"
	"github.com/npillmayer/circuit/internal/config"
	"github.com/npillmayer/circuit/motion"
	"github.com/npillmayer/circuit/route"
	"github.com/npillmayer/circuit/zone"
	"github.com/npillmayer/schuko/tracing"
	"go.uber.org/multierr"
)

// tracer writes to trace with key 'circuit.sim'
func tracer() tracing.Trace {
	return tracing.Select("circuit.sim")
}

// ErrNoRoute is returned when adding an agent on a circuit without a route.
var ErrNoRoute = errors.New("agent has no route")

var (
	_ motion.Transform    = (*Body)(nil)
	_ follow.Mover        = (*motion.Actuator)(nil)
	_ zone.TriggerHandler = (*motion.Actuator)(nil)
)

// Body is the transform of an agent.
type Body struct {
	pos mgl64.Vec3
	rot mgl64.Quat
}

// Position returns the body position.
func (b *Body) Position() mgl64.Vec3 { return b.pos }

// SetPosition sets the body position.
func (b *Body) SetPosition(p mgl64.Vec3) { b.pos = p }

// Rotation returns the body orientation.
func (b *Body) Rotation() mgl64.Quat { return b.rot }

// SetRotation sets the body orientation.
func (b *Body) SetRotation(q mgl64.Quat) { b.rot = q }

// Agent is a body driven along a circuit.
type Agent struct {
	ID       string
	Name     string
	Radius   float64
	Body     *Body
	Circuit  *route.Circuit
	Actuator *motion.Actuator
	Follower *follow.Follower
	Tracker  *zone.Tracker
	Cycles   int  // number of repeated cycles
	Ended    bool // path ended
}

// Obstacle is a sphere the forward rays of agents can hit.
type Obstacle struct {
	Name   string
	Pos    mgl64.Vec3
	Radius float64
	Tag    motion.Tag
}

// World is a set of agents, obstacles and zones.
type World struct {
	tick      int
	time      float64
	rng       *rand.Rand
	agents    []*Agent
	obstacles []*Obstacle
	zones     *zone.Registry
}

// NewWorld creates an empty world. All randomness of the world is drawn
// from seed.
func NewWorld(seed int64) *World {
	return &World{
		rng:   rand.New(rand.NewSource(seed)),
		zones: zone.NewRegistry(),
	}
}

// AddZone registers an obstacle zone.
func (w *World) AddZone(z *zone.Zone) error {
	return w.zones.Add(z)
}

// AddObstacle adds a spherical obstacle.
func (w *World) AddObstacle(o *Obstacle) {
	w.obstacles = append(w.obstacles, o)
}

// AgentSetup collects the parameters of a new agent.
type AgentSetup struct {
	Name    string
	Circuit *route.Circuit
	Start   *mgl64.Vec3 // route position to start at; first curve point if nil
	Radius  float64
	Motion  motion.Config
	Follow  follow.Options
}

// AddAgent places an agent at its start position and starts its follower.
// The agent faces the second curve point.
func (w *World) AddAgent(setup AgentSetup) (*Agent, error) {
	if setup.Circuit == nil || !setup.Circuit.HasRoute() {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, setup.Name)
	}
	id, err := uuid.NewRandomFromReader(w.rng)
	if err != nil {
		return nil, err
	}
	points := setup.Circuit.CurvePoints()
	start := points[0]
	if setup.Start != nil {
		start = *setup.Start
	}
	a := &Agent{
		ID:      id.String(),
		Name:    setup.Name,
		Radius:  setup.Radius,
		Circuit: setup.Circuit,
		Body:    &Body{pos: start.Add(setup.Motion.Offset), rot: mgl64.QuatIdent()},
		Tracker: zone.NewTracker(w.zones),
	}
	if len(points) > 1 {
		a.Body.rot = circuit.LookRotation(points[1].Sub(points[0]), circuit.Up)
	}
	a.Actuator = motion.New(a.Body, &caster{world: w, self: a}, setup.Motion)
	opts := setup.Follow
	if opts.Rand == nil {
		opts.Rand = w.rng
	}
	opts.OnCycleRepeated = chain(opts.OnCycleRepeated, func() { a.Cycles++ })
	opts.OnPathEnded = chain(opts.OnPathEnded, func() { a.Ended = true })
	a.Follower = follow.ForCircuit(setup.Circuit, a.Actuator, opts)
	if err := a.Follower.Start(); err != nil {
		return nil, fmt.Errorf("agent %s: %w", setup.Name, err)
	}
	w.agents = append(w.agents, a)
	tracer().Infof("agent %s (%s) on %d curve points", a.Name, a.ID, len(points))
	return a, nil
}

func chain(f, g func()) func() {
	if f == nil {
		return g
	}
	return func() {
		f()
		g()
	}
}

// FromScenario creates a world from a scenario. Every agent, zone and
// obstacle that can be created is; the errors of the others are combined.
func FromScenario(s *config.Scenario) (*World, error) {
	w := NewWorld(s.Sim.Seed)
	var errs error
	for i := range s.Zones {
		errs = multierr.Append(errs, w.AddZone(s.Zones[i].Zone()))
	}
	for _, o := range s.Obstacles {
		w.AddObstacle(&Obstacle{Name: o.Name, Pos: o.Pos.V3(), Radius: o.Radius, Tag: motion.Tag(o.Tag)})
	}
	circuits := make(map[string]*route.Circuit)
	for i := range s.Agents {
		spec := &s.Agents[i]
		c, ok := circuits[spec.Route]
		if !ok {
			var err error
			if c, err = s.Route(spec.Route).Build(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("route %q: %w", spec.Route, err))
				continue
			}
			circuits[spec.Route] = c
		}
		setup := AgentSetup{
			Name:    spec.Name,
			Circuit: c,
			Radius:  spec.Radius,
			Motion:  spec.MotionConfig(),
			Follow:  spec.FollowOptions(),
		}
		if spec.Start != nil {
			p := spec.Start.V3()
			setup.Start = &p
		}
		_, err := w.AddAgent(setup)
		errs = multierr.Append(errs, err)
	}
	return w, errs
}

// Step advances the world by dt seconds.
func (w *World) Step(dt float64) {
	for _, a := range w.agents {
		a.Actuator.Sense()
		a.Follower.Tick(dt)
		a.Tracker.Update(a.Actuator.Position(), a.Actuator)
	}
	w.tick++
	w.time += dt
	if w.tick%100 == 0 {
		tracer().Debugf("tick %d, t=%.2f", w.tick, w.time)
	}
}

// Done is a predicate: have all agents stopped?
func (w *World) Done() bool {
	for _, a := range w.agents {
		if a.Follower.State() != follow.Stopped {
			return false
		}
	}
	return true
}

// Tick returns the number of steps done.
func (w *World) Tick() int {
	return w.tick
}

// Agents returns the agents in the order they were added.
func (w *World) Agents() []*Agent {
	return w.agents
}

// Agent returns the agent with the given name.
func (w *World) Agent(name string) *Agent {
	for _, a := range w.agents {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Zones returns the zone registry.
func (w *World) Zones() *zone.Registry {
	return w.zones
}
