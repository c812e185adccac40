// Package config loads circuit scenarios from YAML.
//
// A scenario names routes (waypoints plus route configuration), agents
// driving on them, obstacle zones and free-standing obstacles. Files are
// validated against an embedded JSON schema before they are decoded, then
// missing values are filled with defaults.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit/follow"
	"github.com/npillmayer/circuit/motion"
	"github.com/npillmayer/circuit/route"
	"github.com/npillmayer/circuit/zone"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.schema.json
var schemaSource string

var (
	// ErrSchema indicates a scenario rejected by the schema.
	ErrSchema = errors.New("scenario does not match schema")
	// ErrUnknownRoute indicates an agent referring to an undefined route.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrIndex indicates a waypoint index out of range.
	ErrIndex = errors.New("waypoint index out of range")
)

// Vec is a 3D position in YAML form.
type Vec [3]float64

// V3 converts to a vector.
func (v Vec) V3() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// Scenario is the root of a scenario file.
type Scenario struct {
	Tracing   Tracing        `yaml:"tracing,omitempty"`
	Sim       Sim            `yaml:"sim,omitempty"`
	Routes    []RouteSpec    `yaml:"routes,omitempty"`
	Agents    []AgentSpec    `yaml:"agents,omitempty"`
	Zones     []ZoneSpec     `yaml:"zones,omitempty"`
	Obstacles []ObstacleSpec `yaml:"obstacles,omitempty"`
}

// Tracing configures trace output.
type Tracing struct {
	Level string `yaml:"level,omitempty"`
}

// Sim configures the tick loop.
type Sim struct {
	Dt    float64 `yaml:"dt,omitempty"`
	Ticks int     `yaml:"ticks,omitempty"`
	Seed  int64   `yaml:"seed,omitempty"`
}

// WaypointSpec is one authored waypoint. A null entry in the file is a
// missing waypoint.
type WaypointSpec struct {
	Name string `yaml:"name,omitempty"`
	Pos  Vec    `yaml:"pos,flow"`
}

// RouteSpec is an authored route.
type RouteSpec struct {
	Name                   string          `yaml:"name"`
	Mode                   string          `yaml:"mode,omitempty"`
	Looped                 *bool           `yaml:"looped,omitempty"`
	EntryDistance          *float64        `yaml:"entry_distance,omitempty"`
	ExitDistance           *float64        `yaml:"exit_distance,omitempty"`
	CurveSmoothing         *int            `yaml:"curve_smoothing,omitempty"`
	CurveSmoothingInternal *int            `yaml:"curve_smoothing_internal,omitempty"`
	Waypoints              []*WaypointSpec `yaml:"waypoints"`
}

// MotionSpec tunes an agent's actuator.
type MotionSpec struct {
	LinearSpeed  *float64 `yaml:"linear_speed,omitempty"`
	AngularSpeed *float64 `yaml:"angular_speed,omitempty"`
	Offset       *Vec     `yaml:"offset,omitempty,flow"`
	RayDistance  *float64 `yaml:"ray_distance,omitempty"`
}

// AgentSpec is an agent driving on a route.
type AgentSpec struct {
	Name        string      `yaml:"name"`
	Route       string      `yaml:"route"`
	Repeat      *bool       `yaml:"repeat,omitempty"`
	WaitAtStart bool        `yaml:"wait_at_start,omitempty"`
	Wait        []float64   `yaml:"wait,omitempty,flow"`
	Start       *Vec        `yaml:"start,omitempty,flow"`
	Motion      *MotionSpec `yaml:"motion,omitempty"`
	Radius      float64     `yaml:"radius,omitempty"`
}

// ZoneSpec is an obstacle zone, given either as a box [x0,z0,x1,z1] or as
// a polygon of (x,z) corners.
type ZoneSpec struct {
	ID      string       `yaml:"id"`
	Tag     string       `yaml:"tag,omitempty"`
	Box     []float64    `yaml:"box,omitempty,flow"`
	Polygon [][2]float64 `yaml:"polygon,omitempty,flow"`
}

// ObstacleSpec is a free-standing spherical obstacle.
type ObstacleSpec struct {
	Name   string  `yaml:"name"`
	Pos    Vec     `yaml:"pos,flow"`
	Radius float64 `yaml:"radius,omitempty"`
	Tag    string  `yaml:"tag,omitempty"`
}

// Defaults for values a scenario leaves out.
const (
	DefaultDt           = 0.02
	DefaultTicks        = 3000
	DefaultAgentRadius  = 0.5
	DefaultObstacleSize = 0.5
)

var schema *jsonschema.Schema

func compiled() (*jsonschema.Schema, error) {
	if schema != nil {
		return schema, nil
	}
	s, err := jsonschema.CompileString("scenario.schema.json", schemaSource)
	if err != nil {
		return nil, err
	}
	schema = s
	return s, nil
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse validates and decodes a scenario, then applies defaults.
func Parse(raw []byte) (*Scenario, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	s := &Scenario{}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	s.applyDefaults()
	if err := s.check(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks raw YAML against the scenario schema.
func Validate(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// the schema validator only knows JSON values
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	sch, err := compiled()
	if err != nil {
		return err
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// Marshal encodes a scenario as YAML.
func Marshal(s *Scenario) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Scenario) applyDefaults() {
	if s.Tracing.Level == "" {
		s.Tracing.Level = "Info"
	}
	if s.Sim.Dt == 0 {
		s.Sim.Dt = DefaultDt
	}
	if s.Sim.Ticks == 0 {
		s.Sim.Ticks = DefaultTicks
	}
	for i := range s.Agents {
		if s.Agents[i].Radius == 0 {
			s.Agents[i].Radius = DefaultAgentRadius
		}
	}
	for i := range s.Obstacles {
		if s.Obstacles[i].Radius == 0 {
			s.Obstacles[i].Radius = DefaultObstacleSize
		}
		if s.Obstacles[i].Tag == "" {
			s.Obstacles[i].Tag = string(motion.TagMovingObstacle)
		}
	}
	for i := range s.Zones {
		if s.Zones[i].Tag == "" {
			s.Zones[i].Tag = string(motion.TagObstacle)
		}
	}
}

func (s *Scenario) check() error {
	for _, a := range s.Agents {
		if s.Route(a.Route) == nil {
			return fmt.Errorf("%w %q for agent %q", ErrUnknownRoute, a.Route, a.Name)
		}
	}
	for _, r := range s.Routes {
		if _, err := r.Config(); err != nil {
			return fmt.Errorf("route %q: %w", r.Name, err)
		}
	}
	return nil
}

// Route returns the route spec with the given name, or nil.
func (s *Scenario) Route(name string) *RouteSpec {
	for i := range s.Routes {
		if s.Routes[i].Name == name {
			return &s.Routes[i]
		}
	}
	return nil
}

// === Routes ================================================================

// Config returns the route configuration, defaults filled in.
func (r *RouteSpec) Config() (route.Config, error) {
	cfg := route.DefaultConfig()
	mode, err := route.ParseMode(r.Mode)
	if err != nil {
		return cfg, err
	}
	cfg.Mode = mode
	if r.Looped != nil {
		cfg.Looped = *r.Looped
	}
	if r.EntryDistance != nil {
		cfg.EntryDistance = *r.EntryDistance
	}
	if r.ExitDistance != nil {
		cfg.ExitDistance = *r.ExitDistance
	}
	if r.CurveSmoothing != nil {
		cfg.CurveSmoothing = *r.CurveSmoothing
	}
	if r.CurveSmoothingInternal != nil {
		cfg.CurveSmoothingInternal = *r.CurveSmoothingInternal
	}
	return cfg, cfg.Validate()
}

// Build builds the circuit of a route.
func (r *RouteSpec) Build() (*route.Circuit, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	c := route.New(cfg)
	for _, w := range r.Waypoints {
		if w == nil {
			c.Missing()
			continue
		}
		c.Waypoint(w.Name, w.Pos.V3())
	}
	return c.Build()
}

func (r *RouteSpec) checkIndex(i int) error {
	if i < 0 || i >= len(r.Waypoints) {
		return fmt.Errorf("%w: %d of %d", ErrIndex, i, len(r.Waypoints))
	}
	return nil
}

// MoveUp swaps waypoint i with its predecessor. Moving the first waypoint
// up is a no-op.
func (r *RouteSpec) MoveUp(i int) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	if i > 0 {
		r.Waypoints[i-1], r.Waypoints[i] = r.Waypoints[i], r.Waypoints[i-1]
	}
	return nil
}

// MoveDown swaps waypoint i with its successor. Moving the last waypoint
// down is a no-op.
func (r *RouteSpec) MoveDown(i int) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	if i < len(r.Waypoints)-1 {
		r.Waypoints[i+1], r.Waypoints[i] = r.Waypoints[i], r.Waypoints[i+1]
	}
	return nil
}

// Remove deletes waypoint i.
func (r *RouteSpec) Remove(i int) error {
	if err := r.checkIndex(i); err != nil {
		return err
	}
	r.Waypoints = append(r.Waypoints[:i], r.Waypoints[i+1:]...)
	return nil
}

// Rename names waypoints without a name "Waypoint <index>", the way the
// authoring list labels them.
func (r *RouteSpec) Rename() {
	for i, w := range r.Waypoints {
		if w != nil && w.Name == "" {
			w.Name = fmt.Sprintf("Waypoint %d", i)
		}
	}
}

// === Agents and zones ======================================================

// MotionConfig returns the actuator tuning of an agent.
func (a *AgentSpec) MotionConfig() motion.Config {
	cfg := motion.DefaultConfig()
	m := a.Motion
	if m == nil {
		return cfg
	}
	if m.LinearSpeed != nil {
		cfg.LinearSpeed = *m.LinearSpeed
	}
	if m.AngularSpeed != nil {
		cfg.AngularSpeed = *m.AngularSpeed
	}
	if m.Offset != nil {
		cfg.Offset = m.Offset.V3()
	}
	if m.RayDistance != nil {
		cfg.RayDistance = *m.RayDistance
	}
	return cfg
}

// FollowOptions returns the follower options of an agent. Callbacks and the
// random source are left for the caller.
func (a *AgentSpec) FollowOptions() follow.Options {
	opts := follow.DefaultOptions()
	if a.Repeat != nil {
		opts.Repeat = *a.Repeat
	}
	opts.WaitAtStart = a.WaitAtStart
	if len(a.Wait) == 2 {
		opts.WaitMin, opts.WaitMax = a.Wait[0], a.Wait[1]
	}
	return opts
}

// Zone creates the zone of a spec.
func (z *ZoneSpec) Zone() *zone.Zone {
	if len(z.Box) == 4 {
		return zone.Box(z.ID, z.Box[0], z.Box[1], z.Box[2], z.Box[3]).Tagged(motion.Tag(z.Tag))
	}
	zn := zone.NullZone(z.ID).Tagged(motion.Tag(z.Tag))
	for _, p := range z.Polygon {
		zn.Knot(p[0], p[1])
	}
	return zn.Cycle()
}
