package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/circuit"
	"github.com/npillmayer/circuit/motion"
	"github.com/npillmayer/circuit/route"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
tracing:
  level: Debug
sim:
  dt: 0.05
  seed: 7
routes:
  - name: ring
    mode: external
    curve_smoothing: 20
    waypoints:
      - {name: a, pos: [0, 0, 0]}
      - {name: b, pos: [10, 0, 0]}
      - {name: c, pos: [10, 0, 10]}
      - {pos: [0, 0, 10]}
  - name: lane
    mode: internal
    looped: false
    entry_distance: 1
    waypoints:
      - {pos: [0, 0, 0]}
      - null
      - {pos: [5, 0, 5]}
      - {pos: [10, 0, 5]}
agents:
  - name: car
    route: ring
    wait: [0, 0.5]
    motion:
      linear_speed: 4
      offset: [0, 1, 0]
  - name: bus
    route: ring
    repeat: false
zones:
  - id: crossing
    box: [4, -1, 6, 1]
  - id: pond
    tag: Water
    polygon: [[0, 0], [2, 0], [1, 2]]
obstacles:
  - name: cow
    pos: [5, 0.5, 3]
`

func TestParseSample(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "Debug", s.Tracing.Level)
	assert.Equal(t, 0.05, s.Sim.Dt)
	assert.Equal(t, DefaultTicks, s.Sim.Ticks)
	assert.Equal(t, int64(7), s.Sim.Seed)
	require.Len(t, s.Routes, 2)
	require.Len(t, s.Routes[1].Waypoints, 4)
	assert.Nil(t, s.Routes[1].Waypoints[1])
	assert.Equal(t, string(motion.TagMovingObstacle), s.Obstacles[0].Tag)
	assert.Equal(t, DefaultObstacleSize, s.Obstacles[0].Radius)
	assert.Equal(t, string(motion.TagObstacle), s.Zones[0].Tag)
	assert.Equal(t, DefaultAgentRadius, s.Agents[0].Radius)
}

func TestRouteConfig(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	cfg, err := s.Route("ring").Config()
	require.NoError(t, err)
	assert.Equal(t, route.ExternalSpline, cfg.Mode)
	assert.True(t, cfg.Looped)
	assert.Equal(t, 20, cfg.CurveSmoothing)
	assert.Equal(t, 2.0, cfg.EntryDistance)
	cfg, err = s.Route("lane").Config()
	require.NoError(t, err)
	assert.Equal(t, route.InternalRounded, cfg.Mode)
	assert.False(t, cfg.Looped)
	assert.Equal(t, 1.0, cfg.EntryDistance)
	assert.Nil(t, s.Route("nowhere"))
}

func TestRouteBuild(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	c, err := s.Route("ring").Build()
	require.NoError(t, err)
	assert.Equal(t, 40.0, c.Length())
	assert.Equal(t, "a", c.W(0).Name)
	_, err = s.Route("lane").Build()
	assert.ErrorIs(t, err, route.ErrMissingWaypoint)
}

func TestAgentSettings(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	car := s.Agents[0].MotionConfig()
	assert.Equal(t, 4.0, car.LinearSpeed)
	assert.Equal(t, 10.0, car.AngularSpeed)
	assert.Equal(t, circuit.V(0, 1, 0), car.Offset)
	assert.Equal(t, 1.0, car.RayDistance)
	opts := s.Agents[0].FollowOptions()
	assert.True(t, opts.Repeat)
	assert.Equal(t, 0.0, opts.WaitMin)
	assert.Equal(t, 0.5, opts.WaitMax)
	bus := s.Agents[1]
	assert.False(t, bus.FollowOptions().Repeat)
	assert.Equal(t, motion.DefaultConfig(), bus.MotionConfig())
}

func TestZones(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	crossing := s.Zones[0].Zone()
	assert.Equal(t, 4, crossing.N())
	assert.True(t, crossing.Contains(circuit.V(5, 0, 0)))
	pond := s.Zones[1].Zone()
	assert.Equal(t, motion.Tag("Water"), pond.Tag)
	assert.Equal(t, 3, pond.N())
}

func TestSchemaRejects(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	bad := []string{
		"routes: [{name: r, waypoints: [{pos: [1, 2]}]}]",
		"routes: [{name: r, mode: hobby, waypoints: []}]",
		"routes: [{name: r, curve_smoothing_internal: 1, waypoints: []}]",
		"agents: [{name: a}]",
		"zones: [{id: z}]",
		"zones: [{id: z, box: [0, 0, 1, 1], polygon: [[0, 0], [1, 0], [0, 1]]}]",
		"sim: {dt: 0}",
		"colour: red",
	}
	for _, b := range bad {
		_, err := Parse([]byte(b))
		assert.ErrorIs(t, err, ErrSchema, b)
	}
	_, err := Parse([]byte("agents: [{name: a, route: missing}]"))
	assert.ErrorIs(t, err, ErrUnknownRoute)
	s, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDt, s.Sim.Dt)
}

func TestAuthoringEdits(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	r := s.Route("ring")
	require.NoError(t, r.MoveDown(0))
	assert.Equal(t, "b", r.Waypoints[0].Name)
	assert.Equal(t, "a", r.Waypoints[1].Name)
	require.NoError(t, r.MoveUp(1))
	assert.Equal(t, "a", r.Waypoints[0].Name)
	require.NoError(t, r.MoveUp(0))
	require.NoError(t, r.MoveDown(3))
	assert.Equal(t, "a", r.Waypoints[0].Name)
	require.NoError(t, r.Remove(1))
	assert.Len(t, r.Waypoints, 3)
	assert.Equal(t, "c", r.Waypoints[1].Name)
	assert.ErrorIs(t, r.Remove(3), ErrIndex)
	assert.ErrorIs(t, r.MoveUp(-1), ErrIndex)
	r.Rename()
	assert.Equal(t, "Waypoint 2", r.Waypoints[2].Name)
	lane := s.Route("lane")
	require.NoError(t, lane.Remove(1))
	c, err := lane.Build()
	require.NoError(t, err)
	assert.True(t, c.HasRoute())
}

func TestMarshalRoundTrip(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	out, err := Marshal(s)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o644))
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestSetupTracing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	defer trace2go.Teardown()
	assert.Equal(t, "Info", TraceConf("Info").GetString("trace.circuit.zone"))
	require.NoError(t, SetupTracing("Debug"))
	for _, key := range TraceKeys {
		assert.Equal(t, tracing.LevelDebug, tracing.Select(key).GetTraceLevel(), key)
	}
	sim := tracing.Select("circuit.sim")
	sim.SetTraceLevel(tracing.LevelError)
	assert.Equal(t, tracing.LevelError, tracing.Select("circuit.sim").GetTraceLevel(),
		"tracers are kept per key")
}
