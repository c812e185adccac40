package motion

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	pos mgl64.Vec3
	rot mgl64.Quat
}

func newBody(p mgl64.Vec3) *body {
	return &body{pos: p, rot: mgl64.QuatIdent()}
}

func (b *body) Position() mgl64.Vec3 { return b.pos }
func (b *body) SetPosition(p mgl64.Vec3) { b.pos = p }
func (b *body) Rotation() mgl64.Quat { return b.rot }
func (b *body) SetRotation(q mgl64.Quat) { b.rot = q }

// fixedCaster reports the same hit for every ray and remembers the last query.
type fixedCaster struct {
	hit     Hit
	ok      bool
	origin  mgl64.Vec3
	dir     mgl64.Vec3
	maxDist float64
}

func (c *fixedCaster) Raycast(origin, dir mgl64.Vec3, maxDist float64) (Hit, bool) {
	c.origin, c.dir, c.maxDist = origin, dir, maxDist
	return c.hit, c.ok
}

type flag struct {
	busy   bool
	writes int
}

func (f *flag) SetBusy(b bool) {
	f.busy = b
	f.writes++
}

func TestOffsetIsApplied(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := newBody(circuit.V(0, 0.5, 0))
	a := New(b, nil, DefaultConfig())
	assert.Equal(t, circuit.V(0, 0, 0), a.Position())
	a.Advance(circuit.V(0, 0, 0.5), 0.01)
	assert.InDelta(t, 0.1, b.pos[2], 1e-12)
	assert.InDelta(t, 0.5, b.pos[1], 1e-12)
}

func TestBoundedMotion(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := newBody(circuit.V(0, 0.5, 0))
	a := New(b, nil, DefaultConfig())
	target := circuit.V(7, 0, -3)
	const dt = 0.02
	last := circuit.Distance(a.Position(), target)
	for i := 0; i < 100; i++ {
		before := a.Position()
		a.Advance(target, dt)
		step := circuit.Distance(before, a.Position())
		assert.LessOrEqual(t, step, a.Config().LinearSpeed*dt+1e-12)
		d := circuit.Distance(a.Position(), target)
		assert.LessOrEqual(t, d, last+1e-12)
		last = d
	}
	assert.True(t, circuit.Equal(target, a.Position()))
}

func TestReachedReport(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := New(newBody(circuit.V(0, 0.5, 0)), nil, DefaultConfig())
	reached := 0
	a.SetReachedHandler(func() { reached++ })
	target := circuit.V(1, 0, 0)
	a.Advance(target, 0.05) // 0.5 left
	assert.Equal(t, 0, reached)
	a.Advance(target, 0.041) // 0.09 left
	assert.Equal(t, 1, reached)
	a.SetReachedHandler(nil)
	a.Advance(target, 0.05)
	assert.Equal(t, 1, reached)
}

func TestTurnsTowardTarget(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := newBody(circuit.V(0, 0.5, 0))
	cfg := DefaultConfig()
	cfg.LinearSpeed = 0.001
	a := New(b, nil, cfg)
	target := circuit.V(100, 0, 0)
	for i := 0; i < 200; i++ {
		a.Advance(target, 0.02)
	}
	fwd := circuit.ForwardOf(b.rot)
	assert.InDelta(t, 1.0, fwd[0], 1e-6)
	assert.InDelta(t, 0.0, fwd[1], 1e-6)
}

func TestNoTurnOnTarget(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := newBody(circuit.V(3, 0.5, 3))
	a := New(b, nil, DefaultConfig())
	a.Advance(circuit.V(3, 0, 3), 0.1)
	assert.Equal(t, mgl64.QuatIdent(), b.rot)
}

func TestSensing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := newBody(circuit.V(1, 0.5, 2))
	caster := &fixedCaster{}
	a := New(b, caster, DefaultConfig())
	a.Sense()
	assert.False(t, a.Blocked())
	// the ray starts at the raw body position and runs along its forward axis
	assert.Equal(t, b.pos, caster.origin)
	assert.True(t, circuit.Equal(circuit.Forward, caster.dir))
	assert.Equal(t, 1.0, caster.maxDist)
	caster.hit, caster.ok = Hit{Tag: TagObstacle, Distance: 0.5}, true
	a.Sense()
	assert.False(t, a.Blocked(), "static obstacles do not block")
	caster.hit = Hit{Tag: TagMovingObstacle, Distance: 0.5}
	a.Sense()
	assert.True(t, a.Blocked())
	caster.ok = false
	a.Sense()
	assert.False(t, a.Blocked())
}

func TestGatingFreezesBody(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	b := newBody(circuit.V(0, 0.5, 0))
	caster := &fixedCaster{hit: Hit{Tag: TagMovingObstacle, Distance: 0.3}, ok: true}
	a := New(b, caster, DefaultConfig())
	reached := 0
	a.SetReachedHandler(func() { reached++ })
	a.Sense()
	require.True(t, a.Blocked())
	pos, rot := b.pos, b.rot
	for _, target := range []mgl64.Vec3{circuit.V(0, 0, 0), circuit.V(5, 0, 5), circuit.V(-1, 2, 0)} {
		for i := 0; i < 10; i++ {
			a.Advance(target, 0.1)
		}
	}
	assert.Equal(t, pos, b.pos)
	assert.Equal(t, rot, b.rot)
	assert.Equal(t, 0, reached)
	caster.ok = false
	a.Sense()
	a.Advance(circuit.V(0, 0, 0), 0.1)
	assert.Equal(t, 1, reached)
}

func TestZoneFlags(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := New(newBody(circuit.V(0, 0, 0)), nil, DefaultConfig())
	f := &flag{}
	a.EnterZone(TagObstacle, f)
	assert.True(t, f.busy)
	a.ExitZone(TagObstacle, f)
	assert.False(t, f.busy)
	a.EnterZone(TagMovingObstacle, f)
	a.EnterZone("Water", f)
	assert.False(t, f.busy)
	assert.Equal(t, 2, f.writes)
	a.EnterZone(TagObstacle, nil)
}
