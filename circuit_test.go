package circuit

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestNumericBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := 0.000000008
	if !Is0(a) {
		t.Errorf("Expected a to be zero, is not")
	}
	if Zap(a) != 0 {
		t.Errorf("Expected Zap(a) to be 0, is %g", Zap(a))
	}
}

func TestInverseLerp(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.InDelta(t, 0.25, InverseLerp(0, 4, 1), 1e-12)
	assert.InDelta(t, 1.0, InverseLerp(0, 4, 9), 1e-12)
	assert.InDelta(t, 0.0, InverseLerp(0, 4, -1), 1e-12)
	assert.Equal(t, 0.0, InverseLerp(3, 3, 3))
	// reversed bounds, as used when the scan wraps past the last table entry
	assert.InDelta(t, 1.0, InverseLerp(7, 0, 0), 1e-12)
}

func TestRepeat(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.InDelta(t, 1.5, Repeat(11.5, 10), 1e-12)
	assert.InDelta(t, 8.0, Repeat(-2, 10), 1e-12)
	assert.InDelta(t, 0.0, Repeat(20, 10), 1e-12)
}

func TestMoveTowardsNeverOvershoots(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	from, to := V(0, 0, 0), V(3, 0, 4)
	p := MoveTowards(from, to, 2)
	assert.InDelta(t, 2.0, Distance(from, p), 1e-9)
	p = MoveTowards(p, to, 10)
	if !Equal(p, to) {
		t.Errorf("Expected to land on target, is %s", VString(p))
	}
}

func TestNormalizedNullVector(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	if !IsZero(Normalized(V(0, 0, 0))) {
		t.Errorf("Expected null vector to stay null")
	}
	assert.InDelta(t, 1.0, Normalized(V(0, 3, 4)).Len(), 1e-12)
}

func TestLookRotation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	dirs := []struct{ x, y, z float64 }{
		{1, 0, 0}, {0, 0, 1}, {0, 0, -1}, {-1, 0, 1}, {1, 1, 1}, {0, 1, 0},
	}
	for _, d := range dirs {
		dir := V(d.x, d.y, d.z)
		q := LookRotation(dir, Up)
		fwd := ForwardOf(q)
		if fwd.Sub(Normalized(dir)).Len() > 1e-6 {
			t.Errorf("look rotation along %s faces %s", VString(dir), VString(fwd))
		}
	}
	if ForwardOf(LookRotation(V(0, 0, 0), Up)).Sub(Forward).Len() > 1e-9 {
		t.Errorf("Expected identity for null direction")
	}
}

func TestRotateTowardsClamps(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	q2 := LookRotation(V(1, 0, 0), Up)
	q := RotateTowards(LookRotation(Forward, Up), q2, 5)
	assert.True(t, q.OrientationEqualThreshold(q2, 1e-6))
	half := RotateTowards(LookRotation(Forward, Up), q2, 0.5)
	angle := math.Acos(ForwardOf(half).Dot(Forward))
	assert.InDelta(t, math.Pi/4, angle, 1e-6)
}
