package route

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit"
)

// curveStrategy is the per-mode part of building and sampling a route.
// A strategy is selected once, from Config.Mode.
type curveStrategy interface {
	segmentInterpolator
	curvePoints(c *Circuit) ([]mgl64.Vec3, error)
}

// segmentInterpolator interpolates within the table segment ending at index.
type segmentInterpolator interface {
	interpolate(t DistanceTable, index int, i float64) mgl64.Vec3
}

func strategyFor(mode Mode) curveStrategy {
	switch mode {
	case InternalRounded:
		return roundedCurve{}
	case ExternalSpline:
		return splineCurve{}
	}
	return plainCurve{}
}

// --- Plain -----------------------------------------------------------------

type plainCurve struct{}

func (plainCurve) curvePoints(c *Circuit) ([]mgl64.Vec3, error) {
	points := make([]mgl64.Vec3, 0, len(c.waypoints))
	for n, w := range c.waypoints {
		if w == nil {
			return nil, fmt.Errorf("%w at index %d", ErrMissingWaypoint, n)
		}
		points = append(points, w.Position)
	}
	return points, nil
}

func (plainCurve) interpolate(t DistanceTable, index int, i float64) mgl64.Vec3 {
	return lerpSegment(t, index, i)
}

func lerpSegment(t DistanceTable, index int, i float64) mgl64.Vec3 {
	n := t.N()
	p1 := (index - 1 + n) % n
	return circuit.LerpV(t.Points[p1], t.Points[index], i)
}

// --- Internal rounded ------------------------------------------------------

type roundedCurve struct{}

// curvePoints cuts every corner with a quadratic Bézier curve. A corner n
// runs from curveStart (toward waypoint n+1) over waypoint n to curveEnd
// (toward waypoint n-1); the samples of each corner are emitted in reverse,
// from curveEnd to curveStart.
//
// Open routes skip the first corner and clamp the last corner's next index.
// The previous index of corner 0 always wraps to N-1.
func (roundedCurve) curvePoints(c *Circuit) ([]mgl64.Vec3, error) {
	n := len(c.waypoints)
	cfg := c.config
	k := cfg.CurveSmoothingInternal
	points := make([]mgl64.Vec3, 0, n*k)
	for corner := 0; corner < n; corner++ {
		if !cfg.Looped && corner == 0 {
			continue
		}
		next, prev := corner+1, corner-1
		if prev < 0 {
			prev = n - 1
		}
		if next >= n {
			if cfg.Looped {
				next = 0
			} else {
				next = n - 1
			}
		}
		for _, ix := range [...]int{corner, next, prev} {
			if c.waypoints[ix] == nil {
				return nil, fmt.Errorf("%w at index %d", ErrMissingWaypoint, ix)
			}
		}
		current := c.waypoints[corner].Position
		curveStart := circuit.MoveTowards(current, c.waypoints[next].Position, cfg.EntryDistance)
		curveEnd := circuit.MoveTowards(current, c.waypoints[prev].Position, cfg.ExitDistance)
		buffer := make([]mgl64.Vec3, k)
		for a := 0; a < k; a++ {
			t := float64(a) / float64(k-1)
			buffer[k-1-a] = QuadraticBezier(curveStart, current, curveEnd, t)
		}
		points = append(points, buffer...)
	}
	return points, nil
}

func (roundedCurve) interpolate(t DistanceTable, index int, i float64) mgl64.Vec3 {
	return lerpSegment(t, index, i)
}

// --- External spline -------------------------------------------------------

type splineCurve struct{}

// curvePoints walks the route in CurveSmoothing equal steps of distance.
func (splineCurve) curvePoints(c *Circuit) ([]mgl64.Vec3, error) {
	length := c.sampler.Length()
	step := length / float64(c.config.CurveSmoothing)
	points := make([]mgl64.Vec3, 0, c.config.CurveSmoothing+1)
	for dist := 0.0; dist < length; dist += step {
		points = append(points, c.sampler.GetRoutePosition(dist))
	}
	return points, nil
}

func (splineCurve) interpolate(t DistanceTable, index int, i float64) mgl64.Vec3 {
	n := t.N()
	p0 := (index - 2 + n) % n
	p1 := (index - 1 + n) % n
	p2 := index % n
	p3 := (index + 1) % n
	return CatmullRom(t.Points[p0], t.Points[p1], t.Points[p2], t.Points[p3], i)
}
