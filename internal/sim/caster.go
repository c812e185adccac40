package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit/motion"
)

// caster casts rays for one agent against the obstacles and the other
// agents of a world. Agents are moving obstacles.
type caster struct {
	world *World
	self  *Agent
}

func (c *caster) Raycast(origin, dir mgl64.Vec3, maxDist float64) (motion.Hit, bool) {
	var best motion.Hit
	found := false
	try := func(center mgl64.Vec3, radius float64, tag motion.Tag) {
		if d, ok := raySphere(origin, dir, center, radius); ok && d <= maxDist {
			if !found || d < best.Distance {
				best = motion.Hit{Tag: tag, Distance: d}
				found = true
			}
		}
	}
	for _, o := range c.world.obstacles {
		try(o.Pos, o.Radius, o.Tag)
	}
	for _, a := range c.world.agents {
		if a == c.self {
			continue
		}
		try(a.Body.Position(), a.Radius, motion.TagMovingObstacle)
	}
	return best, found
}

// raySphere returns the distance along dir to the first intersection of a
// ray with a sphere. Rays starting inside the sphere do not hit it.
// dir must have unit length.
func raySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	c := oc.Dot(oc) - radius*radius
	if c < 0 {
		return 0, false
	}
	b := oc.Dot(dir)
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	return -b - math.Sqrt(disc), true
}
