/*
Package zone holds obstacle zones: ground footprints with a busy-flag.

A zone is a closed polygon in the x-z plane, unbounded in height. Agents
entering a zone tagged motion.TagObstacle mark it busy, leaving it marks it
free. Other agents read the flag to decide whether to hold back.

Zones are built the same way as paths elsewhere in this module:

	z := zone.NullZone("crossing").Knot(0, 0).Knot(4, 0).Knot(4, 3).Cycle()

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package zone

import (
	"bytes"
	"fmt"
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit/motion"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'circuit.zone'
func tracer() tracing.Trace {
	return tracing.Select("circuit.zone")
}

// L is a shortcut for the zone tracer.
func L() tracing.Trace {
	return tracer()
}

// Zone is a tagged footprint with a busy-flag.
type Zone struct {
	ID        string
	Tag       motion.Tag
	footprint polyclip.Contour
	cycle     bool
	gate      Gate
}

// NullZone starts an empty zone, tagged as a static obstacle.
func NullZone(id string) *Zone {
	return &Zone{ID: id, Tag: motion.TagObstacle}
}

// Box creates a rectangular zone from two opposite corners (x,z).
func Box(id string, x0, z0, x1, z1 float64) *Zone {
	return NullZone(id).Knot(x0, z0).Knot(x1, z0).Knot(x1, z1).Knot(x0, z1).Cycle()
}

// Knot appends a corner (x,z) to the footprint. Adding corners to a closed
// zone panics.
func (z *Zone) Knot(x, zz float64) *Zone {
	if z.cycle {
		panic("zone: cannot add corners to a closed footprint")
	}
	z.footprint.Add(polyclip.Point{X: x, Y: zz})
	return z
}

// Tagged sets the tag of a zone.
func (z *Zone) Tagged(tag motion.Tag) *Zone {
	z.Tag = tag
	return z
}

// Cycle closes the footprint. Footprints need at least 3 corners.
func (z *Zone) Cycle() *Zone {
	if len(z.footprint) < 3 {
		panic(fmt.Sprintf("zone %q: footprint needs 3 corners, has %d", z.ID, len(z.footprint)))
	}
	z.cycle = true
	return z
}

// N returns the number of corners.
func (z *Zone) N() int {
	return len(z.footprint)
}

// IsCycle is a predicate: is the footprint closed?
func (z *Zone) IsCycle() bool {
	return z.cycle
}

// Corner returns corner i as a point at height 0.
func (z *Zone) Corner(i int) mgl64.Vec3 {
	p := z.footprint[i]
	return mgl64.Vec3{p.X, 0, p.Y}
}

// Gate returns the zone's busy-flag.
func (z *Zone) Gate() *Gate {
	return &z.gate
}

// Busy is a predicate: does an agent currently occupy the zone?
func (z *Zone) Busy() bool {
	return z.gate.Busy()
}

// Contains is a predicate: is p above or below the footprint?
func (z *Zone) Contains(p mgl64.Vec3) bool {
	if !z.cycle {
		return false
	}
	bb := z.footprint.BoundingBox()
	if p[0] < bb.Min.X || p[0] > bb.Max.X || p[2] < bb.Min.Y || p[2] > bb.Max.Y {
		return false
	}
	return z.footprint.Contains(polyclip.Point{X: p[0], Y: p[2]})
}

// Overlaps is a predicate: do the footprints of two zones intersect?
func (z *Zone) Overlaps(other *Zone) bool {
	if !z.cycle || !other.cycle {
		return false
	}
	a := z.footprint.BoundingBox()
	b := other.footprint.BoundingBox()
	if a.Max.X < b.Min.X || b.Max.X < a.Min.X || a.Max.Y < b.Min.Y || b.Max.Y < a.Min.Y {
		return false
	}
	subject := polyclip.Polygon{z.footprint}
	clipping := polyclip.Polygon{other.footprint}
	return area(subject.Construct(polyclip.INTERSECTION, clipping)) > 1e-9
}

func area(pg polyclip.Polygon) float64 {
	var a float64
	for _, c := range pg {
		var s float64
		for i := range c {
			j := (i + 1) % len(c)
			s += c[i].X*c[j].Y - c[j].X*c[i].Y
		}
		a += math.Abs(s) / 2
	}
	return a
}

// AsString returns a zone in human-readable form.
func AsString(z *Zone) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s[%s] ", z.ID, z.Tag)
	for i, p := range z.footprint {
		if i > 0 {
			buf.WriteString(" -- ")
		}
		buf.WriteString(ptstring(p))
	}
	if z.cycle {
		buf.WriteString(" -- cycle")
	}
	return buf.String()
}

func ptstring(p polyclip.Point) string {
	return fmt.Sprintf("(%g,%g)", round(p.X), round(p.Y))
}

func round(x float64) float64 {
	return math.Round(x*10000) / 10000
}
