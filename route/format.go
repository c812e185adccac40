package route

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// AsString returns a circuit as a (debugging) string. The first line lists
// the waypoints; missing waypoints are shown as "<missing>". For a built
// circuit the distance table and the curve points follow, one per line.
//
// Example, a closed plain triangle:
//
//	(0,0,0) .. (4,0,0) .. (4,0,3) .. cycle
//	  table  0: (0,0,0) @ 0.0000
//	  table  1: (4,0,0) @ 4.0000
//	  table  2: (4,0,3) @ 7.0000
//	  table  3: (0,0,0) @ 12.0000
//	  curve  0: (0.0000,0.0000,0.0000)
//	  curve  1: (4.0000,0.0000,0.0000)
//	  curve  2: (4.0000,0.0000,3.0000)
func AsString(c *Circuit) string {
	var b strings.Builder
	for i, w := range c.waypoints {
		if i > 0 {
			b.WriteString(" .. ")
		}
		if w == nil {
			b.WriteString("<missing>")
			continue
		}
		b.WriteString(ptstring(w.Position, false))
	}
	if c.IsLooped() {
		b.WriteString(" .. cycle")
	}
	if !c.built {
		return b.String()
	}
	for i := range c.table.Points {
		fmt.Fprintf(&b, "\n  table %2d: %s @ %.4f", i, ptstring(c.table.Points[i], false),
			c.table.Distances[i])
	}
	for i, p := range c.curve {
		fmt.Fprintf(&b, "\n  curve %2d: %s", i, ptstring(p, true))
	}
	return b.String()
}

// Edge is a straight connection between two positions.
type Edge struct {
	From, To mgl64.Vec3
}

// PlainEdges returns the straight polyline through the waypoints, closed for
// looped circuits. Missing waypoints interrupt the polyline.
func PlainEdges(c *Circuit) []Edge {
	n := len(c.waypoints)
	if n < 2 {
		return nil
	}
	edges := make([]Edge, 0, n)
	for i := 0; i < n; i++ {
		next := i + 1
		if next >= n {
			if !c.IsLooped() {
				break
			}
			next = 0
		}
		w1, w2 := c.waypoints[i], c.waypoints[next]
		if w1 == nil || w2 == nil {
			continue
		}
		edges = append(edges, Edge{From: w1.Position, To: w2.Position})
	}
	return edges
}

func ptstring(p mgl64.Vec3, precise bool) string {
	if precise {
		return fmt.Sprintf("(%.4f,%.4f,%.4f)", round(p[0]), round(p[1]), round(p[2]))
	}
	return fmt.Sprintf("(%.4g,%.4g,%.4g)", round(p[0]), round(p[1]), round(p[2]))
}

func round(x float64) float64 {
	if x >= 0 {
		return float64(int64(x*10000.0+0.5)) / 10000.0
	}
	return float64(int64(x*10000.0-0.5)) / 10000.0
}
