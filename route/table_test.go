package route

import (
	"testing"

	"github.com/npillmayer/circuit"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func triangle() []*Waypoint {
	return []*Waypoint{W(0, 0, 0), W(4, 0, 0), W(4, 0, 3)}
}

func TestDistanceTableTriangle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	table := BuildDistanceTable(triangle())
	assert.Equal(t, 3, table.N())
	assert.Len(t, table.Points, 4)
	assert.Equal(t, []float64{0, 4, 7, 12}, table.Distances)
	if !circuit.Equal(table.Points[3], table.Points[0]) {
		t.Errorf("Expected last table point to wrap to waypoint 0, is %s", circuit.VString(table.Points[3]))
	}
	assert.Equal(t, 12.0, table.Length(true))
	assert.Equal(t, 7.0, table.Length(false))
}

func TestDistanceTableNonDecreasing(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ws := []*Waypoint{W(0, 0, 0), W(3, 1, 0), W(-2, 5, 2), W(7, 7, 7), W(1, 0, 9)}
	table := BuildDistanceTable(ws)
	for i := 1; i < len(table.Distances); i++ {
		assert.GreaterOrEqual(t, table.Distances[i], table.Distances[i-1])
	}
}

func TestDistanceTableMissingWaypoint(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	ws := []*Waypoint{W(0, 0, 0), W(4, 0, 0), nil, W(0, 0, 3)}
	table := BuildDistanceTable(ws)
	// pairs 1-2 and 2-3 are skipped: their entries keep the zero value and
	// do not add to the running length
	assert.Equal(t, []float64{0, 0, 0, 4, 7}, table.Distances)
	if !circuit.IsZero(table.Points[1]) || !circuit.IsZero(table.Points[2]) {
		t.Errorf("Expected skipped table points to stay unset")
	}
	if !circuit.Equal(table.Points[3], circuit.V(0, 0, 3)) {
		t.Errorf("Expected table point 3 to be waypoint 3, is %s", circuit.VString(table.Points[3]))
	}
}

func TestDistanceTableEmpty(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	table := BuildDistanceTable(nil)
	assert.Equal(t, 0, table.N())
	assert.Equal(t, 0.0, table.Length(true))
}
