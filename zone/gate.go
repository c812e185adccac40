package zone

import (
	"sync/atomic"

	"github.com/npillmayer/circuit/motion"
)

var _ motion.BusyFlag = (*Gate)(nil)

// Gate is the busy-flag of an obstacle zone.
//
// A gate has a single writer at a time: the actuator of the agent inside the
// zone. Any number of readers may poll it. Loads and stores are atomic, so a
// host running agents on several goroutines reads consistent values, but it
// still has to make sure that only one agent writes a gate per tick.
type Gate struct {
	busy atomic.Bool
}

// Busy is a predicate: is the zone occupied?
func (g *Gate) Busy() bool {
	return g.busy.Load()
}

// SetBusy sets the flag. It satisfies motion.BusyFlag.
func (g *Gate) SetBusy(b bool) {
	if g.busy.Swap(b) != b {
		tracer().Debugf("gate busy=%v", b)
	}
}
