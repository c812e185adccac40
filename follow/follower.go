// Package follow implements the path-following state machine.
//
// A Follower owns the progress of one agent through a sequence of curve
// points. Each tick it hands the current target to its Mover; when the mover
// reports the target reached, the follower advances to the next point, or
// ends or repeats the cycle at the end of the sequence.
//
// The mover's reached report only latches. The follower applies it after the
// mover's Advance has returned, within the same tick, so the follower's state
// is never mutated from inside the mover.
package follow

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit/route"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'circuit.follow'
func tracer() tracing.Trace {
	return tracing.Select("circuit.follow")
}

// ErrNoRoute is returned when starting a follower on an empty point sequence.
var ErrNoRoute = errors.New("no route configured")

// State is the state of a follower.
type State int

// Follower states. Stopped is reached from Driving at the end of a path when
// repeating is off, or by halting the follower.
const (
	Driving State = iota
	Waiting
	Stopped
)

func (s State) String() string {
	switch s {
	case Driving:
		return "driving"
	case Waiting:
		return "waiting"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Mover moves an agent toward a target. It reports arrival through a single
// handler, registered by the follower on Start and removed on Stop.
type Mover interface {
	Advance(target mgl64.Vec3, dt float64)
	SetReachedHandler(h func()) // nil removes the handler
}

// Options configure a follower.
type Options struct {
	Looped      bool    // the route is closed
	Repeat      bool    // start over at the end of the points instead of stopping
	WaitAtStart bool    // begin in the Waiting state
	WaitMin     float64 // lower bound of a random wait, seconds
	WaitMax     float64 // upper bound (exclusive) of a random wait, seconds
	Rand        *rand.Rand

	OnPathEnded     func() // fired once when the path ends
	OnCycleRepeated func() // fired each time the cycle starts over
}

// DefaultOptions returns options for a repeating follower with a random wait
// of 1 to 5 seconds.
func DefaultOptions() Options {
	return Options{
		Repeat:  true,
		WaitMin: 1,
		WaitMax: 5,
	}
}

// Follower is the path-following state machine of one agent.
type Follower struct {
	points     []mgl64.Vec3
	mover      Mover
	opts       Options
	pointIndex int
	target     mgl64.Vec3
	waitTimer  float64
	driving    bool
	waiting    bool
	ended      bool // path ended, Stopped for good
	reached    bool // latched by the mover
	started    bool
	attached   bool
}

// New creates a follower for a sequence of points. The sequence is not
// copied and must not be changed afterwards.
func New(points []mgl64.Vec3, mover Mover, opts Options) *Follower {
	f := &Follower{
		points:  points,
		mover:   mover,
		opts:    opts,
		driving: true,
		waiting: opts.WaitAtStart,
	}
	f.waitTimer = f.randomWait()
	return f
}

// ForCircuit creates a follower for the curve points of a built circuit.
func ForCircuit(c *route.Circuit, mover Mover, opts Options) *Follower {
	opts.Looped = c.IsLooped()
	return New(c.CurvePoints(), mover, opts)
}

// Start attaches the follower to its mover. The first start targets the
// first point. Starting on an empty sequence fails with ErrNoRoute.
func (f *Follower) Start() error {
	if len(f.points) == 0 {
		return ErrNoRoute
	}
	if !f.started {
		f.pointIndex = 0
		f.target = f.points[0]
		f.started = true
		tracer().Infof("follower started on %d points, looped=%v, repeat=%v",
			len(f.points), f.opts.Looped, f.opts.Repeat)
	}
	if !f.attached {
		f.mover.SetReachedHandler(f.onReached)
		f.attached = true
	}
	return nil
}

// Stop detaches the follower from its mover. Progress is kept; a later
// Start continues where the follower stopped.
func (f *Follower) Stop() {
	if f.attached {
		f.mover.SetReachedHandler(nil)
		f.attached = false
	}
	f.reached = false
}

func (f *Follower) onReached() {
	f.reached = true
}

// Tick advances the follower by dt seconds.
func (f *Follower) Tick(dt float64) {
	if !f.attached || !f.driving {
		return
	}
	if f.waiting {
		f.waitTimer -= dt
		if f.waitTimer < 0 {
			f.waiting = false
			tracer().Debugf("wait over, driving on to point %d", f.pointIndex)
		}
		return
	}
	f.mover.Advance(f.target, dt)
	if f.reached {
		f.reached = false
		f.nextPoint()
	}
}

// nextPoint advances the point index. Looped and open routes advance alike:
// the points of a looped route already close the loop, and the last index
// ends the cycle instead of wrapping.
func (f *Follower) nextPoint() {
	if f.pointIndex >= len(f.points)-1 {
		f.endOfCycle()
		return
	}
	f.pointIndex++
	f.target = f.points[f.pointIndex]
}

// endOfCycle starts over or ends the path. On repeat the target is left as
// it is: the agent confirms the old target once more before the next reached
// report moves it on to point 1.
func (f *Follower) endOfCycle() {
	if f.opts.Repeat {
		f.pointIndex = 0
		tracer().Infof("cycle repeated")
		if f.opts.OnCycleRepeated != nil {
			f.opts.OnCycleRepeated()
		}
		return
	}
	f.driving = false
	f.ended = true
	tracer().Infof("path ended at point %d", f.pointIndex)
	if f.opts.OnPathEnded != nil {
		f.opts.OnPathEnded()
	}
}

// Wait pauses the follower for d seconds. Waiting can interrupt the route
// anywhere.
func (f *Follower) Wait(d float64) {
	f.waitTimer = d
	f.waiting = true
}

// WaitRandom pauses the follower for a random duration within the
// configured wait range.
func (f *Follower) WaitRandom() {
	f.Wait(f.randomWait())
}

// Halt clears the driving flag. Nothing is emitted.
func (f *Follower) Halt() {
	f.driving = false
}

// Resume sets the driving flag again. A follower whose path has ended
// stays stopped.
func (f *Follower) Resume() {
	if f.ended {
		return
	}
	f.driving = true
}

// HasEnded is a predicate: has the path ended?
func (f *Follower) HasEnded() bool {
	return f.ended
}

func (f *Follower) randomWait() float64 {
	lo, hi := f.opts.WaitMin, f.opts.WaitMax
	if hi <= lo {
		return lo
	}
	var r float64
	if f.opts.Rand != nil {
		r = f.opts.Rand.Float64()
	} else {
		r = rand.Float64()
	}
	return lo + r*(hi-lo)
}

// State returns the current state.
func (f *Follower) State() State {
	switch {
	case !f.driving:
		return Stopped
	case f.waiting:
		return Waiting
	}
	return Driving
}

// PointIndex returns the index of the current point.
func (f *Follower) PointIndex() int {
	return f.pointIndex
}

// Target returns the position currently driven to.
func (f *Follower) Target() mgl64.Vec3 {
	return f.target
}

// WaitTimer returns the remaining wait time. It may be negative after a wait.
func (f *Follower) WaitTimer() float64 {
	return f.waitTimer
}

// IsLooping is a predicate: does the follower run on a closed route?
func (f *Follower) IsLooping() bool {
	return f.opts.Looped
}

// IsRepeating is a predicate: does the follower start over at the end?
func (f *Follower) IsRepeating() bool {
	return f.opts.Repeat
}

// Len returns the number of points.
func (f *Follower) Len() int {
	return len(f.points)
}
