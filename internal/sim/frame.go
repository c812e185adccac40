package sim

import (
	"encoding/json"

	"github.com/npillmayer/circuit"
)

// Frame is the state of a world after a step.
type Frame struct {
	Tick   int          `json:"tick"`
	Time   float64      `json:"time"`
	Agents []AgentState `json:"agents"`
	Zones  []ZoneState  `json:"zones,omitempty"`
}

// AgentState is the state of one agent in a frame.
type AgentState struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Pos     [3]float64 `json:"pos"`
	Forward [3]float64 `json:"forward"`
	State   string     `json:"state"`
	Point   int        `json:"point"`
	Target  [3]float64 `json:"target"`
	Blocked bool       `json:"blocked,omitempty"`
	Cycles  int        `json:"cycles,omitempty"`
	Ended   bool       `json:"ended,omitempty"`
}

// ZoneState is the busy-flag of one zone in a frame.
type ZoneState struct {
	ID   string `json:"id"`
	Busy bool   `json:"busy"`
}

// Snapshot captures the current state of the world.
func (w *World) Snapshot() Frame {
	f := Frame{Tick: w.tick, Time: w.time, Agents: make([]AgentState, 0, len(w.agents))}
	for _, a := range w.agents {
		f.Agents = append(f.Agents, AgentState{
			ID:      a.ID,
			Name:    a.Name,
			Pos:     a.Actuator.Position(),
			Forward: circuit.ForwardOf(a.Body.Rotation()),
			State:   a.Follower.State().String(),
			Point:   a.Follower.PointIndex(),
			Target:  a.Follower.Target(),
			Blocked: a.Actuator.Blocked(),
			Cycles:  a.Cycles,
			Ended:   a.Ended,
		})
	}
	for _, z := range w.zones.Zones() {
		f.Zones = append(f.Zones, ZoneState{ID: z.ID, Busy: z.Busy()})
	}
	return f
}

// Map returns the frame as a tree of JSON values.
func (f Frame) Map() (map[string]any, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
