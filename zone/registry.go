package zone

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/circuit/motion"
)

// ErrDuplicateZone is returned when registering a zone ID twice.
var ErrDuplicateZone = errors.New("duplicate zone")

// ErrOpenZone is returned when registering a zone with an open footprint.
var ErrOpenZone = errors.New("zone footprint is not closed")

// Registry holds zones by ID. Iteration is in ID order, so trigger
// notifications come out in the same order on every run.
type Registry struct {
	zones *treemap.Map // string -> *Zone
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{zones: treemap.NewWithStringComparator()}
}

// Add registers a closed zone.
func (r *Registry) Add(z *Zone) error {
	if !z.IsCycle() {
		return fmt.Errorf("%w: %s", ErrOpenZone, z.ID)
	}
	if _, found := r.zones.Get(z.ID); found {
		return fmt.Errorf("%w: %s", ErrDuplicateZone, z.ID)
	}
	r.zones.Put(z.ID, z)
	tracer().Debugf("registered zone %s", AsString(z))
	return nil
}

// Get returns the zone with the given ID.
func (r *Registry) Get(id string) (*Zone, bool) {
	v, found := r.zones.Get(id)
	if !found {
		return nil, false
	}
	return v.(*Zone), true
}

// Remove drops a zone and clears its gate. Agents still inside the zone get
// no exit notification.
func (r *Registry) Remove(id string) {
	if z, found := r.Get(id); found {
		z.Gate().SetBusy(false)
		r.zones.Remove(id)
	}
}

// Size returns the number of zones.
func (r *Registry) Size() int {
	return r.zones.Size()
}

// Zones returns all zones in ID order.
func (r *Registry) Zones() []*Zone {
	vals := r.zones.Values()
	zones := make([]*Zone, len(vals))
	for i, v := range vals {
		zones[i] = v.(*Zone)
	}
	return zones
}

// At returns the zones containing p, in ID order.
func (r *Registry) At(p mgl64.Vec3) []*Zone {
	var zones []*Zone
	it := r.zones.Iterator()
	for it.Next() {
		if z := it.Value().(*Zone); z.Contains(p) {
			zones = append(zones, z)
		}
	}
	return zones
}

// Overlapping returns the pairs of zones whose footprints intersect.
func (r *Registry) Overlapping() [][2]*Zone {
	zones := r.Zones()
	var pairs [][2]*Zone
	for i := 0; i < len(zones); i++ {
		for j := i + 1; j < len(zones); j++ {
			if zones[i].Overlaps(zones[j]) {
				pairs = append(pairs, [2]*Zone{zones[i], zones[j]})
			}
		}
	}
	return pairs
}

// TriggerHandler receives zone enter and exit notifications.
// motion.Actuator satisfies it.
type TriggerHandler interface {
	EnterZone(tag motion.Tag, flag motion.BusyFlag)
	ExitZone(tag motion.Tag, flag motion.BusyFlag)
}

// Tracker turns positions of one agent into zone enter and exit
// notifications.
type Tracker struct {
	registry *Registry
	inside   map[string]bool
}

// NewTracker creates a tracker for the zones of a registry.
func NewTracker(r *Registry) *Tracker {
	return &Tracker{registry: r, inside: make(map[string]bool)}
}

// Update reports the zones left and entered since the last update. Exits are
// reported before entries, each in ID order.
func (t *Tracker) Update(p mgl64.Vec3, h TriggerHandler) {
	now := make(map[string]bool)
	for _, z := range t.registry.At(p) {
		now[z.ID] = true
	}
	for _, z := range t.registry.Zones() {
		if t.inside[z.ID] && !now[z.ID] {
			tracer().Debugf("exit zone %s at %v", z.ID, p)
			h.ExitZone(z.Tag, z.Gate())
		}
	}
	for _, z := range t.registry.Zones() {
		if now[z.ID] && !t.inside[z.ID] {
			tracer().Debugf("enter zone %s at %v", z.ID, p)
			h.EnterZone(z.Tag, z.Gate())
		}
	}
	t.inside = now
}

// Inside is a predicate: was the agent inside zone id at the last update?
func (t *Tracker) Inside(id string) bool {
	return t.inside[id]
}
