package route

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'circuit.route'
func tracer() tracing.Trace {
	return tracing.Select("circuit.route")
}

// Step width of the forward difference used for route directions.
const directionStep = 0.1

var (
	// ErrInvalidConfig indicates a route configuration out of range.
	ErrInvalidConfig = errors.New("invalid route configuration")
	// ErrMissingWaypoint indicates a nil waypoint where a position is required.
	ErrMissingWaypoint = errors.New("route has missing waypoint")
	// ErrUnknownMode indicates an unparsable interpolation mode name.
	ErrUnknownMode = errors.New("unknown route mode")
)

// Mode selects how curve points are interpolated from waypoints.
type Mode int

// Interpolation modes.
const (
	Plain           Mode = iota // straight segments between waypoints
	InternalRounded             // corners cut by quadratic Bézier curves
	ExternalSpline              // Catmull-Rom spline through the waypoints
)

func (m Mode) String() string {
	switch m {
	case Plain:
		return "plain"
	case InternalRounded:
		return "internal"
	case ExternalSpline:
		return "external"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode returns the mode for a name as produced by Mode.String.
// Long forms "internal-rounded" and "external-spline" are accepted as well.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "":
		return Plain, nil
	case "internal", "internal-rounded":
		return InternalRounded, nil
	case "external", "external-spline", "spline":
		return ExternalSpline, nil
	}
	return Plain, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Config is the configuration of a route.
type Config struct {
	Mode                   Mode
	Looped                 bool    // close the route from the last waypoint back to the first
	EntryDistance          float64 // reach of a rounded corner toward the next waypoint
	ExitDistance           float64 // reach of a rounded corner toward the previous waypoint
	CurveSmoothing         int     // sample count of the spline
	CurveSmoothingInternal int     // samples per rounded corner
}

// DefaultConfig returns a looped plain route with the customary curve parameters.
func DefaultConfig() Config {
	return Config{
		Mode:                   Plain,
		Looped:                 true,
		EntryDistance:          2,
		ExitDistance:           2,
		CurveSmoothing:         50,
		CurveSmoothingInternal: 10,
	}
}

// Validate checks the configuration for values no curve can be built from.
func (cfg Config) Validate() error {
	switch cfg.Mode {
	case Plain, InternalRounded, ExternalSpline:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidConfig, cfg.Mode)
	}
	if cfg.EntryDistance < 0 || cfg.ExitDistance < 0 {
		return fmt.Errorf("%w: corner distances must not be negative", ErrInvalidConfig)
	}
	if cfg.Mode == ExternalSpline && cfg.CurveSmoothing < 1 {
		return fmt.Errorf("%w: curve smoothing %d < 1", ErrInvalidConfig, cfg.CurveSmoothing)
	}
	if cfg.Mode == InternalRounded && cfg.CurveSmoothingInternal < 2 {
		return fmt.Errorf("%w: internal curve smoothing %d < 2", ErrInvalidConfig,
			cfg.CurveSmoothingInternal)
	}
	return nil
}

// Waypoint is an authored control point of a route.
type Waypoint struct {
	Name     string
	Position mgl64.Vec3
}

// W is a quick notation for an unnamed waypoint.
func W(x, y, z float64) *Waypoint {
	return &Waypoint{Position: mgl64.Vec3{x, y, z}}
}

// RoutePoint is a position on a route together with the route's direction there.
type RoutePoint struct {
	Position  mgl64.Vec3
	Direction mgl64.Vec3
}
