/*
Command circuitdump prints the circuits of a scenario.

	circuitdump -config scenario.yaml [-route name] [-up i | -down i | -remove i] [-rename] [-write out.yaml]

For each route (or the one named) it prints the waypoints, the distance
table and the curve points, followed by the straight edges between the
waypoints. Waypoints can be moved up or down or removed before building;
-write saves the edited scenario. Zones are listed with overlapping pairs.
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/circuit"
	"github.com/npillmayer/circuit/internal/config"
	"github.com/npillmayer/circuit/route"
	"github.com/npillmayer/circuit/zone"
)

type edit struct {
	up, down, remove int
	rename           bool
}

func main() {
	configPath := flag.String("config", "scenario.yaml", "scenario file")
	routeName := flag.String("route", "", "only this route")
	up := flag.Int("up", -1, "move waypoint i up")
	down := flag.Int("down", -1, "move waypoint i down")
	remove := flag.Int("remove", -1, "remove waypoint i")
	rename := flag.Bool("rename", false, "name unnamed waypoints by index")
	writePath := flag.String("write", "", "write the edited scenario here")
	level := flag.String("level", "Error", "trace level")
	flag.Parse()

	if err := config.SetupTracing(*level); err != nil {
		fmt.Fprintf(os.Stderr, "circuitdump: %v\n", err)
		os.Exit(1)
	}
	e := edit{up: *up, down: *down, remove: *remove, rename: *rename}
	if err := run(os.Stdout, *configPath, *routeName, e, *writePath); err != nil {
		fmt.Fprintf(os.Stderr, "circuitdump: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, configPath, routeName string, e edit, writePath string) error {
	scenario, err := config.Load(configPath)
	if err != nil {
		return err
	}
	edited := e.up >= 0 || e.down >= 0 || e.remove >= 0 || e.rename
	if edited && routeName == "" {
		return fmt.Errorf("editing waypoints needs -route")
	}
	found := false
	for i := range scenario.Routes {
		r := &scenario.Routes[i]
		if routeName != "" && r.Name != routeName {
			continue
		}
		found = true
		if err := apply(r, e); err != nil {
			return fmt.Errorf("route %q: %w", r.Name, err)
		}
		if err := dump(out, r); err != nil {
			return fmt.Errorf("route %q: %w", r.Name, err)
		}
	}
	if routeName != "" && !found {
		return fmt.Errorf("%w %q", config.ErrUnknownRoute, routeName)
	}
	if err := dumpZones(out, scenario); err != nil {
		return err
	}
	if writePath != "" {
		b, err := config.Marshal(scenario)
		if err != nil {
			return err
		}
		return os.WriteFile(writePath, b, 0o644)
	}
	return nil
}

func apply(r *config.RouteSpec, e edit) error {
	if e.up >= 0 {
		if err := r.MoveUp(e.up); err != nil {
			return err
		}
	}
	if e.down >= 0 {
		if err := r.MoveDown(e.down); err != nil {
			return err
		}
	}
	if e.remove >= 0 {
		if err := r.Remove(e.remove); err != nil {
			return err
		}
	}
	if e.rename {
		r.Rename()
	}
	return nil
}

func dump(out io.Writer, r *config.RouteSpec) error {
	c, err := r.Build()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "route %s: %s, looped=%v, %d waypoints\n", r.Name, c.Config().Mode, c.IsLooped(), c.N())
	for i, w := range r.Waypoints {
		if w == nil {
			fmt.Fprintf(out, "  %2d: <missing>\n", i)
			continue
		}
		fmt.Fprintf(out, "  %2d: %-12s %s\n", i, w.Name, circuit.VString(w.Pos.V3()))
	}
	fmt.Fprintln(out, route.AsString(c))
	if !c.HasRoute() {
		fmt.Fprintln(out, "  no route")
		return nil
	}
	fmt.Fprintf(out, "  length %.4f\n", c.Length())
	for _, e := range route.PlainEdges(c) {
		fmt.Fprintf(out, "  edge %s -- %s\n", circuit.VString(e.From), circuit.VString(e.To))
	}
	return nil
}

func dumpZones(out io.Writer, s *config.Scenario) error {
	reg := zone.NewRegistry()
	for i := range s.Zones {
		if err := reg.Add(s.Zones[i].Zone()); err != nil {
			return err
		}
	}
	for _, z := range reg.Zones() {
		fmt.Fprintf(out, "zone %s\n", zone.AsString(z))
	}
	for _, pair := range reg.Overlapping() {
		fmt.Fprintf(out, "zones %s and %s overlap\n", pair[0].ID, pair[1].ID)
	}
	return nil
}
