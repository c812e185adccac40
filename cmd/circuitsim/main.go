/*
Command circuitsim runs a circuit scenario.

	circuitsim -config scenario.yaml [-ticks n] [-track out.jsonl.zst] [-listen :8080] [-level Debug]

Agents are stepped with the scenario's fixed time delta until the tick count
is reached or every agent has stopped. Frames can be recorded to a
compressed track log and streamed to websocket clients at /ws/frames. When
streaming, ticks are paced in real time.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/npillmayer/circuit/internal/config"
	"github.com/npillmayer/circuit/internal/sim"
	"github.com/npillmayer/circuit/internal/tracklog"
	"github.com/npillmayer/circuit/internal/transport/ws"
	"github.com/npillmayer/schuko/tracing"
	"go.uber.org/multierr"
)

// tracer writes to trace with key 'circuit.sim'
func tracer() tracing.Trace {
	return tracing.Select("circuit.sim")
}

func main() {
	configPath := flag.String("config", "scenario.yaml", "scenario file")
	ticks := flag.Int("ticks", 0, "number of ticks; 0 takes the scenario's value")
	trackPath := flag.String("track", "", "write frames to this compressed track log")
	listen := flag.String("listen", "", "serve frames via websocket on this address")
	level := flag.String("level", "", "trace level (Debug, Info, Error); overrides the scenario")
	flag.Parse()

	if err := run(*configPath, *ticks, *trackPath, *listen, *level); err != nil {
		fmt.Fprintf(os.Stderr, "circuitsim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, ticks int, trackPath, listen, level string) (err error) {
	scenario, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if level == "" {
		level = scenario.Tracing.Level
	}
	if err := config.SetupTracing(level); err != nil {
		return err
	}
	if ticks <= 0 {
		ticks = scenario.Sim.Ticks
	}
	world, err := sim.FromScenario(scenario)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			tracer().Errorf("%v", e)
		}
		if len(world.Agents()) == 0 {
			return errors.New("no agent could be placed")
		}
	}

	var track *tracklog.Writer
	if trackPath != "" {
		if track, err = tracklog.Create(trackPath); err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, track.Close())
		}()
	}

	var hub *ws.Hub
	if listen != "" {
		hub = ws.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/ws/frames", hub)
		srv := &http.Server{Addr: listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				tracer().Errorf("server failed: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(ctx))
		}()
		tracer().Infof("streaming frames on ws://%s/ws/frames", listen)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return loop(ctx, world, scenario.Sim.Dt, ticks, track, hub)
}

func loop(ctx context.Context, world *sim.World, dt float64, ticks int, track *tracklog.Writer, hub *ws.Hub) error {
	var pace <-chan time.Time
	if hub != nil {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}
	for i := 0; i < ticks && !world.Done(); i++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		world.Step(dt)
		frame := world.Snapshot()
		if track != nil {
			if err := track.Write(frame); err != nil {
				return err
			}
		}
		if hub != nil {
			if err := hub.Broadcast(frame); err != nil {
				return err
			}
		}
	}
	for _, a := range world.Agents() {
		tracer().Infof("%s: %s at point %d, %d cycles", a.Name, a.Follower.State(), a.Follower.PointIndex(), a.Cycles)
	}
	tracer().Infof("%d ticks done", world.Tick())
	return nil
}
