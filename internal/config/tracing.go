package config

import (
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

// TraceKeys are the tracer keys used by the packages of this module.
var TraceKeys = []string{
	"circuit",
	"circuit.route",
	"circuit.follow",
	"circuit.motion",
	"circuit.zone",
	"circuit.sim",
	"circuit.ws",
}

// TraceConf is the tracing configuration for level: every key in TraceKeys
// traces through a Go logger at this level.
func TraceConf(level string) testconfig.Conf {
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.root":      level,
	}
	for _, key := range TraceKeys {
		conf["trace."+key] = level
	}
	return conf
}

// SetupTracing installs a tracer per key in TraceKeys, all at level.
// It should be called once, before anything traces.
func SetupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), true)
	if err := trace2go.ConfigureRoot(TraceConf(level), "trace"); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}
