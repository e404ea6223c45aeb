// Package main hosts the splitripper CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon API: queue management, processing control,
// progress inspection, and configuration scaffolding. Heavy lifting lives in
// the internal packages; commands stay declarative.
package main
