// Package chaos drives synthetic road obstructions in a running SUMO
// traffic simulation and reports aggregate traffic metrics.
//
// # Reading Guide
//
// Start with these three files to understand the controller:
//   - obstruction.go: the Obstruction entity and the per-type effect records
//   - controller.go: the registry, apply/revert mutations, lifecycle
//   - repl.go: the interactive command loop
//
// # Architecture
//
// The controller never touches the simulation directly; every engine
// call goes through the Engine interface (engine.go). The production
// implementation lives in chaos/traci and speaks the TraCI wire
// protocol to a SUMO process it launches and owns. Tests substitute an
// in-memory double.
//
// Everything is single-threaded and synchronous: each command completes
// its engine round-trips before the next prompt is shown. The only
// managed resource is the engine connection, scoped by Start/Stop.
package chaos
