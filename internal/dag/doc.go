// Package dag is the planning layer of the application. It normalizes a
// user-edited pipeline graph, works out which nodes a run starting at a given
// node will reach, and linearizes that reachable subgraph into the order the
// executor drives the steps in.
//
// # Determinism
//
// The run order depends only on the node list's insertion order and the set
// of sanitized edges. Whenever several nodes are ready at once, the one that
// appears first in the node list runs first. Edge insertion order never
// influences the result, so two canvases that differ only in how their
// connections were drawn always run identically.
//
// # Cycles
//
// Only the reachable subgraph must be acyclic. A cycle elsewhere on the
// canvas does not prevent running from a start node that cannot reach it.
package dag
