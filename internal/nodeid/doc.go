// internal/nodeid/doc.go

/*
Package nodeid validates the identifiers carried by pipeline nodes, edges and
external tasks, and provides the identifier generators the rest of the system
uses when it has to mint one.

Generators are always injected as explicit dependencies. A Sequence produces
reproducible identifiers such as `forge-task-1`, `forge-task-2`, which keeps
tests and dry runs deterministic; UUIDGenerator is the production choice when
identifiers must be unique across processes.
*/
package nodeid
