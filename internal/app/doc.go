// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// A run goes through four phases: load the pipeline document, plan the
// steps reachable from the start node, optionally export the canvas, and
// hand the plan to the executor with the configured progress sinks. Every
// phase logs through the logger carried in the context.
package app
