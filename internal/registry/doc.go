// Package registry provides the glue between progress sink modules and the
// application.
//
// # Why Registry Exists
//
// A run publishes its progress to whatever sinks the operator asked for on
// the command line (`-progress log,print,socketio`). Each sink lives in its
// own module under modules/ and registers a named factory here. The app only
// knows sink names; it never imports a sink's transport directly.
//
// Registration happens once at startup. Registering the same name twice is a
// programmer error and panics.
package registry
