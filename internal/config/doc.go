// Package config defines the format-agnostic pipeline document, the Loader
// interface every document format implements, and the dispatch that picks a
// loader from a path.
//
// The config.Document is the single input of the planner: whatever the
// source format, the nodes keep the order they were declared in, because that
// order breaks ties when ordering a run.
package config
