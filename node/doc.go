// Package node adapts hosted generative-media endpoints to a visual
// workflow host.
//
// A model is described by a declarative [Spec] (endpoint, input slots,
// parameter schema, output slots, duration heuristic); every spec is run by
// the same generic [Executor]. Adding a model means adding a table entry in
// package catalog, not writing a new execution routine.
package node
