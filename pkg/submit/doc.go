// Package submit sends the canvas graph to the external validation service
// and turns its answer into a dialog.
//
// The service decides whether the graph is a DAG; this package only
// serializes the graph, reports transport and status failures, and formats
// the result. Submissions never modify the graph.
package submit
