// Package canvas turns canvas gestures into graph store operations.
//
// Dropping a palette token creates a node: the drag payload names the node
// type, the drop point is projected through the viewport into graph
// coordinates, and the store allocates the id. Connections, moves and
// deletions are passed to the store unchanged.
package canvas
