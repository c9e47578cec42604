/*
Package domain contains the core records of the pipeline editor.

It defines the entities the canvas works with: node and edge records, the
typed per-node data bags, the change sets emitted by the canvas, and the
validation service's reply. This package is kept pure and free of external
I/O; the only dependency is mapstructure, used to coerce raw control values
into the typed data bags.

# Key Entities

  - NodeRecord: a node on the canvas (id, type, position, data).
  - EdgeRecord: a directed connection between two handles.
  - NodeData: the data bag of a node, one typed variant per node type.
  - NodeChange / EdgeChange: canvas mutations (move, select, remove).
  - ParseResult: the external validator's analysis of a submitted graph.
*/
package domain
