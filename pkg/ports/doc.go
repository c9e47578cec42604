/*
Package ports defines the driven ports (interfaces) of the pipeline editor.

These interfaces decouple the canvas, renderers and submission flow from the
concrete graph store, so the store can be swapped (in-memory, shared id
allocation in Redis, a test double) without touching the core.

# Key Interfaces

  - GraphStore: the single source of truth for nodes and edges.
  - IDAllocator: hands out unique node ids per node type.
  - HandleResolver: tells the store which role a handle plays on a node.
*/
package ports
