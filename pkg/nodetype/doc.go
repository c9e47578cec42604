// Package nodetype holds the declarative node-type configurations.
//
// A Config is a pure description: title, icon, ordered fields and handles,
// and style. One generic renderer (package render) turns any Config into a
// node view, so adding a node kind means adding a table entry here, not new
// rendering code:
//
//	reg := nodetype.Builtin()
//	cfg, ok := reg.Lookup(domain.TypeInput, "customInput-1")
//	// cfg.Fields[0].Default == "input_1"
//
// Configs are static except for fields carrying a DefaultFromID rule, which
// derive their default from the node id when resolved with Config.ForNode.
//
// Additional node types can be declared in a YAML catalog (see LoadCatalog).
package nodetype
