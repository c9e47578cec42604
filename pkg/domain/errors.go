package domain

import "errors"

// ErrNodeNotFound is returned when a node ID is not present in the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrEdgeNotFound is returned when an edge ID is not present in the graph.
var ErrEdgeNotFound = errors.New("edge not found")

// ErrDuplicateNode is returned when a node is added with an ID that is already in use.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrUnknownField is returned when a data bag has no field with the given name.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidFieldValue is returned when a value cannot be coerced into the field's type.
var ErrInvalidFieldValue = errors.New("invalid field value")

// ErrInvalidConnection is returned when a connection does not join a source handle to a target handle.
var ErrInvalidConnection = errors.New("invalid connection")
