// Package casing rewrites the keys of JSON-compatible values between
// snake_case, camelCase and PascalCase.
//
// Only plain objects (maps keyed by strings) have their keys rewritten.
// Slices and nested maps are walked recursively; every other value
// (time.Time, []byte, json.RawMessage, structs, scalars) is returned as is.
// Maps and slices that were already visited resolve to their converted
// output, so self-referential inputs terminate and keep their shape.
package casing
