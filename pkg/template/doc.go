// Package template tokenizes and parses the {{ }} and {% %} expressions
// embedded in collection string fields.
//
// A template string interleaves literal text with two expression forms:
//
//	{{ host }}                              variable reference (dotted path)
//	{% response 'body', 'req_a', ... %}     function call with literal args
//
// Parsing is a finite, restartable, read-only decomposition: the same
// string always parses to structurally equal segments, and a parsed
// expression re-serializes with its argument content byte-identical to the
// source. Function arguments are literal at parse time; they are not
// recursively templated.
//
// The parser knows nothing about which functions exist. Unknown names parse
// fine and are rejected at evaluation time by the resolve package, keeping
// the two components decoupled.
package template
