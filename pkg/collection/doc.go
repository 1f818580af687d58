// Package collection defines the canonical request-collection model that
// every importer produces and template evaluation reads from.
//
// A collection is a set of named profiles (environments), a table of chains
// (reusable non-literal value sources), and a recursive folder tree of
// requests. String fields that can hold {{ }} or {% %} expressions are
// template strings: they are stored unevaluated and only resolved at
// request-build time by the resolve package.
//
// The model is constructed once by an importer and is immutable afterwards
// from this core's perspective. Structural validation happens at
// construction: duplicate identifiers and invalid fields abort the whole
// import.
package collection
