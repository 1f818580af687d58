// Package portability imports foreign collection formats into the
// canonical collection model.
//
// Two formats are supported: OpenAPI 3.x specifications (operations
// grouped by tag into folders) and Insomnia workspace exports
// (environments, folder trees, requests, chains). Importers register
// themselves with a format registry, and Import auto-detects the format
// from content and filename.
//
// Import is all-or-nothing: structural violations (duplicate identifiers,
// invalid fields) abort the run. Feature gaps degrade instead of failing —
// an auth scheme the model has no variant for is recorded as unsupported,
// and a foreign template that cannot be rewritten is kept verbatim.
package portability
