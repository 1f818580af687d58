// Package logging provides slog construction helpers shared by the
// importer and resolver packages. Libraries in this module never log to a
// global logger; they accept a *slog.Logger and default to Nop.
package logging
