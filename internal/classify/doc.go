// Package classify turns the human-readable output of the external mod
// tool into typed values: the canonical name of a freshly added mod, a
// fixed upgrade summary, and the list of installed mods.
//
// The tool's output format is unversioned and uncontracted. Every function
// here is therefore total: an unrecognised shape degrades to a fallback
// value (no name, a generic summary, an empty list) and never to an error.
//
// Callers depend on the OutputClassifier interface rather than on the
// functions directly, so a classifier for a structured output format can
// replace the text scraper without touching the orchestration code.
package classify
