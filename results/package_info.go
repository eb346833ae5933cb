// Package results contains the data model for audit results as reported by axe-core, and the
// impact-level filtering that decides which violations count toward a test failure.
//
// The types mirror the JSON that axe.run resolves with, so a result captured from a real
// browser can be decoded directly with encoding/json.
package results
