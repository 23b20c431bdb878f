// Package items persists scrap bodies.
//
// Bodies are stored as the JSON text of models.Item, one row per id, so a
// single damaged row can be detected and skipped without touching the rest.
// Decoding is left to the caller for that reason: List returns raw bodies.
package items
