// Package services holds the application operations the CLI drives:
// capturing scraps, editing them, requesting enrichment, listing, and
// managing prompt templates. Persistence and search are delegated to the
// store and search packages.
package services
