// Package cli implements the scraps command-line interface.
//
// Every subcommand opens the local store, runs one operation through the
// services or the sync engine and closes the store again. "scraps shell"
// keeps the store open and dispatches each typed line to the same command
// tree, optionally syncing in the background.
package cli
