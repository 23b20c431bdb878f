// Package models defines the scrap records, the index that lists them, the
// synchronized application settings and the snapshot document that carries
// all of them between devices.
//
// JSON field names are part of the snapshot format and must stay stable:
// backups exported by one version are imported by another, and every device
// sharing a remote reads the same document.
package models
