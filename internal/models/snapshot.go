package models

// SnapshotVersion is the current on-disk fleet format. Version 0 files are
// the legacy bare vehicle array written by early builds.
const SnapshotVersion = 1

// Snapshot is the persistence envelope for the whole fleet.
type Snapshot struct {
	Version  int        `json:"version"`
	Vehicles []*Vehicle `json:"vehicles"`
}
