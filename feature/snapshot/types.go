package snapshot

import "time"

// Version is the snapshot format version written into metadata.
const Version = "1"

// Config holds configuration for snapshot storage.
type Config struct {
	// Dir is the directory snapshots are written to and read from.
	Dir string `mapstructure:"dir" default:"/snapshots"`
}

// Stats is the per-bucket aggregate recorded in a snapshot.
type Stats struct {
	// Files is the number of objects in the bucket.
	Files int64 `json:"files"`
	// Bytes is the total object size in the bucket.
	Bytes int64 `json:"bytes"`
}

// Metadata describes when and how a snapshot was taken.
type Metadata struct {
	Version string    `json:"version"`
	ID      string    `json:"id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Snapshot records the state of every visible bucket at one point in time.
type Snapshot struct {
	Buckets  map[string]Stats `json:"buckets"`
	Metadata Metadata         `json:"metadata"`
}
