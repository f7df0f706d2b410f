// Package snapshot records the state of a user's buckets over time.
//
// A snapshot is the per-bucket object count and byte total of every bucket
// visible to the configured credentials, stamped with start/end times and
// a unique ID. Snapshots are stored as JSON files named after their start
// time, and Compare derives the change report between two of them.
package snapshot
