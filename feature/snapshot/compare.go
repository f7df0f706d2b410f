package snapshot

import "time"

// BucketDelta is a bucket's current totals plus how they changed since the
// previous snapshot.
type BucketDelta struct {
	Files  int64 `json:"files"`
	Bytes  int64 `json:"bytes"`
	DFiles int64 `json:"d_files"`
	DBytes int64 `json:"d_bytes"`
}

// Report describes how the bucket landscape changed between two snapshots.
type Report struct {
	Buckets map[string]BucketDelta `json:"buckets"`

	// Now is the start time of the current snapshot.
	Now time.Time `json:"now"`
	// Elapsed is the time between the two snapshots, zero when there is
	// no previous snapshot.
	Elapsed time.Duration `json:"elapsed"`

	TotalFiles  int64 `json:"total_files"`
	TotalBytes  int64 `json:"total_bytes"`
	TotalDFiles int64 `json:"total_d_files"`
	TotalDBytes int64 `json:"total_d_bytes"`
}

// Compare returns the current snapshot and how it changed from the
// previous one. Buckets present in only one of the two snapshots are
// included: new buckets show their full totals as deltas, deleted buckets
// show zero totals and negative deltas. previous may be nil.
func Compare(current, previous *Snapshot) *Report {
	report := &Report{
		Buckets: make(map[string]BucketDelta),
		Now:     current.Metadata.Start,
	}
	if previous != nil {
		report.Elapsed = current.Metadata.Start.Sub(previous.Metadata.Start)
	}

	names := make(map[string]struct{}, len(current.Buckets))
	for name := range current.Buckets {
		names[name] = struct{}{}
	}
	if previous != nil {
		for name := range previous.Buckets {
			names[name] = struct{}{}
		}
	}

	for name := range names {
		cur := current.Buckets[name]
		var prev Stats
		if previous != nil {
			prev = previous.Buckets[name]
		}

		delta := BucketDelta{
			Files:  cur.Files,
			Bytes:  cur.Bytes,
			DFiles: cur.Files - prev.Files,
			DBytes: cur.Bytes - prev.Bytes,
		}
		report.Buckets[name] = delta

		report.TotalFiles += delta.Files
		report.TotalBytes += delta.Bytes
		report.TotalDFiles += delta.DFiles
		report.TotalDBytes += delta.DBytes
	}

	return report
}
