// Package scan drives enumeration and aggregation over a bucket,
// optionally partitioning the namespace across workers and merging the
// per-partition accumulators when all of them have finished.
package scan
