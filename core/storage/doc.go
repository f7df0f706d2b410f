// Package storage provides an abstraction layer for S3-compatible object storage.
//
// It wraps the MinIO Go client to expose bucket listing as a uniform
// page/cursor sequence and normalizes client errors into a small taxonomy.
// This abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Pagination
//
// ListPage exposes one page of a bucket listing at a time. The returned
// Page.NextCursor is an opaque continuation token; passing it back in the
// next PageRequest resumes the listing, and an empty token means the
// listing is complete. The adapter keeps no state between calls.
//
// # Errors
//
// Every failure is wrapped in an *Error carrying the operation context and
// one of the sentinel kinds (ErrConnectivity, ErrAuth, ErrNotFound,
// ErrProtocol, ErrThrottled). Use errors.Is against the sentinels;
// Retryable reports whether a retry can help.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	page, err := client.ListPage(ctx, storage.PageRequest{Bucket: "backups"})
package storage
