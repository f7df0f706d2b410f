package enumerate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"s3-utils/core/retry"
	"s3-utils/core/storage"

	"github.com/minio/minio-go/v7"
)

// Object is an immutable descriptor of one stored object, produced by an
// Enumerator and never mutated afterwards.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
}

// FromObjectInfo converts a raw listing entry into an Object. It reports
// false for directory placeholder entries (zero-size keys ending in "/"),
// which some stores emit to emulate folders.
func FromObjectInfo(info minio.ObjectInfo) (Object, bool) {
	if strings.HasSuffix(info.Key, "/") && info.Size == 0 {
		return Object{}, false
	}
	return Object{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
	}, true
}

// Filter selects objects by key prefix, key suffix, and modification-time
// window. Zero values disable the corresponding check. The prefix is also
// pushed down to the server side of the listing.
type Filter struct {
	Prefix string
	Suffix string
	// After keeps objects modified at or after this instant.
	After time.Time
	// Before keeps objects modified strictly before this instant.
	Before time.Time
}

// Match reports whether the object passes the suffix and time-window
// checks. The prefix is enforced by the listing itself.
func (f Filter) Match(obj Object) bool {
	if f.Suffix != "" && !strings.HasSuffix(obj.Key, f.Suffix) {
		return false
	}
	if !f.After.IsZero() && obj.LastModified.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && !obj.LastModified.Before(f.Before) {
		return false
	}
	return true
}

// Error marks a failed enumeration. Cursor is the continuation token of the
// page that could not be fetched, so a caller may resume from it.
type Error struct {
	Cursor string
	Err    error
}

func (e *Error) Error() string {
	if e.Cursor != "" {
		return fmt.Sprintf("enumeration failed (resume cursor %q): %v", e.Cursor, e.Err)
	}
	return fmt.Sprintf("enumeration failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Enumerator walks a bucket namespace as a lazy, pull-based sequence of
// Objects. It holds at most one listing page in memory at a time and
// applies the filter per page before yielding, so memory stays bounded
// regardless of namespace size.
//
// Ordering is whatever the store returns (lexicographic by key under S3
// semantics). If the store reorders entries between pages under eventual
// consistency, the sequence reflects that; no correction or deduplication
// is attempted.
type Enumerator struct {
	client  storage.Client
	policy  *retry.Policy
	bucket  string
	filter  Filter
	maxKeys int

	cursor string
	buf    []Object
	done   bool
}

// New creates an Enumerator over the given bucket and filter.
func New(client storage.Client, policy *retry.Policy, bucket string, filter Filter) *Enumerator {
	return &Enumerator{
		client: client,
		policy: policy,
		bucket: bucket,
		filter: filter,
	}
}

// NewFromCursor creates an Enumerator that resumes from a continuation
// token previously obtained via Cursor or from an enumeration Error.
func NewFromCursor(client storage.Client, policy *retry.Policy, bucket string, filter Filter, cursor string) *Enumerator {
	e := New(client, policy, bucket, filter)
	e.cursor = cursor
	return e
}

// Cursor returns the continuation token for the next unfetched page.
func (e *Enumerator) Cursor() string {
	return e.cursor
}

// Next returns the next object in the sequence. It reports false when the
// listing is exhausted. On failure it returns an *Error carrying the
// cursor of the page that could not be fetched; the enumerator is not
// usable afterwards, but a new one can resume from that cursor.
func (e *Enumerator) Next(ctx context.Context) (Object, bool, error) {
	for {
		if len(e.buf) > 0 {
			obj := e.buf[0]
			e.buf = e.buf[1:]
			return obj, true, nil
		}
		if e.done {
			return Object{}, false, nil
		}
		if err := e.fetch(ctx); err != nil {
			return Object{}, false, err
		}
	}
}

// fetch loads the next page into the buffer, advancing the cursor only on
// success.
func (e *Enumerator) fetch(ctx context.Context) error {
	var page storage.Page
	err := e.policy.Do(ctx, "list", func() error {
		var err error
		page, err = e.client.ListPage(ctx, storage.PageRequest{
			Bucket:  e.bucket,
			Prefix:  e.filter.Prefix,
			Cursor:  e.cursor,
			MaxKeys: e.maxKeys,
		})
		return err
	})
	if err != nil {
		return &Error{Cursor: e.cursor, Err: err}
	}

	for _, info := range page.Objects {
		obj, ok := FromObjectInfo(info)
		if !ok {
			continue
		}
		if e.filter.Match(obj) {
			e.buf = append(e.buf, obj)
		}
	}

	e.cursor = page.NextCursor
	if page.NextCursor == "" {
		e.done = true
	}
	return nil
}
