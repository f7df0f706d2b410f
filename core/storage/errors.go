package storage

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/minio/minio-go/v7"
)

// Sentinel error kinds. Every error returned by a Client is wrapped in an
// *Error carrying exactly one of these, so callers can branch with errors.Is
// without knowing anything about the underlying client library.
var (
	// ErrConnectivity indicates a network failure or a transient server fault.
	ErrConnectivity = errors.New("storage: connectivity failure")
	// ErrAuth indicates invalid or expired credentials.
	ErrAuth = errors.New("storage: authentication failure")
	// ErrNotFound indicates a missing bucket or object.
	ErrNotFound = errors.New("storage: not found")
	// ErrProtocol indicates a malformed request or response.
	ErrProtocol = errors.New("storage: protocol error")
	// ErrThrottled indicates the server asked us to slow down.
	ErrThrottled = errors.New("storage: throttled")
)

// Error wraps a storage failure with the operation context that produced it.
type Error struct {
	// Op is the operation that failed (e.g., "list", "remove").
	Op string
	// Bucket is the bucket involved, if any.
	Bucket string
	// Key is the object key involved, if any.
	Key string
	// Kind is one of the sentinel error kinds above.
	Kind error
	// Err is the underlying error from the client library.
	Err error
}

func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("storage.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("storage.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("storage.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches against the error's kind, so errors.Is(err, ErrAuth) works on
// the wrapper without unwrapping to the raw client error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Retryable reports whether an error is worth retrying. Connectivity
// failures and throttling are transient; everything else is terminal.
func Retryable(err error) bool {
	return errors.Is(err, ErrConnectivity) || errors.Is(err, ErrThrottled)
}

// classify maps a raw client error onto the storage error taxonomy.
// Context cancellation is passed through untouched since it is a caller
// decision, not a storage failure.
func classify(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	kind := ErrConnectivity

	var netErr net.Error
	if resp := minio.ToErrorResponse(err); resp.Code != "" || resp.StatusCode != 0 {
		kind = classifyResponse(resp)
	} else if !errors.As(err, &netErr) {
		// Not an S3 error response and not a network error: the client
		// could not make sense of what it received.
		kind = ErrProtocol
	}

	return &Error{Op: op, Bucket: bucket, Key: key, Kind: kind, Err: err}
}

func classifyResponse(resp minio.ErrorResponse) error {
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken", "TokenRefreshRequired":
		return ErrAuth
	case "NoSuchBucket", "NoSuchKey":
		return ErrNotFound
	case "SlowDown", "TooManyRequests", "RequestTimeout":
		return ErrThrottled
	}

	switch {
	case resp.StatusCode == 429:
		return ErrThrottled
	case resp.StatusCode >= 500:
		return ErrConnectivity
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return ErrAuth
	case resp.StatusCode == 404:
		return ErrNotFound
	default:
		return ErrProtocol
	}
}
