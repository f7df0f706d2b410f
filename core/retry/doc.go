// Package retry implements the backoff policy guarding storage calls.
//
// A Policy wraps exactly one adapter call. Errors are classified through
// the storage taxonomy: connectivity failures and throttling are retried
// with exponential backoff, everything else propagates immediately.
// Exhausting all attempts yields an *ExhaustedError wrapping the last
// underlying error.
package retry
