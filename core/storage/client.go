package storage

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultPageSize is the listing page size used when a PageRequest does not
// specify one. It matches the S3 max-keys default.
const DefaultPageSize = 1000

// PageRequest describes one paginated listing call.
type PageRequest struct {
	// Bucket is the bucket to list.
	Bucket string
	// Prefix restricts the listing to keys starting with it.
	Prefix string
	// Delimiter groups keys sharing a common prefix up to the delimiter
	// into Page.Prefixes instead of returning them as objects.
	Delimiter string
	// Cursor is the continuation token from the previous page, or empty
	// for the first page.
	Cursor string
	// MaxKeys caps the page size; zero means DefaultPageSize.
	MaxKeys int
}

// Page is one page of a bucket listing.
type Page struct {
	// Objects are the raw listing entries on this page, in the order the
	// store returned them.
	Objects []minio.ObjectInfo
	// Prefixes are the common prefixes found when a delimiter was set.
	Prefixes []string
	// NextCursor is the continuation token for the next page. Empty means
	// the listing is complete.
	NextCursor string
}

// Client defines the interface for storage operations.
type Client interface {
	// ListBuckets returns all buckets visible to the configured credentials.
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	// BucketExists checks if a bucket exists.
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	// ListPage fetches one page of a bucket listing.
	ListPage(ctx context.Context, req PageRequest) (Page, error)
	// RemoveObjects deletes multiple objects from a bucket efficiently.
	// objectsCh is a channel of object names to delete.
	RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError
}

// NewClient creates a new Minio client based on the configuration.
func NewClient(cfg Config) (Client, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	// Ensure timeout defaults if not set
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	// Create custom transport with strict timeouts
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration, // Connection setup timeout
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration, // TLS Handshake timeout
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration, // Wait for first response byte timeout
	}

	core, err := minio.NewCore(endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	// Minio performs lazy connection, so there is nothing to ping here.
	// The transport timeouts ensure we don't hang on connection setup.

	return &minioClientWrapper{core: core}, nil
}

// minioClientWrapper adapts minio.Core to the Client interface and
// normalizes every error through the storage taxonomy.
type minioClientWrapper struct {
	core *minio.Core
}

func (c *minioClientWrapper) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	buckets, err := c.core.Client.ListBuckets(ctx)
	if err != nil {
		return nil, classify("list-buckets", "", "", err)
	}
	return buckets, nil
}

func (c *minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	exists, err := c.core.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, classify("bucket-exists", bucketName, "", err)
	}
	return exists, nil
}

func (c *minioClientWrapper) ListPage(ctx context.Context, req PageRequest) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	maxKeys := req.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultPageSize
	}

	result, err := c.core.ListObjectsV2(req.Bucket, req.Prefix, "", req.Cursor, req.Delimiter, maxKeys)
	if err != nil {
		return Page{}, classify("list", req.Bucket, "", err)
	}

	page := Page{Objects: result.Contents}
	for _, cp := range result.CommonPrefixes {
		page.Prefixes = append(page.Prefixes, cp.Prefix)
	}
	if result.IsTruncated {
		page.NextCursor = result.NextContinuationToken
	}
	return page, nil
}

func (c *minioClientWrapper) RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	return c.core.Client.RemoveObjects(ctx, bucketName, objectsCh, opts)
}
